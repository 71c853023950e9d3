package server

import (
	"net/http"
)

// handleMe handles GET /api/me. It resolves the caller's directory profile
// using their own delegated credential, so the response never reveals more
// than the caller could see by asking the directory themselves.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok || user.Credential == nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "authorization required")
		return
	}

	profile, err := s.profiles.GetUserProfile(r.Context(), user.Credential)
	if err != nil {
		writeHandlerError(w, r, "server.handleMe", err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		ID:         profile.ID,
		Name:       profile.Name,
		Email:      profile.Email,
		Title:      profile.Title,
		Department: profile.Department,
		Company:    profile.Company,
		Location:   profile.Location,
		Manager:    profile.Manager,
	})
}
