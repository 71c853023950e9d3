package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/54b3r/kagent-go/internal/chatagent"
	"github.com/54b3r/kagent-go/internal/logging"
)

// maxChatBodyBytes is the maximum allowed size for a /api/chat request body.
// Prevents unbounded memory allocation from oversized requests.
const maxChatBodyBytes = 1 << 20 // 1 MiB

// handleChat handles POST /api/chat. A chat turn runs its full
// tool-calling loop before a single JSON response is written — the chat
// agent's tools make their own upstream calls (search, download, probe)
// that do not produce partial output worth streaming to the caller
// mid-turn.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var body chatRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}
	if len(body.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", "messages must not be empty")
		return
	}

	user, _ := userFromContext(r.Context())

	log := logging.FromContext(r.Context()).With(
		slog.String("user_id", user.ID),
		slog.String("site_url", body.Context.SiteURL),
	)
	log.Info("chat start", slog.Int("message_count", len(body.Messages)))

	s.metrics.chatActiveRequests.Inc()
	defer s.metrics.chatActiveRequests.Dec()

	timer := prometheusTimer(s.metrics.chatDurationSeconds)

	resp, err := s.chat.Handle(r.Context(), chatagent.ChatRequest{
		Messages: body.Messages,
		Context:  body.Context,
		User:     user,
	})
	if err != nil {
		outcome := "error"
		if r.Context().Err() != nil {
			outcome = "timeout"
		}
		timer(outcome)
		s.metrics.chatRequestsTotal.WithLabelValues(outcome).Inc()
		writeHandlerError(w, r, "server.handleChat", err)
		return
	}

	timer("ok")
	s.metrics.chatRequestsTotal.WithLabelValues("ok").Inc()
	log.Info("chat complete", slog.String("search_mode", string(resp.SearchMode)))
	writeJSON(w, http.StatusOK, resp)
}
