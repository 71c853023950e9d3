package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/54b3r/kagent-go/internal/chatagent"
	"github.com/54b3r/kagent-go/internal/docprovider"
)

type fakeCredential struct{}

func (fakeCredential) Token(context.Context, string) (string, error) { return "tok", nil }

func TestHandleMe_HappyPath(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	s.profiles = &fakeProfiles{profile: docprovider.UserProfile{
		ID: "u1", Name: "Ada Lovelace", Email: "ada@contoso.com", Title: "Engineer",
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	ctx := context.WithValue(req.Context(), userContextKey{}, chatagent.AuthenticatedUser{
		ID: "u1", Credential: fakeCredential{},
	})
	w := httptest.NewRecorder()

	s.handleMe(w, req.WithContext(ctx))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp profileResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Name != "Ada Lovelace" || resp.Email != "ada@contoso.com" {
		t.Errorf("resp = %+v, unexpected", resp)
	}
}

func TestHandleMe_NoAuthenticatedUser_Returns401(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	w := httptest.NewRecorder()

	s.handleMe(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestHandleMe_ProviderFailure_Returns500(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	s.profiles = &fakeProfiles{err: errors.New("graph unavailable")}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	ctx := context.WithValue(req.Context(), userContextKey{}, chatagent.AuthenticatedUser{
		ID: "u1", Credential: fakeCredential{},
	})
	w := httptest.NewRecorder()

	s.handleMe(w, req.WithContext(ctx))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}
