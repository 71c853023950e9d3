// Package chatagent drives the retrieval-augmented chat loop: a per-request
// Eino ReAct agent backed by a mode-specific tool set (RAG or KQL), with a
// permission filter that keeps inaccessible documents out of the model's
// context entirely.
package chatagent

import (
	"github.com/54b3r/kagent-go/internal/docprovider"
)

// SearchMode selects how knowledge_search-equivalent retrieval happens.
type SearchMode string

const (
	ModeRAG SearchMode = "rag"
	ModeKQL SearchMode = "kql"
)

// ChatMessage is one turn in the conversation, as exchanged over the HTTP API.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatContext scopes a request to a site and, optionally, a retrieval mode.
type ChatContext struct {
	SiteURL    string
	SearchMode SearchMode // empty means "use the configured default"
}

// AuthenticatedUser identifies the caller and carries the credential used to
// fetch their profile and probe their document access — never a shared
// service credential.
type AuthenticatedUser struct {
	ID         string
	Name       string
	Email      string
	Credential docprovider.CredentialSource
}

// ChatRequest is one inbound chat turn: the full conversation so far
// (ending with the pending user message), the authenticated caller, and the
// retrieval context.
type ChatRequest struct {
	Messages []ChatMessage
	Context  ChatContext
	User     AuthenticatedUser
}

// ChatResponse echoes the conversation with the new assistant turn appended,
// plus the search mode actually used.
type ChatResponse struct {
	Response   string        `json:"response"`
	Messages   []ChatMessage `json:"messages"`
	SearchMode SearchMode    `json:"searchMode"`
}

// permissionCache memoizes per-request documentId accessibility decisions so
// a single knowledge_search call never probes the same document twice. It is
// always constructed fresh per request and never shared across requests.
type permissionCache map[string]bool

func (p permissionCache) get(documentID string) (allowed, known bool) {
	allowed, known = p[documentID]
	return
}

func (p permissionCache) set(documentID string, allowed bool) {
	p[documentID] = allowed
}
