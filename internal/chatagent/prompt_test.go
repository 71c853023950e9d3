package chatagent

import (
	"strings"
	"testing"
)

func Test_BuildSystemPrompt_RAGMode(t *testing.T) {
	t.Parallel()

	user := AuthenticatedUser{Name: "Ada Lovelace", Email: "ada@contoso.com"}
	prompt := buildSystemPrompt(user, ChatContext{}, ModeRAG)

	if !strings.Contains(prompt, "Ada Lovelace") || !strings.Contains(prompt, "ada@contoso.com") {
		t.Errorf("prompt = %q, missing user identity", prompt)
	}
	if !strings.Contains(prompt, "knowledge_search") {
		t.Errorf("prompt = %q, want knowledge_search mentioned in RAG mode", prompt)
	}
	if strings.Contains(prompt, "sharepoint_search") {
		t.Errorf("prompt = %q, should not mention sharepoint_search in RAG mode", prompt)
	}
	if !strings.Contains(prompt, "cite the webUrl") {
		t.Errorf("prompt = %q, want a citation instruction", prompt)
	}
}

func Test_BuildSystemPrompt_KQLMode(t *testing.T) {
	t.Parallel()

	prompt := buildSystemPrompt(AuthenticatedUser{}, ChatContext{}, ModeKQL)
	if !strings.Contains(prompt, "sharepoint_search") {
		t.Errorf("prompt = %q, want sharepoint_search mentioned in KQL mode", prompt)
	}
	if strings.Contains(prompt, "knowledge_search") {
		t.Errorf("prompt = %q, should not mention knowledge_search in KQL mode", prompt)
	}
}
