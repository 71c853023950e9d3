package chatagent

import (
	"fmt"
	"strings"
	"time"
)

// buildSystemPrompt composes the three-block system prompt: a base block
// naming the user and the current time, a mode-specific tools block with
// usage rules, and a closing block that governs phrasing and citation.
func buildSystemPrompt(user AuthenticatedUser, chatCtx ChatContext, mode SearchMode) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are a knowledge assistant helping %s (%s). ", user.Name, user.Email)
	fmt.Fprintf(&sb, "The current UTC time is %s.\n\n", time.Now().UTC().Format(time.RFC3339))

	sb.WriteString("You have access to these tools:\n")
	sb.WriteString("- get_current_site: resolves the site this conversation is scoped to.\n")
	sb.WriteString("- get_current_user: returns the caller's own directory profile.\n")
	sb.WriteString("- read_file_content: downloads and extracts a single document's text.\n")

	switch mode {
	case ModeRAG:
		sb.WriteString("- knowledge_search: searches the indexed knowledge base. Pass the user's question verbatim — do not rephrase, summarize, or add context before calling it.\n\n")
	default:
		sb.WriteString("- sharepoint_search: searches SharePoint directly. Pass only 1-3 topic keywords — never the user's question verbatim, and never include user-specific context.\n\n")
	}

	sb.WriteString("When answering: prefer hedged phrasing (\"it appears that…\", \"based on the available documents…\") over absolute claims. ")
	sb.WriteString("Quote relevant passages verbatim rather than paraphrasing when precision matters. ")
	sb.WriteString("At the end of your answer, cite the webUrl of every source you relied on.")

	return sb.String()
}
