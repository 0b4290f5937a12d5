package chat

import (
	"strings"

	"support-chat/internal/corpus"
	"support-chat/internal/database"
)

// FallbackReply is the exact sentence the assistant gives when the
// documentation does not contain an answer. Callers compare against it
// byte-for-byte.
const FallbackReply = "Sorry, I don’t have information about that."

const groundingRules = `You are a support assistant.

Strict Rules:
1. Answer ONLY using the provided documentation.
2. Do NOT use outside knowledge.
3. If the answer is not found in the documentation,
   respond exactly with:
   "` + FallbackReply + `"
`

// BuildPrompt assembles the grounding rules, the documentation, the recent
// history and the new question. The output depends only on its arguments.
func BuildPrompt(docs []corpus.DocChunk, history []database.ChatMessage, question string) string {
	var b strings.Builder

	b.WriteString(groundingRules)

	b.WriteString("\nDocumentation:\n")
	for _, doc := range docs {
		b.WriteString(doc.Content)
		b.WriteByte('\n')
	}

	b.WriteString("\nConversation History:\n")
	for _, msg := range history {
		b.WriteString(strings.ToUpper(msg.Role))
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteByte('\n')
	}

	b.WriteString("\nCurrent Question:\n")
	b.WriteString(question)
	b.WriteByte('\n')

	return b.String()
}
