package assistant

import (
	"context"
	"fmt"
	"strings"

	"clausewise/internal/llm"
)

// ChatExcerptRunes is how much of the document goes into every chat turn.
const ChatExcerptRunes = 3000

const chatSystemPrompt = `You are a legal AI assistant specializing in document analysis and legal advice.
You have been provided with a legal document and can answer questions about its contents, implications,
and provide general legal guidance.

Key guidelines:
- Base your answers on the provided document context
- Provide clear, actionable advice when possible
- Explain legal concepts in simple terms
- Suggest practical next steps when appropriate
- If asked about something not in the document, clearly state that
- Always remind users to consult with a qualified attorney for specific legal advice
- Be helpful but professional in tone`

// Chat answers questions about a document.
type Chat struct {
	gw llm.Gateway
}

func NewChat(gw llm.Gateway) *Chat {
	return &Chat{gw: gw}
}

// Respond answers message given the document and prior turns. Only the last
// HistoryWindowSize turns are sent.
func (c *Chat) Respond(ctx context.Context, message, document string, history []Turn, s llm.Settings) llm.Result {
	return c.gw.Chat(ctx, chatSystemPrompt, ChatPrompt(message, document, NewWindow(history)), s)
}

// ChatPrompt renders the document excerpt, the windowed history and the
// current question.
func ChatPrompt(message, document string, history *Window) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document Content:\n%s\n\n", head(document, ChatExcerptRunes))

	if history != nil && history.Len() > 0 {
		b.WriteString("Previous conversation:\n")
		for _, t := range history.Turns() {
			fmt.Fprintf(&b, "User: %s\nAssistant: %s\n\n", t.User, t.Assistant)
		}
	}

	fmt.Fprintf(&b, "Current question: %s", message)
	return b.String()
}
