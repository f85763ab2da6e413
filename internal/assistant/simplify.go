package assistant

import (
	"context"
	"fmt"

	"clausewise/internal/llm"
)

const simplifySystemPrompt = `You are an expert legal translator who converts complex legal language into clear, simple English.
Your goal is to make legal concepts accessible to non-lawyers while preserving the original meaning and intent.
Use simple words, shorter sentences, and explain any necessary legal concepts in plain language.`

// Simplifier rewrites single clauses in plain English.
type Simplifier struct {
	gw llm.Gateway
}

func NewSimplifier(gw llm.Gateway) *Simplifier {
	return &Simplifier{gw: gw}
}

// Simplify returns the gateway result untouched, failures included.
func (s *Simplifier) Simplify(ctx context.Context, clause string, settings llm.Settings) llm.Result {
	return s.gw.Chat(ctx, simplifySystemPrompt, SimplificationPrompt(clause), settings)
}

// SimplificationPrompt embeds the clause verbatim in a triple-quoted block so
// quotes and newlines inside it cannot be confused with the instructions.
func SimplificationPrompt(clause string) string {
	return fmt.Sprintf("Please rewrite the following legal clause in simple, easy-to-understand English:\n\n"+
		"Original clause:\n\"\"\"%s\"\"\"\n\nSimplified version:", clause)
}
