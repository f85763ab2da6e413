package llm

import (
	"context"
	"time"
)

// Observer records the outcome of gateway calls.
type Observer interface {
	ObserveLLMCall(provider string, ok bool, elapsed time.Duration)
}

type instrumented struct {
	next     Gateway
	provider string
	obs      Observer
}

// Instrument wraps g so every call is reported to obs.
func Instrument(g Gateway, provider string, obs Observer) Gateway {
	if obs == nil {
		return g
	}
	return &instrumented{next: g, provider: provider, obs: obs}
}

func (i *instrumented) Chat(ctx context.Context, system, user string, s Settings) Result {
	start := time.Now()
	res := i.next.Chat(ctx, system, user, s)
	i.obs.ObserveLLMCall(i.provider, res.OK(), time.Since(start))
	return res
}
