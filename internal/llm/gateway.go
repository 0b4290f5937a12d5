package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

const DefaultTimeout = 50 * time.Second

var (
	ErrMalformedResponse = errors.New("malformed completion response")
	ErrNoCompleter       = errors.New("no completion provider configured")
)

type Completion struct {
	Text       string
	TokensUsed int64
}

// Completer sends a single prompt to an external completion service.
type Completer interface {
	Complete(ctx context.Context, prompt string) (Completion, error)
}

type Reply struct {
	Text       string
	TokensUsed int64
	Fallback   bool
}

// Gateway bounds every completion call with a timeout and turns provider
// failures into the fallback reply instead of an error.
type Gateway struct {
	completer Completer
	timeout   time.Duration
	fallback  string
}

func NewGateway(completer Completer, timeout time.Duration, fallback string) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{completer: completer, timeout: timeout, fallback: fallback}
}

func (g *Gateway) fallbackReply() Reply {
	return Reply{Text: g.fallback, TokensUsed: 0, Fallback: true}
}

// Generate returns an error only when no call could be attempted: there is no
// completer, or the caller's context is already done. Everything that goes
// wrong during the call itself yields the fallback reply.
func (g *Gateway) Generate(ctx context.Context, prompt string) (Reply, error) {
	if g.completer == nil {
		return Reply{}, ErrNoCompleter
	}
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	completion, err := g.completer.Complete(callCtx, prompt)
	if err != nil {
		slog.Error("completion call failed, using fallback reply", "error", err, "elapsed", time.Since(start))
		return g.fallbackReply(), nil
	}

	text := strings.TrimSpace(completion.Text)
	if text == "" {
		slog.Warn("completion returned empty reply, using fallback reply", "tokens_used", completion.TokensUsed)
		return g.fallbackReply(), nil
	}

	if g.isFallback(text) {
		return Reply{Text: g.fallback, TokensUsed: completion.TokensUsed, Fallback: true}, nil
	}

	return Reply{Text: text, TokensUsed: completion.TokensUsed}, nil
}

// isFallback reports whether text is the fallback sentence with different
// quoting or apostrophes, which models often produce.
func (g *Gateway) isFallback(text string) bool {
	return g.fallback != "" && canonicalSentence(text) == canonicalSentence(g.fallback)
}

var sentenceReplacer = strings.NewReplacer("’", "'", "‘", "'", "“", "\"", "”", "\"")

func canonicalSentence(s string) string {
	s = sentenceReplacer.Replace(strings.TrimSpace(s))
	s = strings.Trim(s, "\"' ")
	return strings.ToLower(s)
}
