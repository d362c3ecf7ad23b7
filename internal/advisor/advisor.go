package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ErrEmptyReply is returned when the model answers with no text.
var ErrEmptyReply = errors.New("language model returned an empty reply")

// ChatModel is a single-turn text completion backend.
type ChatModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Name() string
}

// AdviceRequest is the input of one advice call.
type AdviceRequest struct {
	Input PromptInput
}

// Advice is the model's reply together with the prompt that produced it.
type Advice struct {
	Prompt string
	Text   string
	Model  string
}

// Advisor turns collected figures into investment advice.
type Advisor struct {
	model ChatModel
	log   zerolog.Logger
}

func New(model ChatModel, log zerolog.Logger) *Advisor {
	return &Advisor{
		model: model,
		log:   log.With().Str("component", "advisor").Logger(),
	}
}

// GenerateAdvice sends one prompt and returns the reply unmodified.
func (a *Advisor) GenerateAdvice(ctx context.Context, req AdviceRequest) (*Advice, error) {
	prompt := BuildPrompt(req.Input)
	a.log.Debug().Str("model", a.model.Name()).Str("prompt", prompt).Msg("requesting advice")

	text, err := a.model.Complete(ctx, SystemRole, prompt)
	if err != nil {
		return nil, fmt.Errorf("advice from %s: %w", a.model.Name(), err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("advice from %s: %w", a.model.Name(), ErrEmptyReply)
	}

	a.log.Info().
		Str("symbol1", req.Input.Symbol1).
		Str("symbol2", req.Input.Symbol2).
		Int("chars", len(text)).
		Msg("advice received")
	return &Advice{Prompt: prompt, Text: text, Model: a.model.Name()}, nil
}
