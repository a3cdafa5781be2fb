package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/Bochyn/Image-to-video/internal/prompts"
)

// PromptEnhancer rewrites a prompt according to a modification request.
type PromptEnhancer struct {
	text Completer
}

func NewPromptEnhancer(text Completer) *PromptEnhancer {
	return &PromptEnhancer{text: text}
}

func (e *PromptEnhancer) Enhance(ctx context.Context, originalPrompt, modification string) (string, error) {
	const op = "enhance prompt"
	if strings.TrimSpace(originalPrompt) == "" {
		return "", newError(KindInvalidArgument, op, errors.New("original prompt is empty"))
	}
	if strings.TrimSpace(modification) == "" {
		return "", newError(KindInvalidArgument, op, errors.New("modification request is empty"))
	}

	out, err := e.text.Complete(ctx, prompts.BuildEnhancementRequest(originalPrompt, modification))
	if err != nil {
		return "", newError(KindProvider, op, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", newError(KindProvider, op, errors.New("empty enhanced prompt"))
	}
	return out, nil
}
