package pipeline

import (
	"context"

	"github.com/Bochyn/Image-to-video/internal/ai"
	"github.com/Bochyn/Image-to-video/internal/console"
)

// Completer is one configured text or vision model call.
type Completer interface {
	Complete(ctx context.Context, prompt string, images ...ai.Image) (string, error)
}

// ImageProvider renders an image from a prompt and an optional reference.
type ImageProvider interface {
	Generate(ctx context.Context, prompt string, ref *ai.Image) (ai.ImageResult, error)
}

// VideoProvider animates a start frame and returns the URL of the result.
type VideoProvider interface {
	Animate(ctx context.Context, prompt string, startFrame ai.Image) (string, error)
}

// Stage contracts used by the Orchestrator.
type (
	Describer interface {
		Describe(ctx context.Context, imagePath string) (string, error)
	}
	Enhancer interface {
		Enhance(ctx context.Context, originalPrompt, modification string) (string, error)
	}
	PromptCreator interface {
		Create(ctx context.Context, styleDescription string) (string, error)
	}
	ImageGenerator interface {
		Generate(ctx context.Context, prompt, outputName, referenceImage string) (string, error)
	}
	VideoAnimator interface {
		Animate(ctx context.Context, imagePath, outputName, prompt string) (string, error)
	}
)

func withProgress[T any](p console.Progress, message string, fn func() (T, error)) (T, error) {
	stop := p.Start(message)
	defer stop()
	return fn()
}
