package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Bochyn/Image-to-video/internal/console"
	"go.uber.org/zap"
)

type loopState int

const (
	stateDraft loopState = iota
	stateReview
	stateDone
)

// PromptLoop drafts a generation prompt from a style description and lets
// the user accept it or ask for changes until they accept.
type PromptLoop struct {
	creator  Completer
	enhancer Enhancer
	prompter console.Prompter
	out      io.Writer
	log      *zap.Logger
}

func NewPromptLoop(creator Completer, enhancer Enhancer, prompter console.Prompter, out io.Writer, log *zap.Logger) *PromptLoop {
	return &PromptLoop{creator: creator, enhancer: enhancer, prompter: prompter, out: out, log: log}
}

// Create returns the accepted prompt. An empty modification request is
// treated as acceptance.
func (l *PromptLoop) Create(ctx context.Context, styleDescription string) (string, error) {
	const op = "create prompt"
	if strings.TrimSpace(styleDescription) == "" {
		return "", newError(KindInvalidArgument, op, errors.New("style description is empty"))
	}

	var draft string
	for state := stateDraft; state != stateDone; {
		switch state {
		case stateDraft:
			out, err := l.creator.Complete(ctx, styleDescription)
			if err != nil {
				return "", newError(KindProvider, op, err)
			}
			draft = strings.TrimSpace(out)
			if draft == "" {
				return "", newError(KindProvider, op, errors.New("empty prompt draft"))
			}
			state = stateReview

		case stateReview:
			fmt.Fprintf(l.out, "\nProposed prompt:\n%s\n\n", draft)
			choice, err := l.prompter.Choose("Choose an action:", "Accept", "Modify")
			if err != nil {
				return "", newError(KindIO, op, err)
			}
			if choice == 1 {
				state = stateDone
				continue
			}

			req, err := l.prompter.Ask("Describe the changes you want")
			if err != nil {
				return "", newError(KindIO, op, err)
			}
			if req == "" {
				fmt.Fprintln(l.out, "No changes entered. Accepting the current prompt.")
				state = stateDone
				continue
			}
			l.log.Debug("enhancing prompt", zap.String("request", req))
			draft, err = l.enhancer.Enhance(ctx, draft, req)
			if err != nil {
				return "", err
			}
		}
	}
	return draft, nil
}
