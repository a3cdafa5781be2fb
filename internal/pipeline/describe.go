package pipeline

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// StyleDescriber asks a vision model for a style description of an image.
type StyleDescriber struct {
	vision Completer
	log    *zap.Logger
}

func NewStyleDescriber(vision Completer, log *zap.Logger) *StyleDescriber {
	return &StyleDescriber{vision: vision, log: log}
}

func (d *StyleDescriber) Describe(ctx context.Context, imagePath string) (string, error) {
	const op = "describe style"
	img, err := readImage(imagePath, op)
	if err != nil {
		return "", err
	}
	d.log.Debug("describing image", zap.String("path", imagePath), zap.String("mime", img.MIMEType))

	text, err := d.vision.Complete(ctx, "", img)
	if err != nil {
		return "", newError(KindProvider, op, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", newError(KindProvider, op, errors.New("empty style description"))
	}
	return text, nil
}
