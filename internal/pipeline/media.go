package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Bochyn/Image-to-video/internal/ai"
	"go.uber.org/zap"
)

// ImageService renders prompts into image files under Dir.
type ImageService struct {
	provider ImageProvider
	dir      string
	format   string
	http     *http.Client
	log      *zap.Logger
}

func NewImageService(provider ImageProvider, dir, format string, client *http.Client, log *zap.Logger) *ImageService {
	switch format = strings.ToLower(format); format {
	case "":
		format = "png"
	case "jpeg":
		format = "jpg"
	}
	return &ImageService{provider: provider, dir: dir, format: format, http: client, log: log}
}

// Generate writes <dir>/<outputName>.<format> and returns its path. An empty
// referenceImage generates from text only.
func (s *ImageService) Generate(ctx context.Context, prompt, outputName, referenceImage string) (string, error) {
	const op = "generate image"
	if strings.TrimSpace(prompt) == "" {
		return "", newError(KindInvalidArgument, op, errors.New("prompt is empty"))
	}
	if outputName == "" {
		return "", newError(KindInvalidArgument, op, errors.New("output name is empty"))
	}
	if s.format != "png" && s.format != "jpg" {
		return "", newError(KindInvalidArgument, op, fmt.Errorf("unsupported output format %q (want png or jpg)", s.format))
	}

	var ref *ai.Image
	if referenceImage == "" {
		s.log.Warn("no reference image; generating from text only")
	} else {
		img, err := readImage(referenceImage, op)
		if err != nil {
			if KindOf(err) == KindImageNotFound {
				return "", newError(KindIO, op, err)
			}
			return "", err
		}
		ref = &img
	}

	res, err := s.provider.Generate(ctx, prompt, ref)
	if err != nil {
		return "", newError(KindProvider, op, err)
	}
	data := res.Data
	if len(data) == 0 {
		if res.URL == "" {
			return "", newError(KindProvider, op, errors.New("model returned neither image data nor a url"))
		}
		var buf bytes.Buffer
		if _, err := ai.Fetch(ctx, s.http, res.URL, res.Header, &buf); err != nil {
			return "", newError(KindDownload, op, err)
		}
		data = buf.Bytes()
	}

	data, err = encodeAs(data, s.format)
	if err != nil {
		return "", newError(KindIO, op, err)
	}
	path := filepath.Join(s.dir, outputName+"."+s.format)
	if err := writeAtomic(path, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	}); err != nil {
		return "", newError(KindIO, op, err)
	}
	s.log.Info("image saved", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}

// VideoService animates image files into mp4 files under Dir.
type VideoService struct {
	provider VideoProvider
	dir      string
	http     *http.Client
	log      *zap.Logger
}

func NewVideoService(provider VideoProvider, dir string, client *http.Client, log *zap.Logger) *VideoService {
	return &VideoService{provider: provider, dir: dir, http: client, log: log}
}

// Animate writes <dir>/<outputName>.mp4 and returns its path.
func (s *VideoService) Animate(ctx context.Context, imagePath, outputName, prompt string) (string, error) {
	const op = "animate image"
	if strings.TrimSpace(prompt) == "" {
		return "", newError(KindInvalidArgument, op, errors.New("prompt is empty"))
	}
	if outputName == "" {
		return "", newError(KindInvalidArgument, op, errors.New("output name is empty"))
	}
	img, err := readImage(imagePath, op)
	if err != nil {
		return "", err
	}

	url, err := s.provider.Animate(ctx, prompt, img)
	if err != nil {
		return "", newError(KindProvider, op, err)
	}
	if url == "" {
		return "", newError(KindProvider, op, errors.New("no video url returned"))
	}
	s.log.Debug("downloading video", zap.String("url", url))

	path := filepath.Join(s.dir, outputName+".mp4")
	var downloadErr error
	err = writeAtomic(path, func(f *os.File) error {
		_, downloadErr = ai.Download(ctx, s.http, url, f)
		return downloadErr
	})
	switch {
	case downloadErr != nil:
		return "", newError(KindDownload, op, downloadErr)
	case err != nil:
		return "", newError(KindIO, op, err)
	}
	s.log.Info("video saved", zap.String("path", path))
	return path, nil
}
