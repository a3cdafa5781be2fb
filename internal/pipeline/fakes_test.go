package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Bochyn/Image-to-video/internal/ai"
	"github.com/stretchr/testify/require"
)

type completerCall struct {
	prompt string
	images []ai.Image
}

type fakeCompleter struct {
	replies []string
	err     error
	calls   []completerCall
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string, images ...ai.Image) (string, error) {
	f.calls = append(f.calls, completerCall{prompt: prompt, images: images})
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	out := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return out, nil
}

type enhanceCall struct{ original, modification string }

type fakeEnhancer struct {
	reply string
	err   error
	calls []enhanceCall
}

func (f *fakeEnhancer) Enhance(_ context.Context, original, modification string) (string, error) {
	f.calls = append(f.calls, enhanceCall{original, modification})
	return f.reply, f.err
}

type fakeDescriber struct {
	style     string
	err       error
	panicWith any
	calls     int
}

func (f *fakeDescriber) Describe(context.Context, string) (string, error) {
	f.calls++
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return f.style, f.err
}

type generateCall struct{ prompt, outputName, reference string }

type fakeImages struct {
	dir   string
	err   error
	calls []generateCall
}

func (f *fakeImages) Generate(_ context.Context, prompt, outputName, reference string) (string, error) {
	f.calls = append(f.calls, generateCall{prompt, outputName, reference})
	if f.err != nil {
		return "", f.err
	}
	return filepath.Join(f.dir, outputName+".png"), nil
}

type animateCall struct{ imagePath, outputName, prompt string }

type fakeVideos struct {
	dir   string
	err   error
	calls []animateCall
}

func (f *fakeVideos) Animate(_ context.Context, imagePath, outputName, prompt string) (string, error) {
	f.calls = append(f.calls, animateCall{imagePath, outputName, prompt})
	if f.err != nil {
		return "", f.err
	}
	return filepath.Join(f.dir, outputName+".mp4"), nil
}

type fakeImageProvider struct {
	result ai.ImageResult
	err    error
	refs   []*ai.Image
}

func (f *fakeImageProvider) Generate(_ context.Context, _ string, ref *ai.Image) (ai.ImageResult, error) {
	f.refs = append(f.refs, ref)
	return f.result, f.err
}

type fakeVideoProvider struct {
	url    string
	err    error
	frames []ai.Image
}

func (f *fakeVideoProvider) Animate(_ context.Context, _ string, startFrame ai.Image) (string, error) {
	f.frames = append(f.frames, startFrame)
	return f.url, f.err
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, G: 120, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, pngBytes(t), 0o644))
}
