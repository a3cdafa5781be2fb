package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Bochyn/Image-to-video/internal/console"
	"github.com/Bochyn/Image-to-video/internal/runlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type harness struct {
	describer *fakeDescriber
	creator   *fakeCompleter
	enhancer  *fakeEnhancer
	images    *fakeImages
	videos    *fakeVideos
	store     *runlog.JSONStore
	out       *bytes.Buffer
	input     string
	credErr   error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "A.jpg")
	require.NoError(t, os.WriteFile(input, []byte("jpeg bytes"), 0o644))
	return &harness{
		describer: &fakeDescriber{style: "warm watercolor, soft edges"},
		creator:   &fakeCompleter{replies: []string{"watercolor illustration, warm tones, soft edges, high quality"}},
		enhancer:  &fakeEnhancer{},
		images:    &fakeImages{dir: filepath.Join(dir, "image")},
		videos:    &fakeVideos{dir: filepath.Join(dir, "video")},
		store:     runlog.NewJSONStore(filepath.Join(dir, "logs", "process_log.json")),
		out:       &bytes.Buffer{},
		input:     input,
	}
}

func (h *harness) orchestrator(script string, clock func() time.Time) *Orchestrator {
	term := console.NewTerminal(strings.NewReader(script), h.out)
	return New(Deps{
		Describer:   h.describer,
		Prompts:     NewPromptLoop(h.creator, h.enhancer, term, h.out, zap.NewNop()),
		Images:      h.images,
		Videos:      h.videos,
		Store:       h.store,
		Prompter:    term,
		Credentials: func(bool) error { return h.credErr },
		Out:         h.out,
		Clock:       clock,
	})
}

func (h *harness) persisted(t *testing.T) []runlog.Record {
	t.Helper()
	recs, err := h.store.Load(context.Background())
	require.NoError(t, err)
	return recs
}

func clockFrom(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		t := now
		now = now.Add(time.Second)
		return t
	}
}

func TestRunAcceptAndContinue(t *testing.T) {
	h := newHarness(t)

	rec, err := h.orchestrator("1\n1\n", nil).Run(context.Background(), h.input, false)
	require.NoError(t, err)

	require.Len(t, h.images.calls, 1)
	assert.Equal(t, generateCall{
		prompt:     "watercolor illustration, warm tones, soft edges, high quality",
		outputName: "A_generated",
		reference:  h.input,
	}, h.images.calls[0])

	assert.Equal(t, runlog.StatusCompleted, rec.Status)
	assert.Equal(t, "A.jpg", rec.InputFile)
	assert.Equal(t, "warm watercolor, soft edges", runlog.Deref(rec.StyleDescription))
	assert.Equal(t, "watercolor illustration, warm tones, soft edges, high quality", runlog.Deref(rec.GenerationPrompt))
	assert.Equal(t, "A_generated.png", runlog.Deref(rec.OutputImage))
	assert.Nil(t, rec.VideoPrompt)
	assert.Nil(t, rec.OutputVideo)
	assert.NotNil(t, rec.CompletedAt)
	assert.Empty(t, h.videos.calls)

	recs := h.persisted(t)
	require.Len(t, recs, 1)
	assert.Equal(t, runlog.StatusCompleted, recs[0].Status)
}

func TestRunTweakKeepsLastPrompt(t *testing.T) {
	h := newHarness(t)

	script := "1\n" + // accept draft
		"2\nsecond prompt\n" +
		"2\nthird prompt\n" +
		"1\n"
	rec, err := h.orchestrator(script, nil).Run(context.Background(), h.input, false)
	require.NoError(t, err)

	require.Len(t, h.images.calls, 3)
	assert.Equal(t, "third prompt", h.images.calls[2].prompt)
	assert.Equal(t, "third prompt", runlog.Deref(rec.GenerationPrompt))
	assert.Equal(t, "third prompt", runlog.Deref(h.persisted(t)[0].GenerationPrompt))
}

func TestRunEmptyTweakContinues(t *testing.T) {
	h := newHarness(t)

	rec, err := h.orchestrator("1\n2\n\n", nil).Run(context.Background(), h.input, false)
	require.NoError(t, err)
	assert.Len(t, h.images.calls, 1)
	assert.Equal(t, runlog.StatusCompleted, rec.Status)
}

func TestRunGenerateFailureIsRecorded(t *testing.T) {
	h := newHarness(t)
	h.images.err = newError(KindProvider, "generate image", errors.New("quota exceeded"))

	rec, err := h.orchestrator("1\n", nil).Run(context.Background(), h.input, true)
	require.NoError(t, err)

	assert.Equal(t, runlog.StatusFailed, rec.Status)
	assert.Nil(t, rec.OutputImage)
	assert.NotNil(t, rec.CompletedAt)
	assert.Contains(t, rec.ErrorMessage, "quota exceeded")
	assert.Empty(t, h.videos.calls)

	recs := h.persisted(t)
	require.Len(t, recs, 1)
	assert.Equal(t, runlog.StatusFailed, recs[0].Status)
	assert.Contains(t, h.out.String(), "Process failed")
}

func TestRunMissingInputShortCircuits(t *testing.T) {
	h := newHarness(t)

	_, err := h.orchestrator("1\n1\n", nil).Run(context.Background(), filepath.Join(t.TempDir(), "nope.jpg"), false)
	assert.ErrorIs(t, err, ErrInputNotFound)
	assert.True(t, IsPreRun(err))

	assert.Zero(t, h.describer.calls)
	assert.Empty(t, h.creator.calls)
	assert.Empty(t, h.images.calls)
	assert.NoFileExists(t, h.store.Path)
}

func TestRunMissingCredential(t *testing.T) {
	h := newHarness(t)
	h.credErr = errors.New("GEMINI_API_KEY is not set")

	_, err := h.orchestrator("", nil).Run(context.Background(), h.input, false)
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.Zero(t, h.describer.calls)
	assert.NoFileExists(t, h.store.Path)
}

func TestRunDescribeFailure(t *testing.T) {
	h := newHarness(t)
	h.describer.err = newError(KindProvider, "describe style", errors.New("bad key"))

	rec, err := h.orchestrator("", nil).Run(context.Background(), h.input, false)
	require.NoError(t, err)
	assert.Equal(t, runlog.StatusFailed, rec.Status)
	assert.Nil(t, rec.StyleDescription)
	assert.Empty(t, h.creator.calls)
}

func TestRunStagePanicIsRecorded(t *testing.T) {
	h := newHarness(t)
	h.describer.panicWith = "boom"

	rec, err := h.orchestrator("", nil).Run(context.Background(), h.input, false)
	require.NoError(t, err)
	assert.Equal(t, runlog.StatusFailed, rec.Status)
	assert.Contains(t, rec.ErrorMessage, "unexpected failure: boom")
	assert.NotNil(t, rec.CompletedAt)
	assert.Empty(t, h.creator.calls)

	recs := h.persisted(t)
	require.Len(t, recs, 1)
	assert.Equal(t, runlog.StatusFailed, recs[0].Status)
	assert.Contains(t, recs[0].ErrorMessage, "unexpected failure: boom")
}

func TestRunVideoUsesEnteredPrompt(t *testing.T) {
	h := newHarness(t)

	rec, err := h.orchestrator("1\n1\ngentle camera push in\n", nil).Run(context.Background(), h.input, true)
	require.NoError(t, err)

	require.Len(t, h.videos.calls, 1)
	assert.Equal(t, animateCall{
		imagePath:  filepath.Join(h.images.dir, "A_generated.png"),
		outputName: "A_animated",
		prompt:     "gentle camera push in",
	}, h.videos.calls[0])
	assert.Equal(t, "gentle camera push in", runlog.Deref(rec.VideoPrompt))
	assert.Equal(t, "A_animated.mp4", runlog.Deref(rec.OutputVideo))
	assert.Equal(t, runlog.StatusCompleted, rec.Status)
}

func TestRunVideoFallsBackToGenerationPrompt(t *testing.T) {
	h := newHarness(t)

	rec, err := h.orchestrator("1\n2\nsecond prompt\n1\n\n", nil).Run(context.Background(), h.input, true)
	require.NoError(t, err)

	require.Len(t, h.videos.calls, 1)
	assert.Equal(t, "second prompt", h.videos.calls[0].prompt)
	assert.Equal(t, "second prompt", runlog.Deref(rec.VideoPrompt))
}

func TestRunVideoFailureKeepsImage(t *testing.T) {
	h := newHarness(t)
	h.videos.err = newError(KindDownload, "animate image", errors.New("connection reset"))

	rec, err := h.orchestrator("1\n1\nmove\n", nil).Run(context.Background(), h.input, true)
	require.NoError(t, err)
	assert.Equal(t, runlog.StatusFailed, rec.Status)
	assert.Equal(t, "A_generated.png", runlog.Deref(rec.OutputImage))
	assert.Equal(t, "move", runlog.Deref(rec.VideoPrompt))
	assert.Nil(t, rec.OutputVideo)
}

func TestRunsAppendToTheSameStore(t *testing.T) {
	h := newHarness(t)
	clock := clockFrom(time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC))

	_, err := h.orchestrator("1\n1\n", clock).Run(context.Background(), h.input, false)
	require.NoError(t, err)
	first, err := os.ReadFile(h.store.Path)
	require.NoError(t, err)

	second := filepath.Join(filepath.Dir(h.input), "B.png")
	require.NoError(t, os.WriteFile(second, []byte("png"), 0o644))
	h.creator.replies = []string{"another prompt"}
	_, err = h.orchestrator("1\n1\n", clock).Run(context.Background(), second, false)
	require.NoError(t, err)

	recs := h.persisted(t)
	require.Len(t, recs, 2)
	assert.Equal(t, "A.jpg", recs[0].InputFile)
	assert.Equal(t, "B.png", recs[1].InputFile)
	assert.True(t, recs[0].Timestamp.Before(recs[1].Timestamp))

	after, err := os.ReadFile(h.store.Path)
	require.NoError(t, err)
	// The first entry's bytes survive the rewrite.
	firstEntry := strings.TrimSuffix(strings.TrimSpace(string(first)), "]")
	assert.True(t, strings.HasPrefix(string(after), strings.TrimSpace(firstEntry)))
}
