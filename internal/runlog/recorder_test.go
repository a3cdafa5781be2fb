package runlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	records []Record
	err     error
}

func (m *memStore) Load(context.Context) ([]Record, error) { return m.records, nil }
func (m *memStore) Append(_ context.Context, rec Record) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}
func (m *memStore) Close() error { return nil }

// tickingClock returns a clock that advances one second per call.
func tickingClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		now := t
		t = t.Add(time.Second)
		return now
	}
}

func TestRecorderLifecycle(t *testing.T) {
	store := &memStore{}
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewRecorder(store, WithClock(tickingClock(start)))

	require.NoError(t, r.Start("input/A.jpg"))
	r.LogStyleDescription("warm watercolor, soft edges")
	r.LogGenerationPrompt("first prompt")
	r.LogGenerationPrompt("second prompt")
	r.LogOutputImage("image/A_generated.png")

	open, ok := r.Current()
	require.True(t, ok)
	assert.Equal(t, StatusStarted, open.Status)
	assert.Nil(t, open.CompletedAt)
	assert.Empty(t, store.records, "nothing is persisted before finish")

	rec, err := r.Finish(context.Background(), true, "")
	require.NoError(t, err)

	require.Len(t, store.records, 1)
	assert.Equal(t, rec, store.records[0])
	assert.Equal(t, "A.jpg", rec.InputFile)
	assert.Equal(t, start, rec.Timestamp)
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.Equal(t, "second prompt", Deref(rec.GenerationPrompt))
	assert.Equal(t, "A_generated.png", Deref(rec.OutputImage))
	assert.Nil(t, rec.VideoPrompt)
	assert.Nil(t, rec.OutputVideo)
	require.NotNil(t, rec.CompletedAt)
	assert.True(t, rec.CompletedAt.After(rec.Timestamp))
	assert.Empty(t, rec.ErrorMessage)
}

func TestRecorderFinishOnlyOnce(t *testing.T) {
	store := &memStore{}
	r := NewRecorder(store)
	require.NoError(t, r.Start("a.png"))
	assert.ErrorIs(t, r.Start("b.png"), ErrAlreadyStarted)

	rec, err := r.Finish(context.Background(), false, "provider error: boom")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, "provider error: boom", rec.ErrorMessage)

	_, err = r.Finish(context.Background(), true, "")
	assert.ErrorIs(t, err, ErrNoOpenRecord)
	assert.Len(t, store.records, 1)

	// Updates after finish never reach the persisted record.
	r.LogGenerationPrompt("late")
	assert.Nil(t, store.records[0].GenerationPrompt)
}

func TestRecorderFinishStoreError(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}
	r := NewRecorder(store)
	require.NoError(t, r.Start("a.png"))

	rec, err := r.Finish(context.Background(), true, "")
	assert.Error(t, err)
	assert.Equal(t, StatusCompleted, rec.Status)
	_, open := r.Current()
	assert.False(t, open)
}
