package runlog

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNoOpenRecord   = errors.New("runlog: no open record")
	ErrAlreadyStarted = errors.New("runlog: a record is already open")
)

// Recorder keeps the single open record of a run in memory and appends it to
// the store when the run finishes. It is not safe for concurrent runs sharing
// a store.
type Recorder struct {
	store Store
	now   func() time.Time
	log   *zap.Logger

	current *Record
}

// Option customizes a Recorder.
type Option func(*Recorder)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Recorder) { r.log = log }
}

func NewRecorder(store Store, opts ...Option) *Recorder {
	r := &Recorder{store: store, now: time.Now, log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start opens a new record for inputID with status started.
func (r *Recorder) Start(inputID string) error {
	if r.current != nil {
		return ErrAlreadyStarted
	}
	r.current = &Record{
		Timestamp: r.now(),
		InputFile: filepath.Base(inputID),
		Status:    StatusStarted,
	}
	r.log.Debug("run started", zap.String("input_file", r.current.InputFile))
	return nil
}

func (r *Recorder) LogStyleDescription(text string) { r.set(func(rec *Record) { rec.StyleDescription = strPtr(text) }) }

// LogGenerationPrompt overwrites the prompt; only the latest value is kept.
func (r *Recorder) LogGenerationPrompt(text string) { r.set(func(rec *Record) { rec.GenerationPrompt = strPtr(text) }) }

func (r *Recorder) LogVideoPrompt(text string) { r.set(func(rec *Record) { rec.VideoPrompt = strPtr(text) }) }

func (r *Recorder) LogOutputImage(path string) {
	r.set(func(rec *Record) { rec.OutputImage = strPtr(filepath.Base(path)) })
}

func (r *Recorder) LogOutputVideo(path string) {
	r.set(func(rec *Record) { rec.OutputVideo = strPtr(filepath.Base(path)) })
}

func (r *Recorder) set(fn func(*Record)) {
	if r.current == nil {
		r.log.Warn("run log update without an open record")
		return
	}
	fn(r.current)
}

// Current returns a copy of the open record.
func (r *Recorder) Current() (Record, bool) {
	if r.current == nil {
		return Record{}, false
	}
	return *r.current, true
}

// Finish stamps the terminal status and completion time, then appends the
// record to the store. The record is closed even if the append fails, so it
// can never be finalized twice.
func (r *Recorder) Finish(ctx context.Context, success bool, errorMessage string) (Record, error) {
	if r.current == nil {
		return Record{}, ErrNoOpenRecord
	}
	rec := *r.current
	r.current = nil

	completed := r.now()
	rec.CompletedAt = &completed
	rec.Status = StatusFailed
	if success {
		rec.Status = StatusCompleted
	} else {
		rec.ErrorMessage = errorMessage
	}

	if err := r.store.Append(ctx, rec); err != nil {
		r.log.Error("failed to persist run record", zap.Error(err))
		return rec, err
	}
	r.log.Info("run record saved", zap.String("status", string(rec.Status)), zap.String("input_file", rec.InputFile))
	return rec, nil
}
