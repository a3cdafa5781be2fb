package runlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// JSONStore keeps all records in one JSON array document. Every append
// rewrites the whole file through a temporary file and a rename, so readers
// never observe a half-written document. Concurrent writers are not
// serialized: the last rename wins.
type JSONStore struct {
	Path string
	Log  *zap.Logger
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{Path: path, Log: zap.NewNop()}
}

func (s *JSONStore) Load(ctx context.Context) ([]Record, error) {
	raw, err := s.readRaw()
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(raw))
	for i, r := range raw {
		var rec Record
		if err := json.Unmarshal(r, &rec); err != nil {
			s.Log.Warn("skipping unreadable run record", zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *JSONStore) Append(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := s.readRaw()
	if err != nil {
		return err
	}
	entry, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode run record: %w", err)
	}
	raw = append(raw, entry)
	return s.write(raw)
}

func (s *JSONStore) Close() error { return nil }

// readRaw keeps existing entries as raw JSON so they are written back exactly
// as they were read. Missing or corrupt files read as an empty list.
func (s *JSONStore) readRaw() ([]json.RawMessage, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		s.Log.Warn("run log unreadable, starting a new list", zap.String("path", s.Path), zap.Error(err))
		return nil, nil
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		s.Log.Warn("run log corrupt, starting a new list", zap.String("path", s.Path), zap.Error(err))
		return nil, nil
	}
	return raw, nil
}

func (s *JSONStore) write(raw []json.RawMessage) error {
	if raw == nil {
		raw = []json.RawMessage{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(raw); err != nil {
		return fmt.Errorf("encode run log: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create run log dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp run log: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp run log: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp run log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace run log %s: %w", s.Path, err)
	}
	return nil
}
