package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists records as rows of an append-only table.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create run store dir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping run store: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createTables() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		input_file TEXT NOT NULL,
		style_description TEXT,
		generation_prompt TEXT,
		video_prompt TEXT,
		output_image TEXT,
		output_video TEXT,
		status TEXT NOT NULL,
		completed_at TEXT,
		error_message TEXT
	);`)
	return err
}

func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	var completed sql.NullString
	if rec.CompletedAt != nil {
		completed = sql.NullString{String: rec.CompletedAt.Format(time.RFC3339Nano), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO runs (timestamp, input_file, style_description, generation_prompt, video_prompt,
		output_image, output_video, status, completed_at, error_message)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.Format(time.RFC3339Nano), rec.InputFile,
		nullable(rec.StyleDescription), nullable(rec.GenerationPrompt), nullable(rec.VideoPrompt),
		nullable(rec.OutputImage), nullable(rec.OutputVideo),
		string(rec.Status), completed, rec.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT timestamp, input_file, style_description, generation_prompt, video_prompt,
		output_image, output_video, status, completed_at, error_message
	FROM runs ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec                                      Record
			ts, status                               string
			style, prompt, video, outImg, outVid, ca sql.NullString
			errMsg                                   sql.NullString
		)
		if err := rows.Scan(&ts, &rec.InputFile, &style, &prompt, &video, &outImg, &outVid, &status, &ca, &errMsg); err != nil {
			return nil, err
		}
		if rec.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		if ca.Valid {
			t, err := time.Parse(time.RFC3339Nano, ca.String)
			if err != nil {
				return nil, fmt.Errorf("parse completed_at %q: %w", ca.String, err)
			}
			rec.CompletedAt = &t
		}
		rec.Status = Status(status)
		rec.StyleDescription = fromNullable(style)
		rec.GenerationPrompt = fromNullable(prompt)
		rec.VideoPrompt = fromNullable(video)
		rec.OutputImage = fromNullable(outImg)
		rec.OutputVideo = fromNullable(outVid)
		rec.ErrorMessage = errMsg.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return strPtr(ns.String)
}
