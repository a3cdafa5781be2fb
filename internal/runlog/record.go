package runlog

import "time"

// Status is the lifecycle state of a run.
type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Record is the audit entry of one pipeline run. Nullable fields are
// pointers so they serialize as JSON null until a stage sets them.
type Record struct {
	Timestamp        time.Time  `json:"timestamp"`
	InputFile        string     `json:"input_file"`
	StyleDescription *string    `json:"style_description"`
	GenerationPrompt *string    `json:"generation_prompt"`
	VideoPrompt      *string    `json:"video_prompt"`
	OutputImage      *string    `json:"output_image"`
	OutputVideo      *string    `json:"output_video"`
	Status           Status     `json:"status"`
	CompletedAt      *time.Time `json:"completed_at"`
	ErrorMessage     string     `json:"error_message,omitempty"`
}

func strPtr(s string) *string { return &s }

// Deref returns the value of a nullable field, or "" for null.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
