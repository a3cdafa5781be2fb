package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Bochyn/Image-to-video/internal/config"
	"github.com/Bochyn/Image-to-video/internal/prompts"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
	"github.com/volcengine/volcengine-go-sdk/volcengine"
	"go.uber.org/zap"
)

// taskState is the part of an Ark content generation task we poll for.
type taskState struct {
	Status   string
	VideoURL string
}

// ArkVideo turns a start frame and a prompt into a video with an Ark
// content generation task.
type ArkVideo struct {
	cfg config.VideoModel
	log *zap.Logger

	create func(ctx context.Context, req model.CreateContentGenerationTaskRequest) (string, error)
	get    func(ctx context.Context, id string) (taskState, error)
}

func NewArkVideo(cfg config.VideoModel, log *zap.Logger) *ArkVideo {
	client := arkruntime.NewClientWithApiKey(cfg.APIKey, arkruntime.WithBaseUrl(cfg.BaseURL))
	return &ArkVideo{
		cfg: cfg,
		log: log,
		create: func(ctx context.Context, req model.CreateContentGenerationTaskRequest) (string, error) {
			resp, err := client.CreateContentGenerationTask(ctx, req)
			if err != nil {
				return "", err
			}
			return resp.ID, nil
		},
		get: func(ctx context.Context, id string) (taskState, error) {
			req := model.GetContentGenerationTaskRequest{}
			req.ID = id
			resp, err := client.GetContentGenerationTask(ctx, req)
			if err != nil {
				return taskState{}, err
			}
			st := taskState{Status: resp.Status}
			if strings.EqualFold(resp.Status, "succeeded") {
				st.VideoURL = resp.Content.VideoURL
			}
			return st, nil
		},
	}
}

// Animate submits the task and polls until it reaches a terminal status. It
// returns the URL of the generated video. There is no local deadline beyond
// ctx.
func (a *ArkVideo) Animate(ctx context.Context, prompt string, startFrame Image) (string, error) {
	text := prompts.BuildVideoPrompt(prompt, prompts.VideoParams{
		DurationSeconds: a.cfg.Duration,
		Resolution:      a.cfg.Resolution,
		CameraFixed:     a.cfg.CameraFixed,
		NegativePrompt:  a.cfg.NegativePrompt,
	})
	req := model.CreateContentGenerationTaskRequest{
		Model: a.cfg.Model,
		Content: []*model.CreateContentGenerationContentItem{
			{
				Type: model.ContentGenerationContentItemTypeText,
				Text: volcengine.String(text),
			},
			{
				Type:     model.ContentGenerationContentItemTypeImage,
				ImageURL: &model.ImageURL{URL: startFrame.DataURL()},
			},
		},
	}

	id, err := a.create(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create video task: %w", err)
	}
	if id == "" {
		return "", errors.New("create video task: empty task id")
	}
	a.log.Info("video task created", zap.String("task_id", id))

	interval := a.cfg.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	for {
		st, err := a.get(ctx, id)
		if err != nil {
			return "", fmt.Errorf("get video task %s: %w", id, err)
		}
		switch strings.ToLower(st.Status) {
		case "succeeded":
			if st.VideoURL == "" {
				return "", fmt.Errorf("video task %s succeeded without a video url", id)
			}
			return st.VideoURL, nil
		case "failed", "cancelled", "canceled", "expired":
			return "", fmt.Errorf("video task %s ended with status %s", id, st.Status)
		}
		a.log.Debug("video task pending", zap.String("task_id", id), zap.String("status", st.Status))

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(interval):
		}
	}
}
