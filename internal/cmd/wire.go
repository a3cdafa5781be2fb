package cmd

import (
	"io"
	"net/http"

	"github.com/Bochyn/Image-to-video/internal/ai"
	"github.com/Bochyn/Image-to-video/internal/config"
	"github.com/Bochyn/Image-to-video/internal/console"
	"github.com/Bochyn/Image-to-video/internal/logging"
	"github.com/Bochyn/Image-to-video/internal/pipeline"
	"github.com/Bochyn/Image-to-video/internal/runlog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app holds what every command needs: configuration, a logger and the run
// log store.
type app struct {
	cfg   config.Config
	log   *zap.Logger
	store runlog.Store
	http  *http.Client
}

func newApp() (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}
	log, err := logging.New(logging.Options{File: cfg.LogFile, Debug: debug})
	if err != nil {
		return nil, err
	}
	store, err := runlog.Open(cfg.RunLog)
	if err != nil {
		return nil, err
	}
	if js, ok := store.(*runlog.JSONStore); ok {
		js.Log = log.Named("runlog")
	}
	log.Debug("configuration loaded",
		zap.String("runlog_backend", cfg.RunLog.Backend),
		zap.String("runlog_path", cfg.RunLog.Path),
		zap.String("image_model", cfg.Image.Model),
		zap.String("video_model", cfg.Video.Model),
	)
	return &app{cfg: cfg, log: log, store: store, http: http.DefaultClient}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("closing run log", zap.Error(err))
	}
	_ = a.log.Sync()
}

func (a *app) describer() *pipeline.StyleDescriber {
	return pipeline.NewStyleDescriber(ai.NewChatClient(a.cfg.Text, a.cfg.Describer), a.log.Named("describe"))
}

func (a *app) promptLoop(p console.Prompter, out io.Writer) *pipeline.PromptLoop {
	enhancer := pipeline.NewPromptEnhancer(ai.NewChatClient(a.cfg.Text, a.cfg.Enhancer))
	return pipeline.NewPromptLoop(ai.NewChatClient(a.cfg.Text, a.cfg.Creator), enhancer, p, out, a.log.Named("prompt"))
}

func (a *app) images() *pipeline.ImageService {
	return pipeline.NewImageService(ai.NewGeminiImage(a.cfg.Image), a.cfg.Paths.ImageDir, a.cfg.Image.OutputFormat, a.http, a.log.Named("image"))
}

func (a *app) videos() *pipeline.VideoService {
	log := a.log.Named("video")
	return pipeline.NewVideoService(ai.NewArkVideo(a.cfg.Video, log), a.cfg.Paths.VideoDir, a.http, log)
}

func (a *app) orchestrator(term *console.Terminal, out io.Writer) *pipeline.Orchestrator {
	return pipeline.New(pipeline.Deps{
		Describer:   a.describer(),
		Prompts:     a.promptLoop(term, out),
		Images:      a.images(),
		Videos:      a.videos(),
		Store:       a.store,
		Prompter:    term,
		Progress:    console.NewSpinner(out),
		Credentials: a.cfg.RequireCredentials,
		Out:         out,
		Log:         a.log.Named("pipeline"),
	})
}

func withSpinner(cmd *cobra.Command, message string, fn func() (string, error)) (string, error) {
	stop := console.NewSpinner(cmd.OutOrStdout()).Start(message)
	defer stop()
	return fn()
}
