package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Bochyn/Image-to-video/internal/prompts"
	"github.com/spf13/viper"
)

// Run log backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// TextModel configures one text or vision completion call.
type TextModel struct {
	Model        string
	Temperature  float64
	TopP         float64
	MaxTokens    int64
	SystemPrompt string
}

// TextProvider points the OpenAI-compatible client at an endpoint.
type TextProvider struct {
	BaseURL string
	APIKey  string
}

// ImageModel configures image generation.
type ImageModel struct {
	Model        string
	OutputFormat string
	AspectRatio  string
	Seed         int32
	APIKey       string
}

// VideoModel configures image-to-video generation.
type VideoModel struct {
	Model          string
	BaseURL        string
	Duration       int
	Resolution     string
	CameraFixed    bool
	NegativePrompt string
	PollInterval   time.Duration
	APIKey         string
}

// Paths holds the working directories of a run.
type Paths struct {
	InputDir string
	ImageDir string
	VideoDir string
	LogDir   string
}

// RunLog selects where run records are persisted.
type RunLog struct {
	Backend string
	Path    string
}

// Config is the immutable configuration for one process. Every service gets
// the record it needs at construction time.
type Config struct {
	Text      TextProvider
	Describer TextModel
	Creator   TextModel
	Enhancer  TextModel
	Image     ImageModel
	Video     VideoModel
	Paths     Paths
	RunLog    RunLog
	LogFile   string
}

// Credential environment variables.
const (
	EnvTextKey  = "OPENAI_API_KEY"
	EnvImageKey = "GEMINI_API_KEY"
	EnvVideoKey = "ARK_API_KEY"
)

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("text.base_url", "")
	_ = v.BindEnv("text.api_key", EnvTextKey)

	v.SetDefault("describer.model", "gpt-4o-mini")
	v.SetDefault("describer.temperature", 0.1)
	v.SetDefault("describer.top_p", 0.9)
	v.SetDefault("describer.max_tokens", 500)
	v.SetDefault("describer.system_prompt", prompts.StyleInstruction())

	v.SetDefault("creator.model", "gpt-4o-mini")
	v.SetDefault("creator.temperature", 0.5)
	v.SetDefault("creator.top_p", 0.9)
	v.SetDefault("creator.max_tokens", 150)
	v.SetDefault("creator.system_prompt", prompts.CreatorSystemPrompt())

	v.SetDefault("enhancer.model", "gpt-4o-mini")
	v.SetDefault("enhancer.temperature", 0.5)
	v.SetDefault("enhancer.top_p", 0.9)
	v.SetDefault("enhancer.max_tokens", 150)
	v.SetDefault("enhancer.system_prompt", prompts.EnhancerSystemPrompt())

	v.SetDefault("image.model", "gemini-2.5-flash-image")
	v.SetDefault("image.output_format", "png")
	v.SetDefault("image.aspect_ratio", "")
	v.SetDefault("image.seed", 55)
	_ = v.BindEnv("image.api_key", EnvImageKey)

	v.SetDefault("video.model", "doubao-seedance-1-0-pro-250528")
	v.SetDefault("video.base_url", "https://ark.cn-beijing.volces.com/api/v3")
	v.SetDefault("video.duration", 5)
	v.SetDefault("video.resolution", "720p")
	v.SetDefault("video.camera_fixed", false)
	v.SetDefault("video.negative_prompt", "blurry, low quality, bad quality, watermark, text, signature")
	v.SetDefault("video.poll_interval", "5s")
	_ = v.BindEnv("video.api_key", EnvVideoKey)

	v.SetDefault("paths.input_dir", "input")
	v.SetDefault("paths.image_dir", "image")
	v.SetDefault("paths.video_dir", "video")
	v.SetDefault("paths.log_dir", "logs")

	v.SetDefault("runlog.backend", BackendJSON)
	v.SetDefault("runlog.path", "")
	v.SetDefault("log_file", "")
}

// Load reads v into a validated Config.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Text: TextProvider{
			BaseURL: strings.TrimSpace(v.GetString("text.base_url")),
			APIKey:  strings.TrimSpace(v.GetString("text.api_key")),
		},
		Describer: textModel(v, "describer"),
		Creator:   textModel(v, "creator"),
		Enhancer:  textModel(v, "enhancer"),
		Image: ImageModel{
			Model:        strings.TrimSpace(v.GetString("image.model")),
			OutputFormat: normalizeFormat(v.GetString("image.output_format")),
			AspectRatio:  strings.TrimSpace(v.GetString("image.aspect_ratio")),
			Seed:         v.GetInt32("image.seed"),
			APIKey:       strings.TrimSpace(v.GetString("image.api_key")),
		},
		Video: VideoModel{
			Model:          strings.TrimSpace(v.GetString("video.model")),
			BaseURL:        strings.TrimSpace(v.GetString("video.base_url")),
			Duration:       v.GetInt("video.duration"),
			Resolution:     strings.TrimSpace(v.GetString("video.resolution")),
			CameraFixed:    v.GetBool("video.camera_fixed"),
			NegativePrompt: strings.TrimSpace(v.GetString("video.negative_prompt")),
			PollInterval:   v.GetDuration("video.poll_interval"),
			APIKey:         strings.TrimSpace(v.GetString("video.api_key")),
		},
		Paths: Paths{
			InputDir: v.GetString("paths.input_dir"),
			ImageDir: v.GetString("paths.image_dir"),
			VideoDir: v.GetString("paths.video_dir"),
			LogDir:   v.GetString("paths.log_dir"),
		},
		RunLog: RunLog{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString("runlog.backend"))),
			Path:    strings.TrimSpace(v.GetString("runlog.path")),
		},
		LogFile: strings.TrimSpace(v.GetString("log_file")),
	}

	switch cfg.RunLog.Backend {
	case BackendJSON:
		if cfg.RunLog.Path == "" {
			cfg.RunLog.Path = filepath.Join(cfg.Paths.LogDir, "process_log.json")
		}
	case BackendSQLite:
		if cfg.RunLog.Path == "" {
			cfg.RunLog.Path = filepath.Join(cfg.Paths.LogDir, "runs.db")
		}
	default:
		return Config{}, fmt.Errorf("unknown runlog.backend %q (want %s or %s)", cfg.RunLog.Backend, BackendJSON, BackendSQLite)
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.Paths.LogDir, "app.log")
	}
	switch cfg.Image.OutputFormat {
	case "png", "jpg":
	default:
		return Config{}, fmt.Errorf("unsupported image.output_format %q (want png or jpg)", cfg.Image.OutputFormat)
	}
	if cfg.Video.PollInterval <= 0 {
		cfg.Video.PollInterval = 5 * time.Second
	}
	return cfg, nil
}

func textModel(v *viper.Viper, key string) TextModel {
	return TextModel{
		Model:        strings.TrimSpace(v.GetString(key + ".model")),
		Temperature:  v.GetFloat64(key + ".temperature"),
		TopP:         v.GetFloat64(key + ".top_p"),
		MaxTokens:    v.GetInt64(key + ".max_tokens"),
		SystemPrompt: v.GetString(key + ".system_prompt"),
	}
}

func normalizeFormat(f string) string {
	f = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f), "."))
	if f == "jpeg" {
		return "jpg"
	}
	return f
}

// RequireCredentials reports the first generation credential that is missing.
// The video key is only needed when a video is requested.
func (c Config) RequireCredentials(wantsVideo bool) error {
	if c.Image.APIKey == "" {
		return fmt.Errorf("%s is not set; export it before running", EnvImageKey)
	}
	if wantsVideo && c.Video.APIKey == "" {
		return fmt.Errorf("%s is not set; export it before requesting a video", EnvVideoKey)
	}
	return nil
}

// EnsureDirs creates the working directories if they do not exist.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.Paths.InputDir, c.Paths.ImageDir, c.Paths.VideoDir, c.Paths.LogDir, filepath.Dir(c.RunLog.Path)} {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create dir %s: %w", dir, err)
		}
	}
	return nil
}

// LoadDotEnv copies KEY=VALUE pairs from path into the environment unless the
// key is already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		i := strings.IndexByte(line, '=')
		if i <= 0 {
			continue
		}
		k := strings.TrimSpace(line[:i])
		val := strings.Trim(strings.TrimSpace(line[i+1:]), `"'`)
		if _, exists := os.LookupEnv(k); !exists && k != "" {
			if err := os.Setenv(k, val); err != nil {
				return err
			}
		}
	}
	return nil
}
