package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Bochyn/Image-to-video/internal/config"
	"github.com/Bochyn/Image-to-video/internal/console"
	"github.com/Bochyn/Image-to-video/internal/pipeline"
	"github.com/Bochyn/Image-to-video/internal/runlog"
	"github.com/Bochyn/Image-to-video/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errRunFailed marks a run that ended as a failed record. The failure was
// already reported, so Execute only sets the exit status.
var errRunFailed = errors.New("run failed")

var (
	cfgFile     string
	wantsVideo  bool
	debug       bool
	versionFlag bool

	rootCmd = &cobra.Command{
		Use:   "restyle [image]",
		Short: "Restyle: turn an image's style into a new image, and optionally a video",
		Long: `Restyle describes the visual style of an input image, drafts a generation prompt you can
refine, renders a new image with that prompt using the input as reference, and can animate
the result into a short video. Every run is appended to the run log.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if versionFlag {
				fmt.Fprintln(cmd.OutOrStdout(), version.Version)
				return nil
			}
			// Best effort, never blocks a run.
			maybeSelfUpdate(cmd)

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			input := filepath.Join(a.cfg.Paths.InputDir, "test.jpg")
			if len(args) > 0 {
				input = args[0]
			}

			out := cmd.OutOrStdout()
			term := console.NewTerminal(cmd.InOrStdin(), out)
			askMode := !cmd.Flags().Changed("video")
			return runInteractive(cmd.Context(), term, input, wantsVideo, askMode, a.orchestrator(term, out).Run)
		},
		Example: `restyle input/portrait.jpg
restyle --video input/portrait.jpg
restyle --video=false --config ./restyle.yaml`,
	}
)

// pipelineRun runs one recorded pipeline pass.
type pipelineRun func(ctx context.Context, input string, wantsVideo bool) (runlog.Record, error)

// runInteractive checks the input before anything is asked, picks the mode
// when it was not given as a flag, and maps the run outcome to an error.
func runInteractive(ctx context.Context, p console.Prompter, input string, video, askMode bool, run pipelineRun) error {
	if info, err := os.Stat(input); err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s (nothing was recorded)", pipeline.ErrInputNotFound, input)
	}
	if askMode {
		choice, err := p.Choose("Select mode:", "Generate Image only", "Generate Image and Video")
		if err != nil {
			return err
		}
		video = choice == 2
	}

	rec, err := run(ctx, input, video)
	if pipeline.IsPreRun(err) {
		return fmt.Errorf("%w (nothing was recorded)", err)
	}
	if err != nil {
		return err
	}
	if rec.Status == runlog.StatusFailed {
		return errRunFailed
	}
	return nil
}

// exitReport returns what Execute prints to stderr and the exit status.
// A failed run was already reported by the pipeline.
func exitReport(err error) (string, int) {
	switch {
	case err == nil:
		return "", 0
	case errors.Is(err, errRunFailed):
		return "", 1
	default:
		return fmt.Sprintf("Error: %v", err), 1
	}
}

func Execute() {
	msg, code := exitReport(rootCmd.ExecuteContext(context.Background()))
	if msg != "" {
		fmt.Fprintln(os.Stderr, msg)
	}
	if code != 0 {
		os.Exit(code)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .restyle.yaml in $HOME or the working directory)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log at debug level")
	rootCmd.PersistentFlags().String("runlog-backend", config.BackendJSON, "Run log backend: json or sqlite")
	viper.BindPFlag("runlog.backend", rootCmd.PersistentFlags().Lookup("runlog-backend"))

	rootCmd.Flags().BoolVar(&wantsVideo, "video", false, "Also animate the generated image (asks interactively when omitted)")
	rootCmd.Flags().String("format", "png", "Output image format: png or jpg")
	viper.BindPFlag("image.output_format", rootCmd.Flags().Lookup("format"))
	rootCmd.Flags().BoolVarP(&versionFlag, "version", "v", false, "Print version and exit")
}

func initConfig() {
	// Keys from .env fill in whatever the environment does not already set.
	_ = config.LoadDotEnv(".env")

	config.SetDefaults(viper.GetViper())
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".restyle")
	}
	if err := viper.ReadInConfig(); err != nil {
		// Only a named config file must exist.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Warning: config not loaded:", err)
		}
	}
}
