package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Bochyn/Image-to-video/internal/console"
	"github.com/Bochyn/Image-to-video/internal/runlog"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Deps are the collaborators of an Orchestrator. Progress, Out, Log and
// Clock are optional.
type Deps struct {
	Describer Describer
	Prompts   PromptCreator
	Images    ImageGenerator
	Videos    VideoAnimator
	Store     runlog.Store
	Prompter  console.Prompter
	Progress  console.Progress

	// Credentials reports a missing provider key for the requested run.
	Credentials func(wantsVideo bool) error

	Out   io.Writer
	Log   *zap.Logger
	Clock func() time.Time
}

// Orchestrator runs the full image to prompt to image (to video) sequence
// for one input and records it.
type Orchestrator struct {
	d Deps
}

func New(d Deps) *Orchestrator {
	if d.Progress == nil {
		d.Progress = console.Quiet{}
	}
	if d.Out == nil {
		d.Out = io.Discard
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return &Orchestrator{d: d}
}

// Run processes inputPath. Missing input or credentials are returned as
// errors and leave no record. Any later failure is logged, reported on Out
// and finalized as a failed record; the returned error is then non-nil only
// if the record itself could not be persisted.
func (o *Orchestrator) Run(ctx context.Context, inputPath string, wantsVideo bool) (runlog.Record, error) {
	log := o.d.Log
	if info, err := os.Stat(inputPath); err != nil || info.IsDir() {
		log.Error("input image not found", zap.String("path", inputPath))
		return runlog.Record{}, newError(KindInputNotFound, "run", fmt.Errorf("no image at %s", inputPath))
	}
	if o.d.Credentials != nil {
		if err := o.d.Credentials(wantsVideo); err != nil {
			log.Error("missing credential", zap.Error(err))
			return runlog.Record{}, newError(KindMissingCredential, "run", err)
		}
	}

	log = log.With(zap.String("run_id", uuid.NewString()))
	rec := runlog.NewRecorder(o.d.Store, runlog.WithClock(o.d.Clock), runlog.WithLogger(log.Named("runlog")))
	if err := rec.Start(inputPath); err != nil {
		return runlog.Record{}, err
	}
	log.Info("processing started", zap.String("input", inputPath), zap.Bool("video", wantsVideo))

	runErr := o.stages(ctx, rec, log, inputPath, wantsVideo)

	msg := ""
	if runErr != nil {
		msg = runErr.Error()
		log.Error("processing failed", zap.String("input", inputPath), zap.String("kind", string(KindOf(runErr))), zap.Error(runErr))
		fmt.Fprintf(o.d.Out, "\nProcess failed: %s\n", msg)
	}
	final, err := rec.Finish(context.WithoutCancel(ctx), runErr == nil, msg)
	if err != nil {
		return final, newError(KindIO, "save run record", err)
	}
	if runErr == nil {
		log.Info("processing finished", zap.String("input", inputPath))
		fmt.Fprintln(o.d.Out, "\nProcess completed successfully.")
	}
	return final, nil
}

func (o *Orchestrator) stages(ctx context.Context, rec *runlog.Recorder, log *zap.Logger, inputPath string, wantsVideo bool) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("unexpected failure: %v", p)
		}
	}()

	style, err := withProgress(o.d.Progress, "Step 1: Analyzing image style...", func() (string, error) {
		return o.d.Describer.Describe(ctx, inputPath)
	})
	if err != nil {
		return err
	}
	rec.LogStyleDescription(style)
	log.Info("style description ready", zap.String("style", style))
	fmt.Fprintf(o.d.Out, "\nStyle description:\n%s\n", style)

	fmt.Fprintln(o.d.Out, "\nStep 2: Creating the generation prompt")
	prompt, err := o.d.Prompts.Create(ctx, style)
	if err != nil {
		return err
	}
	rec.LogGenerationPrompt(prompt)
	log.Info("generation prompt accepted", zap.String("prompt", prompt))

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	imagePath, err := o.tweakLoop(ctx, rec, log, prompt, base+"_generated", inputPath)
	if err != nil {
		return err
	}

	if !wantsVideo {
		return nil
	}
	videoPrompt, err := o.d.Prompter.Ask("\nPlease enter the prompt for video generation")
	if err != nil {
		return newError(KindIO, "read video prompt", err)
	}
	if videoPrompt == "" {
		log.Warn("empty video prompt; using the generation prompt")
		fmt.Fprintln(o.d.Out, "No video prompt entered. Using the image generation prompt.")
		cur, _ := rec.Current()
		videoPrompt = runlog.Deref(cur.GenerationPrompt)
	}
	rec.LogVideoPrompt(videoPrompt)

	videoPath, err := withProgress(o.d.Progress, "Step 4: Animating video... (this may take a while)", func() (string, error) {
		return o.d.Videos.Animate(ctx, imagePath, base+"_animated", videoPrompt)
	})
	if err != nil {
		return err
	}
	rec.LogOutputVideo(videoPath)
	log.Info("video saved", zap.String("path", videoPath))
	fmt.Fprintf(o.d.Out, "\n--- Video Generated ---\nVideo saved to %s\n", videoPath)
	return nil
}

// tweakLoop generates an image and regenerates it with user supplied
// prompts until the user continues. It returns the last image path.
func (o *Orchestrator) tweakLoop(ctx context.Context, rec *runlog.Recorder, log *zap.Logger, prompt, outputName, reference string) (string, error) {
	for {
		path, err := withProgress(o.d.Progress, "Step 3: Generating image...", func() (string, error) {
			return o.d.Images.Generate(ctx, prompt, outputName, reference)
		})
		if err != nil {
			return "", err
		}
		rec.LogOutputImage(path)
		log.Info("image saved", zap.String("path", path))
		fmt.Fprintf(o.d.Out, "\n--- Image Generated ---\nImage saved to %s\n", path)

		choice, err := o.d.Prompter.Choose("What would you like to do?", "Continue", "Tweak prompt and regenerate")
		if err != nil {
			return "", newError(KindIO, "read tweak choice", err)
		}
		if choice == 1 {
			return path, nil
		}

		fmt.Fprintf(o.d.Out, "\nCurrent prompt:\n%s\n", prompt)
		next, err := o.d.Prompter.Ask("Enter your new prompt")
		if err != nil {
			return "", newError(KindIO, "read new prompt", err)
		}
		if next == "" {
			fmt.Fprintln(o.d.Out, "No new prompt entered. Continuing with the current image.")
			return path, nil
		}
		prompt = next
		rec.LogGenerationPrompt(prompt)
		log.Info("generation prompt updated", zap.String("prompt", prompt))
	}
}

// IsPreRun reports whether err stopped a run before it was recorded.
func IsPreRun(err error) bool {
	return errors.Is(err, ErrInputNotFound) || errors.Is(err, ErrMissingCredential)
}
