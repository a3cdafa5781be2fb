package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	animatePrompt string
	animateName   string
)

func newAnimateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "animate <image>",
		Short: "Animate an image into a short video",
		Long:  "Use the image as the start frame of a video generation task and save the result as <name>.mp4 in the video directory, without recording a run.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(animatePrompt) == "" {
				return errors.New("--prompt is required")
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.cfg.RequireCredentials(true); err != nil {
				return err
			}

			name := animateName
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0])) + "_animated"
			}
			path, err := withSpinner(cmd, "Animating video... (this may take a while)", func() (string, error) {
				return a.videos().Animate(cmd.Context(), args[0], name, animatePrompt)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Video saved at: %s\n", path)
			return nil
		},
		Example: `restyle animate image/portrait_generated.png --prompt "slow dolly in, leaves drifting"`,
	}
	cmd.Flags().StringVarP(&animatePrompt, "prompt", "p", "", "Prompt describing the motion (required)")
	cmd.Flags().StringVarP(&animateName, "name", "n", "", "Output name without extension (default <image>_animated)")
	return cmd
}

func init() { rootCmd.AddCommand(newAnimateCmd()) }
