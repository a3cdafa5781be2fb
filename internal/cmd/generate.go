package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	genPrompt    string
	genReference string
	genName      string
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an image from a prompt and an optional reference image",
		Long:  "Render a prompt with the image model, conditioned on an optional reference image, and save it to the image directory without recording a run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(genPrompt) == "" {
				return errors.New("--prompt is required")
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.cfg.RequireCredentials(false); err != nil {
				return err
			}

			name := genName
			if name == "" {
				name = "output"
				if genReference != "" {
					name = strings.TrimSuffix(filepath.Base(genReference), filepath.Ext(genReference)) + "_generated"
				}
			}
			path, err := withSpinner(cmd, "Generating image...", func() (string, error) {
				return a.images().Generate(cmd.Context(), genPrompt, name, genReference)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated image saved at: %s\n", path)
			return nil
		},
		Example: `restyle generate \
  --prompt "Watercolor illustration of a lighthouse, warm tones, soft edges" \
  --reference input/portrait.jpg \
  --name lighthouse`,
	}

	cmd.Flags().StringVarP(&genPrompt, "prompt", "p", "", "Text prompt guiding the generation (required)")
	cmd.Flags().StringVarP(&genReference, "reference", "r", "", "Optional reference image path")
	cmd.Flags().StringVarP(&genName, "name", "n", "", "Output name without extension (default <reference>_generated or output)")

	// Basic validation of files to provide helpful errors early
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if genReference != "" {
			if _, err := os.Stat(genReference); err != nil {
				return fmt.Errorf("image not found: %s", genReference)
			}
		}
		return nil
	}
	return cmd
}

func init() { rootCmd.AddCommand(newGenerateCmd()) }
