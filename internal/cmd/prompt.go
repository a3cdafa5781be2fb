package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Bochyn/Image-to-video/internal/console"
	"github.com/spf13/cobra"
)

var promptStyle string

func newPromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt [image]",
		Short: "Draft and refine a generation prompt interactively",
		Long:  "Draft a generation prompt from a style description (given with --style, or described from an image) and refine it until you accept it.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(promptStyle) == "" && len(args) == 0 {
				return errors.New("either --style or an image is required")
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			style := promptStyle
			if strings.TrimSpace(style) == "" {
				style, err = withSpinner(cmd, "Analyzing image style...", func() (string, error) {
					return a.describer().Describe(cmd.Context(), args[0])
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Style description:\n%s\n", style)
			}

			out := cmd.OutOrStdout()
			term := console.NewTerminal(cmd.InOrStdin(), out)
			final, err := a.promptLoop(term, out).Create(cmd.Context(), style)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nFinal prompt:\n%s\n", final)
			return nil
		},
		Example: `restyle prompt input/portrait.jpg
restyle prompt --style "warm watercolor, soft edges, muted palette"`,
	}
	cmd.Flags().StringVar(&promptStyle, "style", "", "Style description to start from instead of describing an image")
	return cmd
}

func init() { rootCmd.AddCommand(newPromptCmd()) }
