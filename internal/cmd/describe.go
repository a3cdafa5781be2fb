package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <image>",
		Short: "Describe the visual style of an image",
		Long:  "Ask the vision model for a description of the image's style only (medium, palette, lighting, texture), without recording a run.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			style, err := withSpinner(cmd, "Analyzing image style...", func() (string, error) {
				return a.describer().Describe(cmd.Context(), args[0])
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), style)
			return nil
		},
		Example: `restyle describe input/portrait.jpg`,
	}
	return cmd
}

func init() { rootCmd.AddCommand(newDescribeCmd()) }
