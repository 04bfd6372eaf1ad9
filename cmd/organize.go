package cmd

import (
	"github.com/spf13/cobra"

	"mediac/internal/app/common"
	"mediac/internal/app/organize"
)

var organizeFlags struct {
	output string
	copy   bool
}

var organizeCmd = &cobra.Command{
	Use:   "organize <root>",
	Short: "Sort media into a YYYY/MM tree by capture date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}

		res, err := organize.NewService().Run(cmd.Context(), app, args[0], organize.Options{
			Output: organizeFlags.output,
			Copy:   organizeFlags.copy,
		})
		if err != nil {
			return err
		}
		return printResult(res)
	},
}

func init() {
	organizeCmd.Flags().StringVarP(&organizeFlags.output, "output", "o", "", "Output root (default <root>_organized)")
	organizeCmd.Flags().BoolVar(&organizeFlags.copy, "copy", false, "Copy instead of moving the originals")
}
