package cmd

import (
	"github.com/spf13/cobra"

	"mediac/internal/app/common"
	"mediac/internal/app/thumbs"
)

var thumbsFlags struct {
	output string
	size   int
}

var thumbsCmd = &cobra.Command{
	Use:   "thumbs <root>",
	Short: "Generate thumbnails into a mirrored tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}

		res, err := thumbs.NewService().Run(cmd.Context(), app, args[0], thumbs.Options{
			Output: thumbsFlags.output,
			Size:   thumbsFlags.size,
		})
		if err != nil {
			return err
		}
		return printResult(res)
	},
}

func init() {
	thumbsCmd.Flags().StringVarP(&thumbsFlags.output, "output", "o", "", "Output root (default <root>_thumbs)")
	thumbsCmd.Flags().IntVarP(&thumbsFlags.size, "size", "s", 320, "Thumbnail bounding box in pixels")
}
