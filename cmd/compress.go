package cmd

import (
	"github.com/spf13/cobra"

	"mediac/internal/app/common"
	"mediac/internal/app/compress"
)

var compressFlags struct {
	conditions conditionFlags
	output     string
	quality    int
	maxDim     int
	minSize    string
	suffix     string
}

var compressCmd = &cobra.Command{
	Use:   "compress <root>",
	Short: "Re-encode oversized images as JPEG",
	Long: "Compress finds images larger than the target dimension or size and\n" +
		"re-encodes them as JPEG into a mirrored output tree. Originals are\n" +
		"never touched.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}
		set, err := compressFlags.conditions.build()
		if err != nil {
			return err
		}
		minSize, err := parseSize(compressFlags.minSize)
		if err != nil {
			return err
		}

		res, err := compress.NewService().Run(cmd.Context(), app, args[0], compress.Options{
			Conditions:   set,
			Output:       compressFlags.output,
			Quality:      compressFlags.quality,
			MaxDimension: compressFlags.maxDim,
			MinSize:      minSize,
			Suffix:       compressFlags.suffix,
		})
		if err != nil {
			return err
		}
		return printResult(res)
	},
}

func init() {
	compressFlags.conditions.register(compressCmd)
	compressCmd.Flags().StringVarP(&compressFlags.output, "output", "o", "", "Output root (default <root>_compressed)")
	compressCmd.Flags().IntVarP(&compressFlags.quality, "quality", "q", 85, "JPEG quality 1..100")
	compressCmd.Flags().IntVar(&compressFlags.maxDim, "max-dimension", 1920, "Longest edge after resizing")
	compressCmd.Flags().StringVar(&compressFlags.minSize, "min-input-size", "", "Also compress files above this size, e.g. 2M")
	compressCmd.Flags().StringVar(&compressFlags.suffix, "suffix", "", "Append this suffix to output names")
}
