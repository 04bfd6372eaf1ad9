package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"mediac/internal/app/common"
	"mediac/internal/app/transcode"
	"mediac/internal/infra/ffmpegx"
)

var transcodeFlags struct {
	conditions conditionFlags
	preset     string
	output     string
}

var transcodeCmd = &cobra.Command{
	Use:   "transcode <root>",
	Short: "Transcode audio/video files with a named ffmpeg preset",
	Long: "Transcode runs ffmpeg over every audio/video file under <root> into a\n" +
		"mirrored output tree.\n\nPresets: " + strings.Join(ffmpegx.Names(), ", "),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}
		set, err := transcodeFlags.conditions.build()
		if err != nil {
			return err
		}

		res, err := transcode.NewService().Run(cmd.Context(), app, args[0], transcode.Options{
			Conditions: set,
			Preset:     transcodeFlags.preset,
			Output:     transcodeFlags.output,
		})
		if err != nil {
			return err
		}
		return printResult(res)
	},
}

func init() {
	transcodeFlags.conditions.register(transcodeCmd)
	transcodeCmd.Flags().StringVarP(&transcodeFlags.preset, "preset", "p", "h264-1080p", "Encoding preset")
	transcodeCmd.Flags().StringVarP(&transcodeFlags.output, "output", "o", "", "Output root (default <root>_transcoded)")
}
