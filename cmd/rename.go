package cmd

import (
	"github.com/spf13/cobra"

	"mediac/internal/app/common"
	"mediac/internal/app/rename"
)

var renameFlags struct {
	conditions conditionFlags
	template   string
	prefix     string
}

var renameCmd = &cobra.Command{
	Use:   "rename <root>",
	Short: "Rename media files to capture-date-derived names",
	Long: "Rename derives each file's new name from its EXIF capture date, or\n" +
		"the modification time when no EXIF data exists. The template is a Go\n" +
		"time layout; the reference time is Mon Jan 2 15:04:05 2006.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}
		set, err := renameFlags.conditions.build()
		if err != nil {
			return err
		}

		res, err := rename.NewService().Run(cmd.Context(), app, args[0], rename.Options{
			Conditions: set,
			Template:   renameFlags.template,
			Prefix:     renameFlags.prefix,
		})
		if err != nil {
			return err
		}
		return printResult(res)
	},
}

func init() {
	renameFlags.conditions.register(renameCmd)
	renameCmd.Flags().StringVarP(&renameFlags.template, "template", "t", rename.DefaultTemplate, "Go time layout for the new name")
	renameCmd.Flags().StringVarP(&renameFlags.prefix, "prefix", "p", "", "Literal prefix, e.g. IMG_")
}
