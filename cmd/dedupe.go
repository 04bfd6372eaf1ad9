package cmd

import (
	"github.com/spf13/cobra"

	"mediac/internal/app/common"
	"mediac/internal/app/dedupe"
)

var dedupeFlags struct {
	purge bool
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe <root>",
	Short: "Remove byte-identical duplicate files",
	Long: "Dedupe hashes files of equal size and removes exact duplicates,\n" +
		"keeping the first occurrence in walk order.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}

		res, err := dedupe.NewService().Run(cmd.Context(), app, args[0], dedupe.Options{
			Purge: dedupeFlags.purge,
		})
		if err != nil {
			return err
		}
		return printResult(res)
	},
}

func init() {
	dedupeCmd.Flags().BoolVar(&dedupeFlags.purge, "purge", false, "Delete permanently instead of using the holding area")
}
