package cmd

import (
	"github.com/spf13/cobra"

	"mediac/internal/app/common"
	"mediac/internal/app/remove"
	"mediac/internal/domain/rules"
)

var removeFlags struct {
	conditions conditionFlags
	purge      bool
}

var removeCmd = &cobra.Command{
	Use:   "remove <root>",
	Short: "Remove files matching the given conditions",
	Long: "Remove walks the tree under <root>, evaluates every file against the\n" +
		"condition flags and deletes the matches. Files go to a holding area\n" +
		"unless --purge is given. At least one condition flag is required.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}
		set, err := removeFlags.conditions.build()
		if err != nil {
			return err
		}
		if set == nil {
			return rules.ErrNoConditions
		}

		res, err := remove.NewService().Run(cmd.Context(), app, args[0], remove.Options{
			Conditions: set,
			Purge:      removeFlags.purge,
		})
		if err != nil {
			return err
		}
		return printResult(res)
	},
}

func init() {
	removeFlags.conditions.register(removeCmd)
	removeCmd.Flags().BoolVar(&removeFlags.purge, "purge", false, "Delete permanently instead of using the holding area")
}
