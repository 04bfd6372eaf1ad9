package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"mediac/internal/app/common"
	"mediac/internal/domain/model"
	"mediac/internal/infra/config"
	"mediac/internal/infra/logging"
)

var opts common.GlobalOptions

var rootCmd = &cobra.Command{
	Use:   "mediac",
	Short: "Mediac is a rule-driven media file management CLI",
	Long: "Mediac batch-processes media collections: remove, compress, thumbnail,\n" +
		"rename, transcode, organize and dedupe files selected by metadata rules.\n" +
		"Every command previews by default; pass --doit to apply changes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func Execute() error {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		logging.SetupConsole(opts.Debug)
		appCtx, err := buildAppContext(ctx)
		if err != nil {
			return err
		}
		cmd.SetContext(context.WithValue(ctx, common.ContextKeyApp, appCtx))
		return nil
	}

	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&opts.DoIt, "doit", false, "Apply changes (default is a dry-run preview)")
	rootCmd.PersistentFlags().BoolVar(&opts.Yes, "yes", false, "Auto-confirm actions in non-interactive mode")
	rootCmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&opts.NoOpLog, "no-oplog", false, "Disable the operation log")
	rootCmd.PersistentFlags().IntVar(&opts.Jobs, "jobs", 0, "Worker count (0 picks a default per command)")

	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(thumbsCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(transcodeCmd)
	rootCmd.AddCommand(organizeCmd)
	rootCmd.AddCommand(dedupeCmd)
}

func buildAppContext(ctx context.Context) (*common.AppContext, error) {
	store := config.NewStore()
	protected, err := store.LoadProtected(ctx)
	if err != nil {
		return nil, err
	}

	oplogDisabled := opts.NoOpLog || os.Getenv("MEDIAC_NO_OPLOG") == "1"
	oplog, err := logging.NewOperationLogger(ctx, oplogDisabled)
	if err != nil {
		oplog = logging.NewNoopLogger()
	}

	return &common.AppContext{
		Options:   opts,
		Protected: protected,
		Logger:    oplog,
		Fs:        afero.NewOsFs(),
		Confirm:   confirmPrompt,
	}, nil
}

var (
	headStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	dryStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	faintStyle = lipgloss.NewStyle().Faint(true)
)

func printResult(res model.CommandResult) error {
	if opts.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	header := headStyle.Render("mediac " + res.Command)
	if res.DryRun {
		header += " " + dryStyle.Render("[dry run]")
	}
	fmt.Println(header)
	if res.Conditions != "" {
		fmt.Println(faintStyle.Render("  conditions: " + res.Conditions))
	}

	s := res.Summary
	fmt.Printf("  %d selected of %d, %s\n",
		s.ItemsSelected, s.ItemsTotal, common.FormatBytes(s.BytesTotal))
	fmt.Printf("  %s  %s  %d skipped\n",
		okStyle.Render(fmt.Sprintf("%d ok", s.Succeeded)),
		failStyle.Render(fmt.Sprintf("%d failed", s.Failed)),
		s.Skipped)
	fmt.Println(faintStyle.Render(fmt.Sprintf("  done in %dms", res.DurationMS)))
	return nil
}
