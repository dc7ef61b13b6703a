package cmd

import (
	"fmt"
	"os"

	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/archive"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/config"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/export"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage archived chat sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		summaries, err := store.List()
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No archived sessions.")
			return nil
		}

		for _, summary := range summaries {
			fmt.Printf("%s  %-30s  %3d messages  %s\n",
				summary.ID, summary.Name, summary.MessageCount,
				summary.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export [session-id]",
	Short: "Export one archived session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		session, err := store.Load(args[0])
		if err != nil {
			return err
		}

		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		out := os.Stdout
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		return exporter.Export(session, out)
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete [session-id]",
	Short: "Delete one archived session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		return store.Delete(args[0])
	},
}

func openArchive() (*archive.Store, error) {
	return archive.Open(config.Get().Archive.Path, logger.WithComponent("archive"))
}

func init() {
	sessionsExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "export format (json, jsonl, yaml, md)")
	sessionsExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (defaults to stdout)")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsExportCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}
