package cmd

import (
	"fmt"
	"os"

	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/config"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "aida",
	Short: "Multi-provider AI chat coordinator",
	Long: `aida coordinates chat sessions across multiple AI providers,
tracks each provider's connectivity state, and assembles streamed
responses into render-safe session transcripts.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile, cfg.Logging.Persist); err != nil {
			// Logging failure never blocks the command itself
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", ".aida/settings.yaml", "config file")

	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}
