package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/config"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/coordinator"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/llm"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/logger"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/providers"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/tui/statusline"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check connectivity for all configured providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		coord := coordinator.New(logger.WithComponent("status"))

		line := statusline.New(0)
		coord.OnStatusChange(line.Update)

		for _, id := range cfg.ProviderIDs() {
			providerCfg, _ := cfg.Provider(id)
			coord.ProviderOutcome(id, providerCfg.Name, probeProvider(cmd.Context(), id, providerCfg))
		}

		fmt.Println(line.View())
		fmt.Println()

		for _, record := range coord.Providers().All() {
			printRecord(record)
		}
		return nil
	},
}

// probeProvider builds the adapter and runs the connectivity check. Adapter
// construction failures surface as unknown-state outcomes rather than
// aborting the whole command.
func probeProvider(ctx context.Context, id string, providerCfg config.ProviderConfig) providers.Outcome {
	if !providerCfg.Enabled {
		return providers.Outcome{Disabled: true}
	}

	adapter, err := llm.NewProvider(id, providerCfg)
	if err != nil {
		return providers.Outcome{ErrorMessage: err.Error()}
	}

	timeout := providerCfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return llm.Check(probeCtx, adapter, providerCfg)
}

func printRecord(record providers.StatusRecord) {
	fmt.Printf("%s %s: %s", record.Status.Icon(), record.ProviderName, record.Status.Description())
	if record.LastLatencyMs > 0 {
		fmt.Printf(" (%dms)", record.LastLatencyMs)
	}
	fmt.Println()

	if record.ErrorMessage != "" {
		fmt.Printf("    %s\n", record.ErrorMessage)
	}
	for _, suggestion := range record.Suggestions {
		fmt.Printf("    - %s\n", suggestion)
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
