package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/archive"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/chat"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/config"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/coordinator"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/llm"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	askProvider  string
	askNoArchive bool
)

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Send one prompt and stream the response",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.Join(args, " ")

		cfg := config.Get()
		providerID := askProvider
		if providerID == "" {
			providerID = cfg.DefaultProvider
		}
		providerCfg, ok := cfg.Provider(providerID)
		if !ok {
			return fmt.Errorf("unknown provider: %s", providerID)
		}

		coord := coordinator.New(logger.WithComponent("ask"))
		session := coord.Sessions().Current()

		if _, err := coord.UserInput(session.ID, prompt, providerID); err != nil {
			return err
		}

		adapter, err := llm.NewProvider(providerID, providerCfg)
		if err != nil {
			return err
		}

		timeout := providerCfg.Timeout
		if timeout == 0 {
			timeout = 2 * time.Minute
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		if _, err := coord.BeginStream(session.ID, providerID, providerCfg.Model); err != nil {
			return err
		}

		current, _ := coord.Sessions().Get(session.ID)
		result, streamErr := adapter.Stream(ctx, current.Messages, func(text string) {
			fmt.Print(text)
			coord.StreamFragment(session.ID, text)
		})
		fmt.Println()

		// Connectivity state reflects every call attempt, not only probes.
		// A local cancel is the user's own doing and records nothing.
		if !llm.IsLocalCancel(streamErr) {
			coord.ProviderOutcome(providerID, providerCfg.Name, llm.OutcomeFromError(streamErr, result.LatencyMs))
		}

		meta := chat.MessageMetadata{
			Tokens:    result.PromptTokens + result.OutputTokens,
			LatencyMs: result.LatencyMs,
		}
		msg, err := coord.StreamEnd(session.ID, streamErr, meta)
		if err != nil {
			return err
		}
		if msg.IsError() {
			fmt.Fprintf(os.Stderr, "Error: %s\n", msg.Content)
		}

		if !askNoArchive {
			archiveSession(coord, session.ID, cfg.Archive.Path)
		}
		return nil
	},
}

func archiveSession(coord *coordinator.Coordinator, sessionID, path string) {
	store, err := archive.Open(path, logger.WithComponent("archive"))
	if err != nil {
		logger.Warn("archive unavailable: %v", err)
		return
	}
	defer store.Close()

	if session, ok := coord.Sessions().Get(sessionID); ok {
		if err := store.Save(&session); err != nil {
			logger.Warn("failed to archive session: %v", err)
		}
	}
}

func init() {
	askCmd.Flags().StringVarP(&askProvider, "provider", "p", "", "provider id (defaults to configured default)")
	askCmd.Flags().BoolVar(&askNoArchive, "no-archive", false, "do not persist the session")
	rootCmd.AddCommand(askCmd)
}
