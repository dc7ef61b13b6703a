package llm

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strconv"

	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/chat"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/config"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/providers"
)

var reStatusCode = regexp.MustCompile(`status(?: code)?[: ]+(\d{3})`)

// OutcomeFromError converts a call error into a providers.Outcome. Client
// libraries flatten HTTP errors into message strings, so the status code is
// recovered from the text when present; true transport failures keep the
// original error for network classification.
func OutcomeFromError(err error, latencyMs int64) providers.Outcome {
	if err == nil {
		return providers.Outcome{OK: true, HTTPStatus: 200, LatencyMs: latencyMs}
	}

	outcome := providers.Outcome{ErrorMessage: err.Error(), LatencyMs: latencyMs}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		outcome.TransportErr = err
		return outcome
	}

	if m := reStatusCode.FindStringSubmatch(err.Error()); m != nil {
		if code, convErr := strconv.Atoi(m[1]); convErr == nil && code >= 300 && code <= 599 {
			outcome.HTTPStatus = code
			return outcome
		}
	}

	// No response and no recognizable status: treat as a transport failure
	outcome.TransportErr = err
	return outcome
}

// IsLocalCancel reports whether err is the caller's own cancellation rather
// than a provider failure. A canceled call says nothing about connectivity;
// callers skip outcome recording for it. Deadline expiry is not a local
// cancel: a timed-out provider is a network signal worth recording.
func IsLocalCancel(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Check probes one provider and returns the outcome to record. Unconfigured
// and disabled providers short-circuit before any network call.
func Check(ctx context.Context, provider Provider, cfg config.ProviderConfig) providers.Outcome {
	if !cfg.Enabled {
		return providers.Outcome{Disabled: true}
	}
	if cfg.RequiresAPIKey() && cfg.APIKey == "" {
		return providers.Outcome{Unconfigured: true}
	}
	if provider == nil {
		return providers.Outcome{}
	}

	probe := []chat.Message{chat.NewUserMessage("ping")}
	result, err := provider.Stream(ctx, probe, nil)
	if err != nil {
		return OutcomeFromError(err, result.LatencyMs)
	}
	return providers.Outcome{OK: true, HTTPStatus: 200, LatencyMs: result.LatencyMs}
}
