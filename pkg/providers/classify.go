package providers

import "fmt"

// Classify maps a call outcome to a typed status plus actionable suggestions.
// It is pure and total: every outcome maps to exactly one status, unknown
// shapes fall back to StatusUnknown. This is the only place HTTP status codes
// are interpreted; adapters must not duplicate this mapping.
func Classify(providerName string, outcome Outcome) (ProviderStatus, []string) {
	switch {
	case outcome.Disabled:
		return StatusDisabled, []string{
			fmt.Sprintf("%s is disabled in the configuration", providerName),
			"Enable the provider in settings to use it again",
		}

	case outcome.Unconfigured:
		return StatusUnconfigured, []string{
			fmt.Sprintf("No API key configured for %s", providerName),
			fmt.Sprintf("Open settings and add your %s API key", providerName),
		}

	case outcome.OK:
		return StatusConnected, nil

	case outcome.TransportErr != nil:
		return StatusNetworkError, []string{
			"Check your internet connection",
			fmt.Sprintf("Check that the %s service is reachable", providerName),
			"Check proxy settings if applicable",
		}

	case outcome.HTTPStatus == 401 || outcome.HTTPStatus == 403:
		return StatusAuthError, []string{
			fmt.Sprintf("Verify that your %s API key is correct", providerName),
			fmt.Sprintf("Open settings: Providers > %s > API Key", providerName),
			fmt.Sprintf("Check that the key has not expired on the %s site", providerName),
			"Make sure you copied the full key without whitespace",
		}

	case outcome.HTTPStatus == 429:
		return StatusAPIError, []string{
			fmt.Sprintf("You have hit the request limit for %s", providerName),
			"Wait a few minutes before retrying",
			"Check your quota on the provider's site",
		}

	case outcome.HTTPStatus >= 500 && outcome.HTTPStatus <= 504:
		return StatusAPIError, []string{
			fmt.Sprintf("The %s service is temporarily unavailable", providerName),
			"Retry in a few moments",
			fmt.Sprintf("Check the service status on the %s site", providerName),
		}

	case outcome.HTTPStatus >= 300:
		return StatusAPIError, []string{
			fmt.Sprintf("Error %d from the %s service", outcome.HTTPStatus, providerName),
			"Check the logs for more details",
		}

	default:
		return StatusUnknown, []string{
			fmt.Sprintf("Unrecognized response from %s", providerName),
			"Check the logs for more details",
		}
	}
}

// ProviderError is a structured error carrying the classified status and its
// suggestions. It never crosses the core boundary as a raw transport error.
type ProviderError struct {
	ProviderID   string
	ProviderName string
	Status       ProviderStatus
	Code         int
	Message      string
	Suggestions  []string
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s API error %d: %s", e.ProviderName, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.ProviderName, e.Message)
}

// NewHTTPError builds a ProviderError from an HTTP error response
func NewHTTPError(providerID, providerName string, code int, message string) *ProviderError {
	status, suggestions := Classify(providerName, Outcome{HTTPStatus: code, ErrorMessage: message})
	return &ProviderError{
		ProviderID:   providerID,
		ProviderName: providerName,
		Status:       status,
		Code:         code,
		Message:      message,
		Suggestions:  suggestions,
	}
}

// NewNetworkError builds a ProviderError from a transport failure
func NewNetworkError(providerID, providerName string, err error) *ProviderError {
	status, suggestions := Classify(providerName, Outcome{TransportErr: err})
	return &ProviderError{
		ProviderID:   providerID,
		ProviderName: providerName,
		Status:       status,
		Message:      fmt.Sprintf("network error: %v", err),
		Suggestions:  suggestions,
	}
}
