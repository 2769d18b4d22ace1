package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
	"github.com/kirillkom/webinar-pipeline/internal/infrastructure/resilience"
)

type HTTPStatusError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "openai status error"
	}
	if e.Message == "" {
		return fmt.Sprintf("openai chat status: %s", e.Status)
	}
	return fmt.Sprintf("openai chat status: %s: %s", e.Status, e.Message)
}

func toProviderError(err error) *domain.ProviderError {
	var statusErr *HTTPStatusError
	switch {
	case errors.As(err, &statusErr):
		msg := statusErr.Message
		if msg == "" {
			msg = statusErr.Status
		}
		return domain.NewProviderError(statusErr.StatusCode, msg, err)
	case resilience.IsCircuitOpen(err):
		return domain.NewProviderError(0, "openai circuit open", err)
	default:
		return domain.ClassifyProviderError(err)
	}
}

func classifyOpenAIError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		default:
			// Auth and request errors are the caller's problem, not the provider's health.
			return resilience.ErrorClassification{}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{RecordFailure: true}
}
