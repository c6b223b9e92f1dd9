package ollama

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
	"github.com/kirillkom/sentiment-analyzer/internal/infrastructure/resilience"
)

// HTTPStatusError carries a non-2xx Ollama reply so callers can decide on retry.
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "ollama status error"
	}
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("ollama %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("ollama %s status: %s: %s", e.Operation, e.Status, body)
}

var (
	retryableFailure = resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	permanentFailure = resilience.ErrorClassification{Retryable: false, RecordFailure: true}
	callerFailure    = resilience.ErrorClassification{Retryable: false, RecordFailure: false}
)

// classifyOllamaError retries transport faults and overload statuses. Client
// errors such as an unknown model do not count against the breaker.
func classifyOllamaError(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return resilience.ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return callerFailure
	case resilience.IsCircuitOpen(err):
		return retryableFailure
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if isRetryableHTTPStatus(statusErr.StatusCode) {
			return retryableFailure
		}
		return callerFailure
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return retryableFailure
	}
	return permanentFailure
}

// wrapTemporaryIfNeeded marks failures worth retrying later as ErrTemporary and
// a missing model as ErrAnalyzerUnavailable.
func wrapTemporaryIfNeeded(operation string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) || domain.IsKind(err, domain.ErrAnalyzerUnavailable) {
		return err
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return domain.WrapError(domain.ErrAnalyzerUnavailable, operation, err)
	}
	if classifyOllamaError(err).Retryable || resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
