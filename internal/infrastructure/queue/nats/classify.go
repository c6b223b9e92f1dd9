package nats

import (
	"context"
	"errors"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
	"github.com/kirillkom/sentiment-analyzer/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

// Faults of the link to the server. The job itself is fine and a later attempt may succeed.
var connectivityErrors = []error{
	nats.ErrNoServers,
	nats.ErrTimeout,
	nats.ErrConnectionClosed,
	nats.ErrDisconnected,
	nats.ErrReconnectBufExceeded,
}

// The server or client refused this particular message. Retrying cannot help
// and the broker is healthy, so the breaker must not trip.
var rejectedJobErrors = []error{
	nats.ErrMaxPayload,
	nats.ErrBadSubject,
	nats.ErrInvalidMsg,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func classifyPublishError(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return resilience.ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.ErrorClassification{}
	case isAny(err, rejectedJobErrors):
		return resilience.ErrorClassification{}
	case resilience.IsCircuitOpen(err), isAny(err, connectivityErrors):
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	default:
		return resilience.ErrorClassification{RecordFailure: true}
	}
}

// publishError marks broker outages as ErrTemporary so callers can tell them
// apart from a job the broker will never accept.
func publishError(err error) error {
	switch {
	case err == nil:
		return nil
	case domain.IsKind(err, domain.ErrTemporary):
		return err
	case resilience.IsCircuitOpen(err), isAny(err, connectivityErrors):
		return domain.WrapError(domain.ErrTemporary, operationPublish, err)
	default:
		return err
	}
}
