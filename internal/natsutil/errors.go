// Package natsutil classifies NATS client errors for the counter store.
package natsutil

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/segid/types"
)

// IsConnectivityError checks if an error is caused by connectivity issues.
//
// This includes NATS timeouts, connection refused, disconnections, etc.
// Kept in internal/natsutil to avoid importing NATS dependencies in the types package.
//
// Parameters:
//   - err: Error to check
//
// Returns:
//   - bool: true if error indicates connectivity issue
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, types.ErrConnectivity) ||
		errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrDisconnected) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, nats.ErrConnectionDraining) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		errors.Is(err, jetstream.ErrNoHeartbeat) ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "i/o timeout")
}

// IsRevisionConflict reports whether err is a failed optimistic-concurrency check
// from kv.Create (key already exists) or kv.Update (wrong last sequence).
func IsRevisionConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, jetstream.ErrKeyExists) {
		return true
	}

	var apiErr *jetstream.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
	}

	return false
}

// Classify maps a NATS KV error onto the segid error taxonomy.
//
// Revision conflicts become types.ErrStoreConflict, connectivity failures are wrapped
// with types.ErrStoreUnavailable and types.ErrConnectivity, and context errors are
// returned unchanged so callers can tell timeouts apart. Anything else is returned
// with op as context.
func Classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case IsRevisionConflict(err):
		return fmt.Errorf("%s: %w: %w", op, types.ErrStoreConflict, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, err)
	case IsConnectivityError(err):
		return fmt.Errorf("%s: %w: %w: %w", op, types.ErrStoreUnavailable, types.ErrConnectivity, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
