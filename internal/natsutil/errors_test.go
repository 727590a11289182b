package natsutil

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/segid/types"
)

func TestIsConnectivityError(t *testing.T) {
	require.False(t, IsConnectivityError(nil))
	require.True(t, IsConnectivityError(nats.ErrTimeout))
	require.True(t, IsConnectivityError(fmt.Errorf("get: %w", nats.ErrConnectionClosed)))
	require.True(t, IsConnectivityError(errors.New("dial tcp 127.0.0.1:4222: connect: connection refused")))
	require.False(t, IsConnectivityError(errors.New("bad payload")))
}

func TestIsRevisionConflict(t *testing.T) {
	require.False(t, IsRevisionConflict(nil))
	require.True(t, IsRevisionConflict(jetstream.ErrKeyExists))
	require.True(t, IsRevisionConflict(fmt.Errorf("update: %w", &jetstream.APIError{
		Code:      400,
		ErrorCode: jetstream.JSErrCodeStreamWrongLastSequence,
	})))
	require.False(t, IsRevisionConflict(jetstream.ErrKeyNotFound))
}

func TestClassify(t *testing.T) {
	require.NoError(t, Classify("get", nil))

	err := Classify("update", jetstream.ErrKeyExists)
	require.ErrorIs(t, err, types.ErrStoreConflict)
	require.NotErrorIs(t, err, types.ErrStoreUnavailable)

	err = Classify("get", nats.ErrNoServers)
	require.ErrorIs(t, err, types.ErrStoreUnavailable)
	require.ErrorIs(t, err, types.ErrConnectivity)

	err = Classify("get", context.DeadlineExceeded)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotErrorIs(t, err, types.ErrStoreConflict)

	err = Classify("decode", errors.New("garbage"))
	require.Contains(t, err.Error(), "decode: garbage")
}
