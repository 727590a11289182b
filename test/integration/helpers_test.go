package integration_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/segid/store"
)

// restartableServer is a NATS server that keeps its port and JetStream
// directory across restarts.
type restartableServer struct {
	t        *testing.T
	storeDir string
	port     int
	ns       *server.Server
}

func startRestartableServer(t *testing.T) *restartableServer {
	t.Helper()

	s := &restartableServer{t: t, storeDir: t.TempDir(), port: -1}
	s.start()
	s.port = s.ns.Addr().(*net.TCPAddr).Port
	t.Cleanup(s.stop)

	return s
}

func (s *restartableServer) start() {
	s.t.Helper()

	ns, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      s.port,
		JetStream: true,
		StoreDir:  s.storeDir,
		NoLog:     true,
		NoSigs:    true,
	})
	require.NoError(s.t, err)

	go ns.Start()
	require.True(s.t, ns.ReadyForConnections(5*time.Second), "NATS server not ready")
	s.ns = ns
}

func (s *restartableServer) stop() {
	if s.ns == nil {
		return
	}
	s.ns.Shutdown()
	s.ns.WaitForShutdown()
	s.ns = nil
}

func (s *restartableServer) restart() {
	s.stop()
	s.start()
}

func (s *restartableServer) url() string {
	return s.ns.ClientURL()
}

// connect opens a client that reconnects forever, like a long-running service would.
func connect(t *testing.T, url string) *nats.Conn {
	t.Helper()

	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(50*time.Millisecond),
		nats.Timeout(time.Second),
	)
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	return nc
}

// openCounters opens the file-backed counter bucket through nc.
func openCounters(t *testing.T, nc *nats.Conn, bucket string) *store.NATSKV {
	t.Helper()

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	cfg := store.DefaultBucketConfig()
	cfg.Bucket = bucket

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	counters, err := store.OpenNATSKV(ctx, js, cfg)
	require.NoError(t, err)

	return counters
}
