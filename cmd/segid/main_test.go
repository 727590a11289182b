package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/segid"
	segidtest "github.com/arloliu/segid/testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestNextAndPeek_Bolt(t *testing.T) {
	db := filepath.Join(t.TempDir(), "counters.db")

	out, err := runCLI(t, "next", "--store", "bolt", "--bolt-path", db, "--code", "orders", "--count", "3", "--batch-size", "10")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, strings.Fields(out))

	out, err = runCLI(t, "peek", "--store", "bolt", "--bolt-path", db, "--code", "orders")
	require.NoError(t, err)
	require.Contains(t, out, "value=10")

	// buffered ids from the first run are skipped, never reissued
	out, err = runCLI(t, "next", "--store", "bolt", "--bolt-path", db, "--code", "orders", "--batch-size", "10")
	require.NoError(t, err)
	require.Equal(t, "11", strings.TrimSpace(out))
}

func TestNextAndPeek_NATS(t *testing.T) {
	srv, _ := segidtest.StartEmbeddedNATS(t)
	url := srv.ClientURL()

	out, err := runCLI(t, "next", "--nats-url", url, "--bucket", "cli-test", "--code", "orders", "--count", "2")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, strings.Fields(out))

	out, err = runCLI(t, "peek", "--nats-url", url, "--bucket", "cli-test", "--code", "orders")
	require.NoError(t, err)
	require.Contains(t, out, "value=100")

	out, err = runCLI(t, "peek", "--nats-url", url, "--bucket", "cli-test", "--code", "unused")
	require.NoError(t, err)
	require.Contains(t, out, "no ids issued")
}

func TestNext_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "allocator.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("code: invoices\nbatchSize: 4\napplyThreshold: 1\n"), 0o600))

	out, err := runCLI(t, "next", "--store", "bolt", "--bolt-path", filepath.Join(dir, "c.db"), "--config", cfgPath, "--count", "5")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3", "4", "5"}, strings.Fields(out))
}

func TestNext_Errors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "counters.db")

	_, err := runCLI(t, "next", "--store", "bolt", "--bolt-path", db)
	require.ErrorIs(t, err, segid.ErrInvalidConfig)

	_, err = runCLI(t, "next", "--store", "tape", "--code", "orders")
	require.ErrorContains(t, err, "unknown store")

	_, err = runCLI(t, "peek", "--store", "bolt", "--bolt-path", db)
	require.ErrorIs(t, err, segid.ErrInvalidConfig)

	_, err = runCLI(t, "next", "--store", "bolt", "--bolt-path", db, "--code", "orders", "--log-level", "loud")
	require.Error(t, err)
}

func TestEnvironmentBinding(t *testing.T) {
	db := filepath.Join(t.TempDir(), "counters.db")
	t.Setenv("SEGID_STORE", "bolt")
	t.Setenv("SEGID_BOLT_PATH", db)
	t.Setenv("SEGID_CODE", "env-orders")

	out, err := runCLI(t, "next", "--count", "2")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, strings.Fields(out))
}
