// Package integration holds end-to-end tests that run allocators against a
// real (embedded) NATS JetStream server, including server restarts.
package integration
