// Package app wires configuration, logging, metrics, services, and the
// HTTP router into a runnable server with graceful shutdown.
package app
