// Package http contains the HTTP handlers for the forecasting API:
// dataset upload and forecasting, and health probes. Handlers translate
// pipeline errors into structured JSON error responses.
package http
