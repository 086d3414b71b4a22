// Package component defines the lifecycle interface shared by the model
// store, the transcoder and the HTTP server, and a Registry that starts
// them in order, stops them in reverse and aggregates their health for the
// readiness endpoint.
package component
