// Package version exposes build metadata for the version command and the
// service resource attributes.
package version
