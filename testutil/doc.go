// Package testutil provides deterministic fixtures for tests: synthetic
// signals, WAV encoding, a fake transcoder executable and component
// lifecycle helpers.
package testutil
