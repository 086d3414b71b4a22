// Package provider is the request/response abstraction behind external
// collaborators such as the ffmpeg transcoder. Cross-cutting concerns are
// Hooks applied with Around; resilience policies live in a Guard whose
// state outlives individual calls.
//
//	rr := provider.Chain(
//	    provider.WithTracing[process.Command, *process.Result]("voicescreen"),
//	    provider.WithLogging[process.Command, *process.Result](log),
//	)(provider.WithResilience(adapter, cfg))
package provider
