// Package server exposes the screening pipeline over HTTP using Gin, with
// h2c so HTTP/2 cleartext clients share the port.
//
// Routes:
//
//   - POST /parkinson and POST /api/v1/screenings/voice: multipart field
//     "audio", responds {"prediction": ..., "probability": ...}
//   - POST /api/v1/screenings/batch: several "audio" parts, per-file results
//   - GET /health, /ready, /live, /version
//
// Middleware (server/middleware) is applied around the whole handler:
// recovery, request ID, tracing, request logging, CORS, per-client rate
// limiting and a body size limit.
package server
