// Package security builds the TLS configuration for the HTTP server.
//
//	cfg := security.TLSConfig{
//	    CertFile:     "/etc/voicescreen/tls/cert.pem",
//	    KeyFile:      "/etc/voicescreen/tls/key.pem",
//	    ClientCAFile: "/etc/voicescreen/tls/clients.pem", // optional mTLS
//	}
//	tlsConfig, err := cfg.Build()
package security
