// Command voicescreen screens voice recordings for signs of a motor speech
// disorder.
//
//	voicescreen serve                      # HTTP API on :8080
//	voicescreen screen a.webm b.wav        # table of predictions
//	voicescreen features recording.ogg     # named 22-value feature vector
//	voicescreen version
//
// Configuration is read from --config, ./cmd/voicescreen/config.yml or
// ./config.yml, then overridden by environment variables such as
// MODEL_PATH or SERVER_PORT.
package main
