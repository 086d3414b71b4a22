// Package config loads service configuration from YAML files, .env files and
// environment variables using viper and godotenv.
//
// # Usage
//
//	var cfg AppConfig
//	if err := config.LoadConfig("voicescreen", &cfg); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//
// Environment variables override file values: TRANSCODER_TIMEOUT maps to
// transcoder.timeout, MODEL_PATH to model.path.
package config
