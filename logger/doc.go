// Package logger provides structured logging on top of zerolog.
//
// It supports JSON and console output, level configuration, rotating file
// output via lumberjack, and component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "file"
//	  file: "/var/log/voicescreen.log"
//
// # Usage
//
//	log := logger.GetGlobalLogger().WithComponent("features")
//	log.Warn("sub-extractor degraded", logger.Fields("feature", "hnr"))
package logger
