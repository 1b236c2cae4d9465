// Package logging provides structured logging for the vectorcfg tools.
//
// This package wraps zap with convenience functions for the logging
// patterns used throughout the project. By default it is silent so that
// CLI output stays clean; set VECTORCFG_LOG_LEVEL to enable output.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (file reads, section encoding)
//   - Info: Normal operations (entries saved, certificates written)
//   - Warn: Non-fatal issues
//   - Error: Fatal issues (startup failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Entry saved",
//	    zap.String("serial", "00e20142"),
//	    zap.String("path", configPath),
//	)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
