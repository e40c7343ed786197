package testmatch

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/calcio/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "test_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the test match tool.
func ShowHelp() {
	os.Stdout.WriteString(`Calcio Match Test Tool
======================

Runs a full simulated match against a running service and verifies the
stream invariants: score-event consistency, possession sum, shots on
target never exceeding shots, and monotone minutes across both halves.

Usage:
  go run cmd/test-match/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -home string
        Home team name (default "Barcelona")
  -away string
        Away team name (default "Atletico")
  -home-tactic string
        Home team tactic (default "tiki-taka")
  -away-tactic string
        Away team tactic (default "park-the-bus")
  -change-tactic string
        Half-time tactic change as side=tactic, e.g. "away=gegenpressing"
  -timeout duration
        HTTP request timeout (default 2m; a paced half runs minutes long)
  -output string
        Output file for the raw NDJSON stream (default: match_stream_TIMESTAMP.ndjson)
  -log string
        Log file for test output (default: test_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Run with default teams and tactics
  go run cmd/test-match/main.go

  # Run against another instance with a half-time switch
  go run cmd/test-match/main.go -url http://localhost:8080 -change-tactic away=gegenpressing

  # Keep the stream for later inspection
  go run cmd/test-match/main.go -output match.ndjson -verbose
`)
}
