package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/calcio/internal/testmatch"
)

// Default configuration constants.
const (
	defaultTimeout     = 2 * time.Minute // must outlast a full paced half
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		homeName     = flag.String("home", "Barcelona", "Home team name")
		awayName     = flag.String("away", "Atletico", "Away team name")
		homeTactic   = flag.String("home-tactic", "tiki-taka", "Home team tactic")
		awayTactic   = flag.String("away-tactic", "park-the-bus", "Away team tactic")
		changeTactic = flag.String("change-tactic", "", "Half-time tactic change as side=tactic (e.g. away=gegenpressing)")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile   = flag.String("output", "", "Output file for the raw stream (default: match_stream_TIMESTAMP.ndjson)")
		logFile      = flag.String("log", "", "Log file for test output (default: test_log_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testmatch.ShowHelp()
		return
	}

	// Setup logging
	if err := testmatch.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	// Create test configuration
	config := &testmatch.Config{
		BaseURL:      *baseURL,
		HomeName:     *homeName,
		AwayName:     *awayName,
		HomeTactic:   *homeTactic,
		AwayTactic:   *awayTactic,
		ChangeTactic: *changeTactic,
		Timeout:      *timeout,
		OutputFile:   *outputFile,
		LogFile:      *logFile,
		Verbose:      *verbose,
	}

	// Run the test
	if err := testmatch.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		return
	}
}
