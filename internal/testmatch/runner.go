package testmatch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/calcio/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete match test: create a match, stream both halves,
// optionally change a tactic at the break, and verify the stream invariants.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting calcio match test",
		logger.String("baseURL", config.BaseURL),
		logger.String("home", config.HomeName),
		logger.String("away", config.AwayName),
		logger.String("homeTactic", config.HomeTactic),
		logger.String("awayTactic", config.AwayTactic),
		logger.String("changeTactic", config.ChangeTactic),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	client := newHTTPClient(config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Create the match
	match, err := createMatch(ctx, client, config)
	if err != nil {
		return fmt.Errorf("match creation failed: %w", err)
	}

	// Step 3: Stream the first half
	first, firstRaw, err := streamHalf(ctx, client, config.BaseURL+"/api/matches/"+match.ID+"/stream/first-half", "first half", config.Verbose)
	if err != nil {
		return fmt.Errorf("first half stream failed: %w", err)
	}
	stats.FirstHalfFrames = len(first)

	// Step 4: Apply the half-time tactic change, if requested
	if config.ChangeTactic != "" {
		if err := changeTactic(ctx, client, config, match.ID); err != nil {
			return fmt.Errorf("tactic change failed: %w", err)
		}
	}

	// Step 5: Stream the second half
	second, secondRaw, err := streamHalf(ctx, client, config.BaseURL+"/api/matches/"+match.ID+"/stream/second-half", "second half", config.Verbose)
	if err != nil {
		return fmt.Errorf("second half stream failed: %w", err)
	}
	stats.SecondHalfFrames = len(second)

	// Step 6: Confirm the final snapshot reached full-time
	if err := checkFinalState(ctx, client, config, match.ID); err != nil {
		return fmt.Errorf("final state check failed: %w", err)
	}

	// Step 7: Verify the stream invariants
	if err := verifyMatch(first, second); err != nil {
		return fmt.Errorf("stream verification failed: %w", err)
	}

	// Step 8: Save the raw stream to file
	if err := saveStreamToFile(ctx, config, firstRaw, secondRaw); err != nil {
		logger.Get().Warn(ctx, "failed to save stream to file", logger.Error(err))
	}

	// Step 9: Close the match
	if err := closeMatch(ctx, client, config, match.ID); err != nil {
		logger.Get().Warn(ctx, "failed to close match", logger.Error(err))
	}

	// Final statistics
	tallyFrames(stats, first, second)
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(config, stats)

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// createMatch posts the two configured teams and returns the match identity.
func createMatch(ctx context.Context, client *HTTPClient, config *Config) (MatchInfo, error) {
	logger.Get().Info(ctx, "creating match",
		logger.String("home", config.HomeName),
		logger.String("away", config.AwayName))

	req := CreateMatchRequest{
		HomeTeam: Team{
			Name:       config.HomeName,
			Attributes: attackingAttributes(),
			Tactic:     config.HomeTactic,
			Formation:  "4-3-3",
		},
		AwayTeam: Team{
			Name:       config.AwayName,
			Attributes: defendingAttributes(),
			Tactic:     config.AwayTactic,
			Formation:  "5-4-1",
		},
	}

	resp, err := client.Post(ctx, config.BaseURL+"/api/matches", req)
	if err != nil {
		return MatchInfo{}, fmt.Errorf("failed to create match: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return MatchInfo{}, fmt.Errorf("match creation returned status %d: %s", resp.StatusCode, string(body))
	}

	var match MatchInfo
	if err := json.NewDecoder(resp.Body).Decode(&match); err != nil {
		return MatchInfo{}, fmt.Errorf("failed to decode match info: %w", err)
	}
	if match.ID == "" {
		return MatchInfo{}, fmt.Errorf("match creation returned an empty id")
	}

	logger.Get().Info(ctx, "match created",
		logger.String("matchID", match.ID),
		logger.String("state", match.State))
	return match, nil
}

// changeTactic parses the "side=tactic" directive and applies it at the
// half-time break.
func changeTactic(ctx context.Context, client *HTTPClient, config *Config, matchID string) error {
	side, tactic, ok := strings.Cut(config.ChangeTactic, "=")
	if !ok || side == "" || tactic == "" {
		return fmt.Errorf("invalid change-tactic directive %q, want side=tactic", config.ChangeTactic)
	}

	logger.Get().Info(ctx, "changing tactic at half-time",
		logger.String("matchID", matchID),
		logger.String("team", side),
		logger.String("tactic", tactic))

	resp, err := client.Post(ctx, config.BaseURL+"/api/matches/"+matchID+"/tactic", TacticChangeRequest{
		Team:   side,
		Tactic: tactic,
	})
	if err != nil {
		return fmt.Errorf("failed to post tactic change: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tactic change returned status %d: %s", resp.StatusCode, string(body))
	}

	logger.Get().Info(ctx, "tactic changed")
	return nil
}

// checkFinalState fetches the match snapshot and confirms full-time.
func checkFinalState(ctx context.Context, client *HTTPClient, config *Config, matchID string) error {
	resp, err := client.Get(ctx, config.BaseURL+"/api/matches/"+matchID)
	if err != nil {
		return fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("snapshot returned status %d", resp.StatusCode)
	}

	var snapshot struct {
		State string `json:"state"`
		Score Score  `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snapshot.State != "full_time" {
		return fmt.Errorf("match ended in state %q, want full_time", snapshot.State)
	}

	logger.Get().Info(ctx, "match reached full-time",
		logger.Int("home", snapshot.Score.Home),
		logger.Int("away", snapshot.Score.Away))
	return nil
}

// closeMatch releases the finished session on the server.
func closeMatch(ctx context.Context, client *HTTPClient, config *Config, matchID string) error {
	resp, err := client.Delete(ctx, config.BaseURL+"/api/matches/"+matchID)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != StatusNoContent {
		return fmt.Errorf("match close returned status %d", resp.StatusCode)
	}
	return nil
}

// saveStreamToFile writes the raw NDJSON lines of both halves to a file,
// preserving the exact wire form for later inspection.
func saveStreamToFile(ctx context.Context, config *Config, firstRaw, secondRaw []string) error {
	if len(firstRaw) == 0 && len(secondRaw) == 0 {
		return fmt.Errorf("no frames to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "match_stream_" + timestamp + ".ndjson"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	for _, line := range firstRaw {
		if _, err := file.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("failed to write frame: %w", err)
		}
	}
	for _, line := range secondRaw {
		if _, err := file.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("failed to write frame: %w", err)
		}
	}

	logger.Get().Info(ctx, "stream saved to file",
		logger.String("filename", filename),
		logger.Int("frames", len(firstRaw)+len(secondRaw)))
	return nil
}

// tallyFrames folds both halves into the final statistics.
func tallyFrames(stats *Stats, first, second []Frame) {
	var last Frame
	for _, frame := range append(append([]Frame{}, first...), second...) {
		if frame.Type != "event" || frame.Event == nil {
			continue
		}
		stats.EventFrames++
		switch frame.Event.Type {
		case "goal":
			stats.Goals++
		case "yellow_card":
			stats.YellowCards++
		case "red_card":
			stats.RedCards++
		case "substitution":
			stats.Substitutions++
		}
		last = frame
	}
	stats.FinalScore = last.Score
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(config *Config, stats *Stats) {
	var framesPerSecond float64
	totalFrames := stats.FirstHalfFrames + stats.SecondHalfFrames
	if stats.Duration > 0 {
		framesPerSecond = float64(totalFrames) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.String("result", fmt.Sprintf("%s %d - %d %s",
			config.HomeName, stats.FinalScore.Home, stats.FinalScore.Away, config.AwayName)),
		logger.Int("firstHalfFrames", stats.FirstHalfFrames),
		logger.Int("secondHalfFrames", stats.SecondHalfFrames),
		logger.Int("eventFrames", stats.EventFrames),
		logger.Int("goals", stats.Goals),
		logger.Int("yellowCards", stats.YellowCards),
		logger.Int("redCards", stats.RedCards),
		logger.Int("substitutions", stats.Substitutions),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("framesPerSecond", framesPerSecond))
}

// attackingAttributes is the default rating sheet for the home side, shaped
// for possession tactics.
func attackingAttributes() map[string]int {
	return map[string]int{
		"passing":     92,
		"shooting":    85,
		"dribbling":   88,
		"defending":   72,
		"pace":        80,
		"physicality": 70,
	}
}

// defendingAttributes is the default rating sheet for the away side, shaped
// for deep defensive blocks.
func defendingAttributes() map[string]int {
	return map[string]int{
		"passing":     70,
		"shooting":    68,
		"dribbling":   65,
		"defending":   90,
		"pace":        74,
		"physicality": 86,
	}
}
