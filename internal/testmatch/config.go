package testmatch

import "time"

// Config holds configuration for the match test
type Config struct {
	BaseURL      string        // Base URL of the service
	HomeName     string        // Home team display name
	AwayName     string        // Away team display name
	HomeTactic   string        // Home team tactic
	AwayTactic   string        // Away team tactic
	ChangeTactic string        // Optional half-time change, "side=tactic"
	Timeout      time.Duration // HTTP request timeout
	OutputFile   string        // Output file for the raw NDJSON stream
	LogFile      string        // Log file for test output
	Verbose      bool          // Enable verbose logging
}

// Team mirrors one side of the match creation payload
type Team struct {
	Name       string         `json:"name"`
	Attributes map[string]int `json:"attributes"`
	Tactic     string         `json:"tactic"`
	Formation  string         `json:"formation"`
}

// CreateMatchRequest mirrors the match creation payload
type CreateMatchRequest struct {
	HomeTeam Team `json:"homeTeam"`
	AwayTeam Team `json:"awayTeam"`
}

// MatchInfo mirrors the match creation response
type MatchInfo struct {
	ID       string `json:"id"`
	HomeTeam string `json:"homeTeam"`
	AwayTeam string `json:"awayTeam"`
	State    string `json:"state"`
}

// TacticChangeRequest mirrors the tactic change payload
type TacticChangeRequest struct {
	Team   string `json:"team"`
	Tactic string `json:"tactic"`
}

// Score mirrors the running scoreline on each frame
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// TeamStats mirrors one team's counters on each frame
type TeamStats struct {
	Possession    float64 `json:"possession"`
	Shots         int     `json:"shots"`
	ShotsOnTarget int     `json:"shotsOnTarget"`
	Corners       int     `json:"corners"`
	Fouls         int     `json:"fouls"`
	YellowCards   int     `json:"yellowCards"`
	RedCards      int     `json:"redCards"`
}

// MatchStats pairs both teams' counters
type MatchStats struct {
	Home TeamStats `json:"home"`
	Away TeamStats `json:"away"`
}

// EventBody mirrors the nested event record inside an event frame
type EventBody struct {
	Team        string `json:"team"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Frame mirrors one line of the NDJSON stream
type Frame struct {
	Type   string     `json:"type"`
	Minute int        `json:"minute"`
	Event  *EventBody `json:"event,omitempty"`
	Score  Score      `json:"score"`
	Stats  MatchStats `json:"stats"`
}

// Stats holds test statistics
type Stats struct {
	FirstHalfFrames  int
	SecondHalfFrames int
	EventFrames      int
	Goals            int
	YellowCards      int
	RedCards         int
	Substitutions    int
	FinalScore       Score
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
