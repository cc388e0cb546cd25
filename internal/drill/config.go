package drill

import (
	"time"

	"github.com/okian/teampicker/internal/domain/types"
)

// Config holds configuration for a drill run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Rooms      int           // Number of rooms to play through
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for room reports
	LogFile    string        // Log file for drill output
	Verbose    bool          // Enable verbose logging
}

// RoomReport is what one played room observed.
type RoomReport struct {
	Room       string          `json:"room"`
	Players    []types.Player  `json:"players"`
	Candidates int             `json:"candidates"`
	Match      types.Match     `json:"match"`
	Outcome    string          `json:"outcome"`
	Adjusted   int             `json:"adjusted"`
	After      []types.Player  `json:"after"`
	Best       types.Candidate `json:"best"`
	Duplicates int             `json:"duplicates"`
	Err        string          `json:"error,omitempty"`
}

// statusBody is the small acknowledgement the API answers with.
type statusBody struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// Stats holds drill statistics.
type Stats struct {
	RoomsPlayed    int
	RoomsFailed    int
	Requests       int64
	Duplicates     int
	CandidatesSeen int
	Adjustments    int
	Draws          int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
