package drill

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/okian/teampicker/internal/domain/types"
	"github.com/okian/teampicker/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	reportPermission    = 0600
)

// Run executes the complete drill against a running service.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting team picker drill",
		logger.String("baseURL", config.BaseURL),
		logger.Int("rooms", config.Rooms),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Bool("verbose", config.Verbose))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Fetch the tier table players join with
	var tiers []types.Tier
	if err := client.call(ctx, http.MethodGet, "/tiers", nil, "", http.StatusOK, &tiers); err != nil {
		return fmt.Errorf("tier retrieval failed: %w", err)
	}
	if len(tiers) == 0 {
		return fmt.Errorf("service has no tiers")
	}

	// Step 3: Play rooms concurrently
	reports := playRooms(ctx, config, client, tiers)

	// Step 4: Tally and save
	tally(reports, stats)
	stats.Requests = client.Requests()
	if err := saveReports(ctx, config, reports); err != nil {
		logger.Get().Warn(ctx, "failed to save reports", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if stats.RoomsFailed > 0 {
		return fmt.Errorf("%d of %d rooms failed verification", stats.RoomsFailed, len(reports))
	}
	logger.Get().Info(ctx, "drill completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")
	status, _, err := client.do(ctx, http.MethodGet, "/healthz", nil, "")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", status)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// playRooms plays config.Rooms rooms with a pool of workers.
func playRooms(ctx context.Context, config *Config, client *HTTPClient, tiers []types.Tier) []RoomReport {
	log.Printf("🎮 Playing %d rooms with %d workers...", config.Rooms, config.Workers)

	jobs := make(chan int, config.Workers*WorkerChannelMultiplier)
	reports := make([]RoomReport, config.Rooms)
	var wg sync.WaitGroup

	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rep, err := playRoom(ctx, client, tiers)
				if err != nil {
					rep.Err = err.Error()
					log.Printf("❌ Room %s failed: %v", rep.Room, err)
				} else if config.Verbose {
					log.Printf("✅ Room %s: %d candidates, outcome %s, %d adjusted",
						rep.Room, rep.Candidates, rep.Outcome, rep.Adjusted)
				}
				reports[i] = rep
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < config.Rooms; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()
	return lo.Filter(reports, func(r RoomReport, _ int) bool { return r.Room != "" })
}

// tally folds room reports into stats.
func tally(reports []RoomReport, stats *Stats) {
	for _, r := range reports {
		if r.Err != "" {
			stats.RoomsFailed++
			continue
		}
		stats.RoomsPlayed++
		stats.Duplicates += r.Duplicates
		stats.CandidatesSeen += r.Candidates
		stats.Adjustments += r.Adjusted
		if r.Outcome == "draw" {
			stats.Draws++
		}
	}
}

// saveReports writes the room reports to a JSON file.
func saveReports(ctx context.Context, config *Config, reports []RoomReport) error {
	if len(reports) == 0 {
		return fmt.Errorf("no reports to save")
	}

	filename := config.OutputFile
	if filename == "" {
		filename = "drill_reports_" + time.Now().Format("20060102_150405") + ".json"
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal reports: %w", err)
	}
	if err := os.WriteFile(filename, data, reportPermission); err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}

	logger.Get().Info(ctx, "reports saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final drill statistics.
func displayFinalStats(stats *Stats) {
	var successRate, roomsPerSecond float64
	total := stats.RoomsPlayed + stats.RoomsFailed
	if total > 0 {
		successRate = float64(stats.RoomsPlayed) / float64(total) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		roomsPerSecond = float64(total) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("roomsPlayed", stats.RoomsPlayed),
		logger.Int("roomsFailed", stats.RoomsFailed),
		logger.Int("requests", int(stats.Requests)),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("candidatesSeen", stats.CandidatesSeen),
		logger.Int("adjustments", stats.Adjustments),
		logger.Int("draws", stats.Draws),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("roomsPerSecond", roomsPerSecond))
}
