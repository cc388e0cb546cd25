package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/teampicker/internal/drill"
)

// Default configuration constants.
const (
	defaultRooms        = 100
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultDrillTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		rooms      = flag.Int("rooms", defaultRooms, "Number of rooms to play")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Output file for room reports (default: drill_reports_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for drill output (default: drill_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Log every room")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		drill.ShowHelp()
		return
	}

	if err := drill.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultDrillTimeout)
	defer cancel()

	config := &drill.Config{
		BaseURL:    *baseURL,
		Rooms:      *rooms,
		Workers:    max(*workers, 1),
		Timeout:    *timeout,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if err := drill.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Drill failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // cancel is called above
	}
}
