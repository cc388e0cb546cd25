package drill

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/teampicker/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if logFile == "" {
		logFile = "drill_log_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	if err := logger.InitWithWriter(multiWriter); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the drill tool.
func ShowHelp() {
	os.Stdout.WriteString(`Team Picker Drill
=================

Plays complete rooms against a running team picker service and checks every
answer: ten joins, a full candidate walk, a commit and a result.

Usage:
  go run ./cmd/drill [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -rooms int
        Number of rooms to play (default 100)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for room reports (default: drill_reports_TIMESTAMP.json)
  -log string
        Log file for drill output (default: drill_log_TIMESTAMP.log)
  -verbose
        Log every room
  -help
        Show this help message

Examples:
  # Drill with default settings
  go run ./cmd/drill

  # Drill many rooms at once
  go run ./cmd/drill -rooms 5000 -workers 32 -url http://localhost:8080
`)
}
