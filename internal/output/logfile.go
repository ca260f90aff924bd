package output

import (
	"os"
	"path/filepath"
)

// GetLogFilePath returns the path to the debug log file.
// If LAMINAR_LOG_FILE is set, uses that path.
// Otherwise, uses ~/.laminar/logs/laminar.log
func GetLogFilePath() string {
	if customPath := os.Getenv("LAMINAR_LOG_FILE"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if we can't get home dir
		return "laminar.log"
	}

	return filepath.Join(homeDir, ".laminar", "logs", "laminar.log")
}
