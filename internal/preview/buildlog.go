package preview

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// BuildLog records one dungeon build.
type BuildLog struct {
	Timestamp time.Time     `json:"timestamp"`
	Seed      int64         `json:"seed"`
	FinalSeed int64         `json:"final_seed"`
	Attempts  int           `json:"attempts"`
	Modules   int           `json:"modules"`
	Doors     int           `json:"doors"`
	Walls     int           `json:"walls"`
	Duration  time.Duration `json:"duration_ns"`
	Error     string        `json:"error,omitempty"`
}

// saveBuildLog appends the build as a single JSON line to builds.jsonl.
// Errors are logged but never stop the previewer.
func saveBuildLog(bl BuildLog, logger *slog.Logger) {
	dir, err := buildLogDir()
	if err != nil {
		logger.Warn("build log: cannot determine data dir", "error", err)
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("build log: cannot create data dir", "error", err)
		return
	}
	f, err := os.OpenFile(filepath.Join(dir, "builds.jsonl"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Warn("build log: cannot open file", "error", err)
		return
	}
	defer f.Close()
	data, err := json.Marshal(bl)
	if err != nil {
		logger.Warn("build log: cannot marshal JSON", "error", err)
		return
	}
	f.Write(data)         //nolint:errcheck
	f.Write([]byte("\n")) //nolint:errcheck
}

// buildLogDir follows the XDG base directory layout:
// $XDG_DATA_HOME/snapmap, defaulting to ~/.local/share/snapmap.
func buildLogDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "snapmap"), nil
}
