package status

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"depctl/pkg/logging"
)

// RunDir returns the status-file directory for a run ID under the host's
// temporary directory.
func RunDir(runID string) string {
	return filepath.Join(os.TempDir(), "depctl", "runs", runID)
}

// mirrorRecord writes the record to <mirror>/<service>.json via
// write-new-then-rename so concurrent readers never see a partial file.
// Mirroring is best effort: the in-memory store stays authoritative and
// a failed write must not fail the task it describes.
func (s *Store) mirrorRecord(rec TaskRecord) {
	if s.mirror == "" {
		return
	}

	if err := writeRecordFile(s.mirror, rec); err != nil {
		logging.Warn("StatusStore", "Could not mirror record for %s: %v", rec.Service, err)
	}
}

func writeRecordFile(dir string, rec TaskRecord) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating status directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	final := filepath.Join(dir, rec.Service+".json")
	tmp, err := os.CreateTemp(dir, rec.Service+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}

// ReadRun loads every per-service record file from a run directory,
// sorted by service name.
func ReadRun(dir string) ([]TaskRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading run directory %s: %w", dir, err)
	}

	var records []TaskRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		var rec TaskRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", entry.Name(), err)
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Service < records[j].Service })
	return records, nil
}

// LatestRunDir returns the most recently modified run directory, for the
// status command's default of "the last run".
func LatestRunDir() (string, error) {
	base := filepath.Join(os.TempDir(), "depctl", "runs")
	entries, err := os.ReadDir(base)
	if err != nil {
		return "", fmt.Errorf("no recorded runs under %s: %w", base, err)
	}

	var latest string
	var latestMod int64
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); latest == "" || mod > latestMod {
			latest = entry.Name()
			latestMod = mod
		}
	}
	if latest == "" {
		return "", fmt.Errorf("no recorded runs under %s", base)
	}
	return filepath.Join(base, latest), nil
}
