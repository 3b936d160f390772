package status

import (
	"sort"
	"strings"
	"sync"
	"time"

	"depctl/pkg/logging"
)

// Store is the status store for one deployment run. Each record has
// exactly one writer (its owning task runner) and many readers (the
// orchestrator's polling loop); a RWMutex plus whole-record replacement
// on every write keeps readers from ever seeing a torn record.
//
// When a mirror directory is configured, every replace is also written
// to one JSON file per service (write-new-then-rename) so a run can be
// inspected from outside the process.
type Store struct {
	mu      sync.RWMutex
	records map[string]TaskRecord
	tailMax int
	mirror  string // directory for per-service files, empty to disable
}

// NewStore creates a store bounding each record's log tail to tailMax
// lines. mirrorDir may be empty to keep the run in memory only.
func NewStore(tailMax int, mirrorDir string) *Store {
	return &Store{
		records: make(map[string]TaskRecord),
		tailMax: tailMax,
		mirror:  mirrorDir,
	}
}

// Start creates the record for a service and marks it Pending.
func (s *Store) Start(service string) {
	s.replace(TaskRecord{
		Service:   service,
		Status:    StatusPending,
		StartedAt: time.Now(),
	})
}

// SetStatus transitions a service to a new status. Terminal statuses get
// a finish timestamp. Writing to a record that is already terminal is a
// programming error upstream and is dropped with a warning rather than
// corrupting the run's outcome.
func (s *Store) SetStatus(service string, st TaskStatus) {
	s.update(service, func(rec *TaskRecord) {
		rec.Status = st
		if st.Terminal() {
			now := time.Now()
			rec.FinishedAt = &now
		}
	})
}

// SetOrigin records the source origin tag chosen by the resolver.
func (s *Store) SetOrigin(service, origin string) {
	s.update(service, func(rec *TaskRecord) {
		rec.Origin = origin
	})
}

// Fail transitions a service to Failed with an error message.
func (s *Store) Fail(service string, err error) {
	s.update(service, func(rec *TaskRecord) {
		rec.Status = StatusFailed
		rec.Error = err.Error()
		now := time.Now()
		rec.FinishedAt = &now
	})
}

// Unhealthy transitions a service to Unhealthy with the reason. Unlike
// Failed this means the container is running but never answered healthy.
func (s *Store) Unhealthy(service string, err error) {
	s.update(service, func(rec *TaskRecord) {
		rec.Status = StatusUnhealthy
		rec.Error = err.Error()
		now := time.Now()
		rec.FinishedAt = &now
	})
}

// AppendLog appends captured output lines to a service's bounded tail.
// Multi-line strings are split so the bound counts real lines.
func (s *Store) AppendLog(service string, chunks ...string) {
	var lines []string
	for _, chunk := range chunks {
		for _, line := range strings.Split(strings.TrimRight(chunk, "\n"), "\n") {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return
	}
	s.update(service, func(rec *TaskRecord) {
		rec.LogTail = appendBounded(rec.LogTail, lines, s.tailMax)
	})
}

// Get returns a copy of a service's record.
func (s *Store) Get(service string) (TaskRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[service]
	return rec, ok
}

// Snapshot returns copies of all records, sorted by service name.
func (s *Store) Snapshot() []TaskRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]TaskRecord, 0, len(s.records))
	for _, rec := range s.records {
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Service < all[j].Service })
	return all
}

// AllTerminal reports whether every record has reached a terminal status.
// An empty store is trivially terminal.
func (s *Store) AllTerminal() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if !rec.Status.Terminal() {
			return false
		}
	}
	return true
}

func (s *Store) update(service string, mutate func(*TaskRecord)) {
	s.mu.Lock()
	rec, ok := s.records[service]
	if !ok {
		s.mu.Unlock()
		logging.Warn("StatusStore", "Update for unknown service %s dropped", service)
		return
	}
	if rec.Status.Terminal() {
		s.mu.Unlock()
		logging.Warn("StatusStore", "Update for terminal service %s dropped", service)
		return
	}

	// Mutate a copy; the map entry is replaced in one assignment.
	updated := rec
	updated.LogTail = append([]string(nil), rec.LogTail...)
	mutate(&updated)
	s.records[service] = updated
	s.mu.Unlock()

	s.mirrorRecord(updated)
}

func (s *Store) replace(rec TaskRecord) {
	s.mu.Lock()
	s.records[rec.Service] = rec
	s.mu.Unlock()

	s.mirrorRecord(rec)
}
