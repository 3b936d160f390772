package status

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Lifecycle(t *testing.T) {
	store := NewStore(100, "")

	_, ok := store.Get("auth")
	assert.False(t, ok)

	store.Start("auth")
	rec, ok := store.Get("auth")
	require.True(t, ok)
	assert.Equal(t, StatusPending, rec.Status)
	assert.False(t, rec.StartedAt.IsZero())
	assert.Nil(t, rec.FinishedAt)

	store.SetStatus("auth", StatusResolving)
	store.SetOrigin("auth", "SSH")
	store.SetStatus("auth", StatusBuilding)
	store.SetStatus("auth", StatusSuccess)

	rec, _ = store.Get("auth")
	assert.Equal(t, StatusSuccess, rec.Status)
	assert.Equal(t, "SSH", rec.Origin)
	require.NotNil(t, rec.FinishedAt)
}

func TestStore_TerminalRecordsAreImmutable(t *testing.T) {
	store := NewStore(100, "")
	store.Start("auth")
	store.Fail("auth", errors.New("build exploded"))

	rec, _ := store.Get("auth")
	require.Equal(t, StatusFailed, rec.Status)
	finished := rec.FinishedAt

	// Further writes are dropped, not applied.
	store.SetStatus("auth", StatusSuccess)
	store.AppendLog("auth", "late line")
	store.Unhealthy("auth", errors.New("late"))

	rec, _ = store.Get("auth")
	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, "build exploded", rec.Error)
	assert.Equal(t, finished, rec.FinishedAt)
	assert.Empty(t, rec.LogTail)
}

func TestStore_UnknownServiceUpdateDropped(t *testing.T) {
	store := NewStore(100, "")
	store.SetStatus("ghost", StatusBuilding)

	_, ok := store.Get("ghost")
	assert.False(t, ok)
}

func TestStore_AppendLogBounded(t *testing.T) {
	store := NewStore(5, "")
	store.Start("chat")

	for i := 0; i < 10; i++ {
		store.AppendLog("chat", fmt.Sprintf("line %d", i))
	}

	rec, _ := store.Get("chat")
	require.Len(t, rec.LogTail, 5)
	assert.Equal(t, "line 5", rec.LogTail[0])
	assert.Equal(t, "line 9", rec.LogTail[4])
}

func TestStore_AppendLogSplitsChunks(t *testing.T) {
	store := NewStore(100, "")
	store.Start("chat")

	store.AppendLog("chat", "first\nsecond\n", "third")

	rec, _ := store.Get("chat")
	assert.Equal(t, []string{"first", "second", "third"}, rec.LogTail)
}

func TestStore_Unhealthy(t *testing.T) {
	store := NewStore(100, "")
	store.Start("chat")
	store.Unhealthy("chat", errors.New("no 200 within 100s"))

	rec, _ := store.Get("chat")
	assert.Equal(t, StatusUnhealthy, rec.Status)
	assert.Equal(t, "no 200 within 100s", rec.Error)
	require.NotNil(t, rec.FinishedAt)
}

func TestStore_SnapshotSorted(t *testing.T) {
	store := NewStore(100, "")
	store.Start("user")
	store.Start("auth")
	store.Start("chat")

	snap := store.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "auth", snap[0].Service)
	assert.Equal(t, "chat", snap[1].Service)
	assert.Equal(t, "user", snap[2].Service)
}

func TestStore_AllTerminal(t *testing.T) {
	store := NewStore(100, "")
	assert.True(t, store.AllTerminal())

	store.Start("auth")
	store.Start("user")
	assert.False(t, store.AllTerminal())

	store.SetStatus("auth", StatusSuccess)
	assert.False(t, store.AllTerminal())

	store.Fail("user", errors.New("nope"))
	assert.True(t, store.AllTerminal())
}

// One writer per record, many concurrent readers: readers must always see
// a coherent record, never a torn one.
func TestStore_ConcurrentReadersSeeWholeRecords(t *testing.T) {
	store := NewStore(100, "")
	store.Start("auth")

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			store.AppendLog("auth", fmt.Sprintf("line %d", i))
		}
		store.SetStatus("auth", StatusSuccess)
		close(stop)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				rec, ok := store.Get("auth")
				if ok {
					// A coherent record always names its service.
					assert.Equal(t, "auth", rec.Service)
				}
				for _, snap := range store.Snapshot() {
					assert.NotEmpty(t, snap.Service)
				}
			}
		}()
	}

	wg.Wait()
	rec, _ := store.Get("auth")
	assert.Equal(t, StatusSuccess, rec.Status)
}

func TestTaskStatus_Terminal(t *testing.T) {
	assert.True(t, StatusSuccess.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusUnhealthy.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusResolving.Terminal())
	assert.False(t, StatusBuilding.Terminal())
	assert.False(t, StatusDeploying.Terminal())
	assert.False(t, StatusHealthChecking.Terminal())
}
