package state

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightsurety/core/events"
	"flightsurety/core/storage"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestState(t *testing.T) *ChainState {
	t.Helper()
	db, err := storage.NewMemStorage()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cs, err := NewChainState(db)
	require.NoError(t, err)
	cs.Clock = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return cs
}

func TestUpdateCommits(t *testing.T) {
	cs := newTestState(t)

	receipt, err := cs.Update("tester", func(tx *Tx) error {
		require.NoError(t, tx.Put("rec:a", record{Name: "a", Count: 1}))

		var got record
		ok, err := tx.Get("rec:a", &got)
		require.NoError(t, err)
		assert.True(t, ok, "tx must read its own writes")
		assert.Equal(t, 1, got.Count)

		tx.Emit(events.FlightRegistered, map[string]string{"flight": "ND1309"})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCommitted, receipt.Status)
	assert.Equal(t, uint64(1), receipt.Height)
	require.Len(t, receipt.Events, 1)
	assert.Equal(t, uint64(1), receipt.Events[0].Seq)
	assert.Equal(t, uint64(1), receipt.Events[0].Height)

	err = cs.View(func(tx *Tx) error {
		var got record
		ok, err := tx.Get("rec:a", &got)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "a", got.Name)
		return nil
	})
	require.NoError(t, err)
}

func TestUpdateRollsBackOnError(t *testing.T) {
	cs := newTestState(t)
	boom := errors.New("boom")

	receipt, err := cs.Update("tester", func(tx *Tx) error {
		require.NoError(t, tx.Put("rec:a", record{Name: "a"}))
		tx.Emit(events.AirlineFunded, nil)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StatusRejected, receipt.Status)
	assert.Empty(t, receipt.Events)
	assert.Equal(t, uint64(0), cs.Height)

	_ = cs.View(func(tx *Tx) error {
		ok, err := tx.Get("rec:a", &record{})
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})

	evts, err := cs.Events(0, 0)
	require.NoError(t, err)
	assert.Empty(t, evts)
}

func TestViewIsReadOnly(t *testing.T) {
	cs := newTestState(t)
	err := cs.View(func(tx *Tx) error {
		return tx.Put("rec:a", record{})
	})
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestKeysMergesStagedWrites(t *testing.T) {
	cs := newTestState(t)
	_, err := cs.Update("tester", func(tx *Tx) error {
		require.NoError(t, tx.Put("rec:1", record{}))
		require.NoError(t, tx.Put("rec:2", record{}))
		return nil
	})
	require.NoError(t, err)

	_, err = cs.Update("tester", func(tx *Tx) error {
		require.NoError(t, tx.Delete("rec:1"))
		require.NoError(t, tx.Put("rec:3", record{}))
		keys, err := tx.Keys("rec:")
		require.NoError(t, err)
		assert.Equal(t, []string{"rec:2", "rec:3"}, keys)
		return nil
	})
	require.NoError(t, err)
}

func TestEventsAreOrderedAndSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leveldb")
	db, err := storage.NewStorage(path)
	require.NoError(t, err)

	cs, err := NewChainState(db)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := cs.Update("tester", func(tx *Tx) error {
			tx.Emit(events.OracleReport, nil)
			tx.Emit(events.FlightStatusInfo, nil)
			return nil
		})
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	db, err = storage.NewStorage(path)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	cs, err = NewChainState(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), cs.Height)
	assert.Equal(t, uint64(6), cs.EventSeq)

	evts, err := cs.Events(2, 3)
	require.NoError(t, err)
	require.Len(t, evts, 3)
	for i, e := range evts {
		assert.Equal(t, uint64(3+i), e.Seq)
	}
	assert.Equal(t, events.OracleReport, evts[0].Type)
	assert.Equal(t, uint64(2), evts[0].Height)
}

func TestEventsStartAfterCursor(t *testing.T) {
	db, err := storage.NewMemStorage()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	cs, err := NewChainState(db)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := cs.Update("tester", func(tx *Tx) error {
			tx.Emit(events.OracleReport, nil)
			return nil
		})
		require.NoError(t, err)
	}
	// Events at or before the cursor are never read.
	require.NoError(t, db.Put(eventKey(1), []byte("not json")))

	evts, err := cs.Events(1, 2)
	require.NoError(t, err)
	require.Len(t, evts, 2)
	assert.Equal(t, uint64(2), evts[0].Seq)
	assert.Equal(t, uint64(3), evts[1].Seq)

	evts, err = cs.Events(4, 0)
	require.NoError(t, err)
	assert.Empty(t, evts)

	_, err = cs.Events(0, 0)
	assert.Error(t, err)
}
