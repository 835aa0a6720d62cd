package retry_test

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andes-trip-manager/backend/internal/retry"
)

func TestRingLog_EvictsOldest(t *testing.T) {
	log := retry.NewRingLog(3)
	for i := 1; i <= 5; i++ {
		log.Append(retry.Entry{Operation: fmt.Sprintf("op%d", i), Status: retry.StatusSuccess})
	}

	assert.Equal(t, 3, log.Len())
	got := log.Query(retry.Filter{})
	require.Len(t, got, 3)
	assert.Equal(t, "op5", got[0].Operation)
	assert.Equal(t, "op3", got[2].Operation)
}

func TestRingLog_QueryFilters(t *testing.T) {
	log := retry.NewRingLog(10)
	log.Append(retry.Entry{Operation: "import stop", Status: retry.StatusStarted})
	log.Append(retry.Entry{Operation: "import stop", Status: retry.StatusError})
	log.Append(retry.Entry{Operation: "collect days", Status: retry.StatusError})
	log.Append(retry.Entry{Operation: "import cost", Status: retry.StatusError})

	assert.Len(t, log.Query(retry.Filter{Operation: "import"}), 3, "operation matches by substring")
	assert.Len(t, log.Query(retry.Filter{Operation: "import stop"}), 2)
	assert.Empty(t, log.Query(retry.Filter{Operation: "export"}))
	assert.Len(t, log.Query(retry.Filter{Status: retry.StatusError}), 3)
	assert.Len(t, log.Query(retry.Filter{Operation: "import", Status: retry.StatusError}), 2)
	assert.Len(t, log.Query(retry.Filter{Limit: 1}), 1)
}

func TestRingLog_ExportOldestFirst(t *testing.T) {
	log := retry.NewRingLog(2)
	log.Append(retry.Entry{Operation: "first"})
	log.Append(retry.Entry{Operation: "second"})
	log.Append(retry.Entry{Operation: "third"})

	data, err := log.Export()
	require.NoError(t, err)

	var entries []retry.Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Operation)
	assert.Equal(t, "third", entries[1].Operation)
}

func TestRingLog_Clear(t *testing.T) {
	log := retry.NewRingLog(2)
	log.Append(retry.Entry{Operation: "x"})

	log.Clear()

	assert.Equal(t, 0, log.Len())
	assert.Empty(t, log.Query(retry.Filter{}))
}

func TestRingLog_ConcurrentAppend(t *testing.T) {
	log := retry.NewRingLog(50)
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Append(retry.Entry{Operation: "c"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, log.Len())
}

func TestNopLog(t *testing.T) {
	var log retry.NopLog
	log.Append(retry.Entry{Operation: "x"})

	assert.Empty(t, log.Query(retry.Filter{}))
	data, err := log.Export()
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}
