package syncer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	stats := Summarize([]SyncResult{
		{Success: true, DataPoints: 10},
		{Success: true, DataPoints: 5},
		{Success: false},
	})
	assert.Equal(t, BatchStats{Total: 3, Succeeded: 2, Failed: 1, DataPoints: 15}, stats)
}

func TestAllFailed(t *testing.T) {
	assert.False(t, AllFailed(nil), "an empty batch is not a failure")
	assert.False(t, AllFailed([]SyncResult{{Success: true}, {Success: false}}))
	assert.True(t, AllFailed([]SyncResult{{Success: false}, {Success: false}}))
}
