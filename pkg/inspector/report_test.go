package inspector

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/nodo/pkg/codelet"
	"firestige.xyz/nodo/pkg/core"
)

func sampleReport() *Report {
	var stats codelet.Statistics
	stats.At(codelet.Step).Duration.Push(3 * time.Millisecond)
	stats.At(codelet.Step).Period.Push(10 * time.Millisecond)
	stats.At(codelet.Step).SkippedCount = 2

	report := NewReport()
	report.Push(CodeletReport{
		Sequence:   "main",
		Name:       "alice",
		TypeName:   "example.Alice",
		Status:     &RenderedStatus{Label: "ping", Status: core.Running},
		Statistics: stats,
	})
	report.Push(CodeletReport{
		Sequence: "main",
		Name:     "bob",
		TypeName: "example.Bob",
	})
	return report
}

func TestReportIdentityAndOrder(t *testing.T) {
	report := sampleReport()
	assert.Equal(t, 2, report.Len())

	entries := report.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "alice", entries[0].Name)
	assert.Equal(t, "bob", entries[1].Name)

	entry, ok := report.Get(CodeletKey{Sequence: "main", Name: "alice", TypeName: "example.Alice"})
	require.True(t, ok)
	assert.Equal(t, "ping", entry.Status.Label)

	_, ok = report.Find("bob")
	assert.True(t, ok)
	_, ok = report.Find("carol")
	assert.False(t, ok)
}

func TestReportDuplicateIdentityLastWriteWins(t *testing.T) {
	report := NewReport()
	entry := CodeletReport{Sequence: "s", Name: "n", TypeName: "t"}
	report.Push(entry)

	entry.Status = &RenderedStatus{Label: "second", Status: core.Running}
	report.Push(entry)

	assert.Equal(t, 1, report.Len())
	got, _ := report.Find("n")
	require.NotNil(t, got.Status)
	assert.Equal(t, "second", got.Status.Label)
}

func TestReportExtend(t *testing.T) {
	a := sampleReport()
	b := NewReport()
	b.Push(CodeletReport{Sequence: "aux", Name: "carol", TypeName: "example.Carol"})

	a.Extend(b)
	assert.Equal(t, 3, a.Len())

	a.Extend(nil)
	assert.Equal(t, 3, a.Len())
}

func TestReportJSONShape(t *testing.T) {
	doc, err := json.Marshal(sampleReport())
	require.NoError(t, err)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(doc, &entries))
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, "main", first["sequence"])
	assert.Equal(t, "alice", first["name"])
	assert.Equal(t, "example.Alice", first["typename"])

	status, ok := first["status"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ping", status["label"])
	assert.Equal(t, "Running", status["status"])

	stats, ok := first["statistics"].(map[string]any)
	require.True(t, ok)
	transitions, ok := stats["transitions"].([]any)
	require.True(t, ok)
	assert.Len(t, transitions, codelet.NumTransitions)

	step, ok := transitions[int(codelet.Step)].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, step, "duration")
	assert.Contains(t, step, "period")
	assert.Contains(t, step, "skipped_count")

	// entries without a status omit the field
	_, hasStatus := entries[1]["status"]
	assert.False(t, hasStatus)
}

func TestFrameRoundtrip(t *testing.T) {
	report := sampleReport()

	frame, err := EncodeFrame(report)
	require.NoError(t, err)
	require.Greater(t, len(frame), 4)

	decoded, err := DecodeFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, report.Entries(), decoded.Entries())
}

func TestDecodeFrameRejectsGarbage(t *testing.T) {
	_, err := DecodeFrame([]byte{1, 2})
	assert.Error(t, err)

	// length prefix disagreeing with the payload
	_, err = DecodeFrame([]byte{0, 0, 0, 9, 1, 2, 3})
	assert.Error(t, err)
}
