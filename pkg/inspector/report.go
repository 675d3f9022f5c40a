// Package inspector defines the live inspection report of a running
// executor, its wire codec and the PUB/SUB transport used to publish it.
package inspector

import (
	"sort"

	"firestige.xyz/nodo/pkg/codelet"
	"firestige.xyz/nodo/pkg/core"
	"firestige.xyz/nodo/pkg/log"
)

// RenderedStatus is the display form of a codelet status.
type RenderedStatus struct {
	Label  string             `json:"label"`
	Status core.DefaultStatus `json:"status"`
}

// CodeletKey identifies one codelet instance within a report.
type CodeletKey struct {
	Sequence string `json:"sequence"`
	Name     string `json:"name"`
	TypeName string `json:"typename"`
}

// CodeletReport is one report entry.
type CodeletReport struct {
	Sequence   string             `json:"sequence"`
	Name       string             `json:"name"`
	TypeName   string             `json:"typename"`
	Status     *RenderedStatus    `json:"status,omitempty"`
	Statistics codelet.Statistics `json:"statistics"`
}

// Key is the identity of this entry.
func (r CodeletReport) Key() CodeletKey {
	return CodeletKey{Sequence: r.Sequence, Name: r.Name, TypeName: r.TypeName}
}

// Report is a flat snapshot over every scheduled instance, keyed by codelet
// identity.
type Report struct {
	entries map[CodeletKey]CodeletReport
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{entries: make(map[CodeletKey]CodeletReport)}
}

// Push inserts one entry. A duplicate identity logs a warning and the last
// write wins.
func (r *Report) Push(entry CodeletReport) {
	key := entry.Key()
	if _, exists := r.entries[key]; exists {
		log.GetLogger().Warnf("duplicated codelet identity in report: %s/%s (%s)",
			key.Sequence, key.Name, key.TypeName)
	}
	r.entries[key] = entry
}

// Extend merges all entries of another report.
func (r *Report) Extend(other *Report) {
	if other == nil {
		return
	}
	for _, entry := range other.entries {
		r.Push(entry)
	}
}

// Len is the number of entries.
func (r *Report) Len() int { return len(r.entries) }

// Get looks an entry up by identity.
func (r *Report) Get(key CodeletKey) (CodeletReport, bool) {
	entry, ok := r.entries[key]
	return entry, ok
}

// Find looks an entry up by instance name alone. It returns the first match
// in entry order.
func (r *Report) Find(name string) (CodeletReport, bool) {
	for _, entry := range r.Entries() {
		if entry.Name == name {
			return entry, true
		}
	}
	return CodeletReport{}, false
}

// Entries lists all entries ordered by (sequence, name, typename).
func (r *Report) Entries() []CodeletReport {
	out := make([]CodeletReport, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key(), out[j].Key()
		if a.Sequence != b.Sequence {
			return a.Sequence < b.Sequence
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.TypeName < b.TypeName
	})
	return out
}
