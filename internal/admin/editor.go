// Package admin keeps an editable working copy of the catalog and exports it
// as formatted text for manual save-back.
package admin

import (
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/p-n-ai/pai-questions/internal/question"
)

// Editor is an in-memory working copy. Every mutation re-serializes the
// collection and notifies subscribers with the new snapshot.
type Editor struct {
	mu          sync.Mutex
	records     []question.Record
	snapshot    Snapshot
	subscribers []func(Snapshot)
}

// NewEditor creates an editor over a copy of records.
func NewEditor(records []question.Record) *Editor {
	e := &Editor{records: question.Clone(records)}
	e.snapshot = NewSnapshot(e.records)
	return e
}

// Subscribe registers fn to receive the snapshot after every mutation.
func (e *Editor) Subscribe(fn func(Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = append(e.subscribers, fn)
}

// Add appends a record built from draft with the next free id.
func (e *Editor) Add(draft question.Draft) question.Record {
	e.mu.Lock()
	r := draft.Record(NextID(e.records))
	e.records = append(e.records, r)
	snap, subs := e.commit()
	e.mu.Unlock()

	slog.Info("question added", "id", r.ID, "questions", snap.Count)
	notify(subs, snap)
	return r
}

// Delete removes the record with id. It reports whether one was removed;
// deleting an absent id is a no-op.
func (e *Editor) Delete(id int) bool {
	e.mu.Lock()
	i := slices.IndexFunc(e.records, func(r question.Record) bool { return r.ID == id })
	if i < 0 {
		e.mu.Unlock()
		slog.Debug("delete of unknown question ignored", "id", id)
		return false
	}
	e.records = slices.Delete(e.records, i, i+1)
	snap, subs := e.commit()
	e.mu.Unlock()

	slog.Info("question deleted", "id", id, "questions", snap.Count)
	notify(subs, snap)
	return true
}

// Records returns a copy of the working collection.
func (e *Editor) Records() []question.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return question.Clone(e.records)
}

// Snapshot returns the serialized form of the current working copy.
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot
}

// commit must be called with e.mu held.
func (e *Editor) commit() (Snapshot, []func(Snapshot)) {
	e.snapshot = NewSnapshot(e.records)
	return e.snapshot, slices.Clone(e.subscribers)
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}

// NextID returns one more than the largest id in records, or 1 when empty.
func NextID(records []question.Record) int {
	next := 1
	for _, r := range records {
		if r.ID >= next {
			next = r.ID + 1
		}
	}
	return next
}

// Summary is the one-line label of a record in the admin list.
func Summary(r question.Record) string {
	text := []rune(r.QuestionText)
	if len(text) > 80 {
		text = text[:80]
	}
	return "ID " + strconv.Itoa(r.ID) + ": " + string(text) + "..."
}
