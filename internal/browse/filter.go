// Package browse holds the filter state of a browsing session and the
// predicate engine that narrows the catalog to the records on display.
package browse

import (
	"math/rand/v2"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/p-n-ai/pai-questions/internal/question"
)

// FilterState holds the five filter selections. An empty string means the
// field is unset and places no constraint on the result.
type FilterState struct {
	SearchTerm string `json:"searchTerm"`
	Course     string `json:"course"`
	Topic      string `json:"topic"`
	Subtopic   string `json:"subtopic"`
	Difficulty string `json:"difficulty"`
}

// IsZero reports whether every field is unset.
func (s FilterState) IsZero() bool {
	return s == FilterState{}
}

// Filter returns the records matching every set field of state, in their
// original order.
func Filter(records []question.Record, state FilterState) []question.Record {
	m := newMatcher(state)
	out := make([]question.Record, 0, len(records))
	for _, r := range records {
		if m.match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether a single record satisfies state.
func Matches(r question.Record, state FilterState) bool {
	return newMatcher(state).match(r)
}

type matcher struct {
	state  FilterState
	term   string
	caser  cases.Caser
	search bool
}

func newMatcher(state FilterState) *matcher {
	m := &matcher{
		state: state,
		caser: cases.Lower(language.Und),
	}
	if state.SearchTerm != "" {
		m.search = true
		m.term = m.caser.String(state.SearchTerm)
	}
	return m
}

func (m *matcher) match(r question.Record) bool {
	if m.state.Course != "" && m.state.Course != r.Course {
		return false
	}
	if m.state.Topic != "" && m.state.Topic != r.Topic {
		return false
	}
	if m.state.Subtopic != "" && m.state.Subtopic != r.Subtopic {
		return false
	}
	if m.state.Difficulty != "" && m.state.Difficulty != r.Difficulty {
		return false
	}
	return !m.search || m.matchSearch(r)
}

func (m *matcher) matchSearch(r question.Record) bool {
	if m.contains(r.QuestionText) || m.contains(r.Topic) || m.contains(r.Subtopic) {
		return true
	}
	if strings.Contains(r.Token(), m.term) {
		return true
	}
	return slices.ContainsFunc(r.Tags, m.contains)
}

func (m *matcher) contains(s string) bool {
	return strings.Contains(m.caser.String(s), m.term)
}

// Distinct returns the sorted, deduplicated values of field across records.
func Distinct(records []question.Record, field func(question.Record) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range records {
		v := field(r)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Subtopics returns the sorted distinct subtopics of records under topic.
// An unset topic yields no subtopics.
func Subtopics(records []question.Record, topic string) []string {
	if topic == "" {
		return []string{}
	}
	var scoped []question.Record
	for _, r := range records {
		if r.Topic == topic {
			scoped = append(scoped, r)
		}
	}
	return Distinct(scoped, func(r question.Record) string { return r.Subtopic })
}

// Rand is the randomness used by PickRandom. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	IntN(n int) int
}

// SystemRand draws from the process-wide math/rand/v2 source and is safe for
// concurrent use.
type SystemRand struct{}

func (SystemRand) IntN(n int) int {
	return rand.IntN(n)
}

// PickRandom chooses one record uniformly. It returns false for an empty
// collection.
func PickRandom(records []question.Record, rng Rand) (question.Record, bool) {
	if len(records) == 0 {
		return question.Record{}, false
	}
	return records[rng.IntN(len(records))], true
}
