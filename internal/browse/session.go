package browse

import (
	"errors"
	"fmt"
	"slices"

	"github.com/p-n-ai/pai-questions/internal/question"
)

// ErrUnknownField is returned by SetField for a field name it does not know.
var ErrUnknownField = errors.New("unknown filter field")

// Field names a filter selection.
type Field string

const (
	FieldSearch     Field = "search"
	FieldCourse     Field = "course"
	FieldTopic      Field = "topic"
	FieldSubtopic   Field = "subtopic"
	FieldDifficulty Field = "difficulty"
)

// EmptyReason explains why a view has no records.
type EmptyReason string

const (
	EmptyNone       EmptyReason = ""
	EmptyLoadFailed EmptyReason = "load_failed"
	EmptyNoMatches  EmptyReason = "no_matches"
)

// Index is the read-only catalog a session browses, with the options that
// do not depend on the filter state computed once.
type Index struct {
	records      []question.Record
	loadErr      error
	courses      []string
	topics       []string
	difficulties []string
}

// NewIndex builds an index over records. A non-nil loadErr marks the catalog
// as unavailable; every view of it reports EmptyLoadFailed.
func NewIndex(records []question.Record, loadErr error) *Index {
	if loadErr != nil {
		records = nil
	}
	return &Index{
		records:      records,
		loadErr:      loadErr,
		courses:      Distinct(records, func(r question.Record) string { return r.Course }),
		topics:       Distinct(records, func(r question.Record) string { return r.Topic }),
		difficulties: Distinct(records, func(r question.Record) string { return r.Difficulty }),
	}
}

// Records returns the indexed collection.
func (ix *Index) Records() []question.Record {
	return ix.records
}

// LoadErr returns the catalog load error, if any.
func (ix *Index) LoadErr() error {
	return ix.loadErr
}

// Lookup returns the record with the given id.
func (ix *Index) Lookup(id int) (question.Record, bool) {
	i := slices.IndexFunc(ix.records, func(r question.Record) bool { return r.ID == id })
	if i < 0 {
		return question.Record{}, false
	}
	return ix.records[i], true
}

// Options returns the dropdown values for the given topic selection.
func (ix *Index) Options(topic string) Options {
	return Options{
		Courses:      ix.courses,
		Topics:       ix.topics,
		Subtopics:    Subtopics(ix.records, topic),
		Difficulties: ix.difficulties,
	}
}

// Query filters the index without a session.
func (ix *Index) Query(state FilterState) View {
	return ix.view(Filter(ix.records, state), state, ix.Options(state.Topic))
}

func (ix *Index) view(records []question.Record, state FilterState, opts Options) View {
	v := View{
		Records: records,
		State:   state,
		Options: opts,
	}
	switch {
	case ix.loadErr != nil:
		v.Records = []question.Record{}
		v.Empty = EmptyLoadFailed
	case len(records) == 0:
		v.Empty = EmptyNoMatches
	}
	return v
}

// Options are the selectable dropdown values.
type Options struct {
	Courses      []string `json:"courses"`
	Topics       []string `json:"topics"`
	Subtopics    []string `json:"subtopics"`
	Difficulties []string `json:"difficulties"`
}

// View is everything the presentation layer needs after one interaction.
type View struct {
	Records []question.Record `json:"records"`
	Empty   EmptyReason       `json:"empty,omitempty"`
	State   FilterState       `json:"state"`
	Options Options           `json:"options"`
}

// State is the persisted part of a session. Pinned is the id of a randomly
// picked record on display, or 0.
type State struct {
	Filter FilterState `json:"filter"`
	Pinned int         `json:"pinned,omitempty"`
}

// Session is one user's browsing state over a shared index.
type Session struct {
	index     *Index
	state     State
	subtopics []string
	rng       Rand
}

// NewSession starts a session with every filter unset.
func NewSession(index *Index, rng Rand) *Session {
	return &Session{
		index:     index,
		subtopics: []string{},
		rng:       rng,
	}
}

// Restore replaces the session state with a previously saved one and
// recomputes the subtopic options for its topic.
func (s *Session) Restore(st State) {
	s.state = st
	s.subtopics = Subtopics(s.index.records, st.Filter.Topic)
}

// State returns the current session state.
func (s *Session) State() State {
	return s.state
}

// SetField updates one filter field. Changing the topic clears the subtopic
// and recomputes the subtopic options.
func (s *Session) SetField(field Field, value string) (View, error) {
	f := &s.state.Filter
	switch field {
	case FieldSearch:
		f.SearchTerm = value
	case FieldCourse:
		f.Course = value
	case FieldTopic:
		f.Topic = value
		f.Subtopic = ""
		s.subtopics = Subtopics(s.index.records, value)
	case FieldSubtopic:
		f.Subtopic = value
	case FieldDifficulty:
		f.Difficulty = value
	default:
		return View{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	s.state.Pinned = 0
	return s.View(), nil
}

// Reset unsets every field and clears any random pick.
func (s *Session) Reset() View {
	s.state = State{}
	s.subtopics = []string{}
	return s.View()
}

// Random resets the filters and then narrows the display to one uniformly
// chosen record. On an empty catalog it is the same as Reset.
func (s *Session) Random() View {
	s.Reset()
	if r, ok := PickRandom(s.index.records, s.rng); ok {
		s.state.Pinned = r.ID
	}
	return s.View()
}

// View renders the current state.
func (s *Session) View() View {
	opts := s.index.Options("")
	opts.Subtopics = s.subtopics

	if s.state.Pinned != 0 {
		if r, ok := s.index.Lookup(s.state.Pinned); ok {
			return s.index.view([]question.Record{r}, s.state.Filter, opts)
		}
	}
	return s.index.view(Filter(s.index.records, s.state.Filter), s.state.Filter, opts)
}
