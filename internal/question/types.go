// Package question defines the question record shared by the browser and the admin editor.
package question

import (
	"strconv"
	"strings"
)

// Record is a single question/answer entry with its categorical metadata.
type Record struct {
	ID             int      `json:"id" yaml:"id"`
	Course         string   `json:"course" yaml:"course"`
	Topic          string   `json:"topic" yaml:"topic"`
	Subtopic       string   `json:"subtopic" yaml:"subtopic"`
	Difficulty     string   `json:"difficulty" yaml:"difficulty"`
	QuestionText   string   `json:"questionText" yaml:"questionText"`
	QuestionImages []string `json:"questionImages" yaml:"questionImages"`
	AnswerText     string   `json:"answerText" yaml:"answerText"`
	AnswerImages   []string `json:"answerImages" yaml:"answerImages"`
	AnswerVideo    string   `json:"answerVideo" yaml:"answerVideo,omitempty"`
	Tags           []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Normalize replaces missing image lists with empty ones so a record always
// serializes with "[]" rather than null.
func (r *Record) Normalize() {
	if r.QuestionImages == nil {
		r.QuestionImages = []string{}
	}
	if r.AnswerImages == nil {
		r.AnswerImages = []string{}
	}
}

// Token returns the short search handle of the record, e.g. "q42".
func (r Record) Token() string {
	return "q" + strconv.Itoa(r.ID)
}

// Draft is the admin input for a new record. List fields are comma-separated.
type Draft struct {
	Course         string `json:"course"`
	Topic          string `json:"topic"`
	Subtopic       string `json:"subtopic"`
	Difficulty     string `json:"difficulty"`
	QuestionText   string `json:"questionText"`
	QuestionImages string `json:"questionImages"`
	AnswerText     string `json:"answerText"`
	AnswerImages   string `json:"answerImages"`
	AnswerVideo    string `json:"answerVideo"`
	Tags           string `json:"tags"`
}

// Record builds a record with the given id from the draft.
func (d Draft) Record(id int) Record {
	r := Record{
		ID:             id,
		Course:         d.Course,
		Topic:          d.Topic,
		Subtopic:       d.Subtopic,
		Difficulty:     d.Difficulty,
		QuestionText:   d.QuestionText,
		QuestionImages: SplitList(d.QuestionImages),
		AnswerText:     d.AnswerText,
		AnswerImages:   SplitList(d.AnswerImages),
		AnswerVideo:    d.AnswerVideo,
	}
	if tags := SplitList(d.Tags); len(tags) > 0 {
		r.Tags = tags
	}
	return r
}

// SplitList splits a comma-separated list, trimming each part and dropping
// empty ones. The result is never nil.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Clone returns a copy of records whose slices do not alias the input.
func Clone(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		r.QuestionImages = cloneStrings(r.QuestionImages)
		r.AnswerImages = cloneStrings(r.AnswerImages)
		r.Tags = cloneStrings(r.Tags)
		out[i] = r
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}
