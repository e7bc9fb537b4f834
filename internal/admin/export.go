package admin

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/p-n-ai/pai-questions/internal/question"
)

// Snapshot is the exported text of the working copy at one point in time.
type Snapshot struct {
	Text     string `json:"text"`
	Revision string `json:"revision"`
	Count    int    `json:"count"`
}

// NewSnapshot serializes records and fingerprints the result.
func NewSnapshot(records []question.Record) Snapshot {
	text := Serialize(records)
	return Snapshot{
		Text:     text,
		Revision: Revision(text),
		Count:    len(records),
	}
}

// Serialize renders records as JSON indented by two spaces, without HTML
// escaping and without a trailing newline. An empty collection is "[]".
func Serialize(records []question.Record) string {
	if records == nil {
		records = []question.Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	_ = enc.Encode(records)
	return strings.TrimSuffix(buf.String(), "\n")
}

// Revision returns the hex BLAKE2b-256 digest of text.
func Revision(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

const sheetName = "Questions"

var sheetHeader = []any{
	"ID", "Course", "Topic", "Subtopic", "Difficulty",
	"Question", "Question Images", "Answer", "Answer Images", "Answer Video", "Tags",
}

// WriteXLSX writes records as a single-sheet spreadsheet, one row per record.
// List fields are joined with ", " so they can be pasted back into a draft.
func WriteXLSX(w io.Writer, records []question.Record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &sheetHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		row := []any{
			r.ID,
			r.Course,
			r.Topic,
			r.Subtopic,
			r.Difficulty,
			r.QuestionText,
			strings.Join(r.QuestionImages, ", "),
			r.AnswerText,
			strings.Join(r.AnswerImages, ", "),
			r.AnswerVideo,
			strings.Join(r.Tags, ", "),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write question %d: %w", r.ID, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write spreadsheet: %w", err)
	}
	return nil
}
