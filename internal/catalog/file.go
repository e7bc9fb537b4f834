package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/p-n-ai/pai-questions/internal/question"
)

// FileSource reads a catalog file. Files ending in .yaml or .yml are parsed
// as YAML, everything else as JSON.
type FileSource struct {
	Path string
}

func (s FileSource) Load(_ context.Context) ([]question.Record, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return DecodeJSON(data)
	}
}

func (s FileSource) String() string {
	return "file:" + s.Path
}
