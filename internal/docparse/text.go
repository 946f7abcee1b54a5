package docparse

import (
	"context"
	"fmt"
	"os"
)

// TextLoader reads pre-extracted text files directly, for runs where the
// PDFs were already converted elsewhere.
type TextLoader struct{}

// NewTextLoader creates a text file loader.
func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

// Name returns the parser identifier.
func (l *TextLoader) Name() string {
	return ModeText
}

// Parse reads the file at path as a single page.
func (l *TextLoader) Parse(_ context.Context, path string) ([]Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return []Page{{Number: 1, Markdown: string(data)}}, nil
}

var _ Parser = (*TextLoader)(nil)
