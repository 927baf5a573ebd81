package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/D3fc0n3-1/Deal-hunter/internal/platform"
	apperr "github.com/D3fc0n3-1/Deal-hunter/pkg/errors"
)

// Document is the serialized shape of one cycle's aggregate results.
type Document struct {
	LastUpdated  time.Time          `json:"last_updated"`
	TotalResults int                `json:"total_results"`
	Results      []platform.Listing `json:"results"`
}

// Writer writes each cycle's aggregate to the configured destination. The
// write is atomic: the document is built in a temp file in the same
// directory and renamed into place, so a reader never observes a truncated
// result.
type Writer struct {
	path string
	now  func() time.Time
}

// NewWriter creates a writer for the given destination path
func NewWriter(path string) *Writer {
	return &Writer{
		path: path,
		now:  time.Now,
	}
}

// WithClock overrides the timestamp source, for deterministic tests.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now
	return w
}

// Write replaces the destination with the full aggregate of one cycle.
func (w *Writer) Write(listings []platform.Listing) error {
	if listings == nil {
		listings = []platform.Listing{}
	}

	doc := Document{
		LastUpdated:  w.now().UTC(),
		TotalResults: len(listings),
		Results:      listings,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperr.NewOutput("failed to serialize results", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, ".results-*.json")
	if err != nil {
		return apperr.NewOutput("failed to create temp file in "+dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperr.NewOutput("failed to write results", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperr.NewOutput("failed to sync results", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperr.NewOutput("failed to close temp file", err)
	}

	if err := os.Rename(tmpName, w.path); err != nil {
		os.Remove(tmpName)
		return apperr.NewOutput("failed to replace "+w.path, err)
	}
	return nil
}

// Read loads a previously written document.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.NewOutput("failed to read "+path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperr.NewOutput("failed to decode "+path, err)
	}
	return &doc, nil
}
