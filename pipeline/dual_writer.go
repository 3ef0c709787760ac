// Package pipeline batches accepted product records and hands them to output writers.
package pipeline

import (
	"errors"
	"fmt"
	"sync"
)

type namedWriter struct {
	name string
	w    OutputWriter
}

// DualWriter fans each batch out to a CSV and a JSONL writer.
type DualWriter struct {
	mu      sync.Mutex
	writers []namedWriter
}

// NewDualWriter opens both files. If the second cannot be created the first
// is closed again.
func NewDualWriter(csvFilename, jsonFilename string) (*DualWriter, error) {
	csvWriter, err := NewCSVWriter(csvFilename)
	if err != nil {
		return nil, fmt.Errorf("create csv writer: %w", err)
	}
	jsonWriter, err := NewJSONWriter(jsonFilename)
	if err != nil {
		_ = csvWriter.Close()
		return nil, fmt.Errorf("create json writer: %w", err)
	}

	return &DualWriter{writers: []namedWriter{
		{name: "csv", w: csvWriter},
		{name: "json", w: jsonWriter},
	}}, nil
}

// Write stops at the first writer that fails.
func (dw *DualWriter) Write(records []Record) error {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	for _, nw := range dw.writers {
		if err := nw.w.Write(records); err != nil {
			return fmt.Errorf("%s write: %w", nw.name, err)
		}
	}
	return nil
}

func (dw *DualWriter) Close() error {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	return dw.each("close", OutputWriter.Close)
}

func (dw *DualWriter) Validate() error {
	return dw.each("validate", OutputWriter.Validate)
}

func (dw *DualWriter) each(op string, fn func(OutputWriter) error) error {
	var errs []error
	for _, nw := range dw.writers {
		if err := fn(nw.w); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", nw.name, op, err))
		}
	}
	return errors.Join(errs...)
}
