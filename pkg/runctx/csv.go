// SPDX-License-Identifier: MPL-2.0

package runctx

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
)

// WriteCSV writes a header and rows to a named output stream.
func (rc *RunContext) WriteCSV(name string, header []string, rows [][]string) error {
	out, err := rc.CreateOutput(name)
	if err != nil {
		return err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	w.Flush()
	return w.Error()
}

// WriteJSON writes a value as JSON to a named output stream.
func (rc *RunContext) WriteJSON(name string, v any) error {
	out, err := rc.CreateOutput(name)
	if err != nil {
		return err
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
