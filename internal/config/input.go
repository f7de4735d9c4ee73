// SPDX-License-Identifier: MPL-2.0

package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseInputArg interprets the CLI's --input argument. It accepts, in
// order of preference: a path to a JSON file, an inline JSON object, or
// comma-separated key=value pairs (values coerced like --set).
func ParseInputArg(arg string) (map[string]any, error) {
	if fileExists(arg) {
		src := NewFileSource(arg)
		tree, err := src.Load()
		if err != nil {
			return nil, err
		}
		return tree, nil
	}

	trimmed := strings.TrimSpace(arg)
	if strings.HasPrefix(trimmed, "{") {
		tree := map[string]any{}
		if err := json.Unmarshal([]byte(trimmed), &tree); err != nil {
			return nil, fmt.Errorf("invalid inline JSON input: %w", err)
		}
		return tree, nil
	}

	tree := map[string]any{}
	for _, pair := range strings.Split(arg, ",") {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid input pair %q: expected key=value", pair)
		}
		tree[key] = coerceValue(value)
	}
	return tree, nil
}
