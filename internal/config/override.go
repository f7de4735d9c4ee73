// SPDX-License-Identifier: MPL-2.0

package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseOverride splits a "path.to.key=value" pair into its dotted path
// segments and a typed value. The value is coerced in order: boolean,
// integer, float, JSON literal (quoted string, array, or object), and
// finally a plain string.
func ParseOverride(pair string) ([]string, any, error) {
	idx := strings.Index(pair, "=")
	if idx < 0 {
		return nil, nil, fmt.Errorf("invalid override %q: expected path.to.key=value", pair)
	}

	rawPath, rawValue := pair[:idx], pair[idx+1:]
	if rawPath == "" {
		return nil, nil, fmt.Errorf("invalid override %q: empty path", pair)
	}

	path := strings.Split(rawPath, ".")
	for _, seg := range path {
		if seg == "" {
			return nil, nil, fmt.Errorf("invalid override %q: empty path segment", pair)
		}
	}

	return path, coerceValue(rawValue), nil
}

// coerceValue interprets an override value string as the most specific
// type it parses as. Values that should stay strings despite looking
// numeric can be JSON-quoted: --set 'input.tag="0042"'.
func coerceValue(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}

	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}

	if len(raw) > 0 {
		switch raw[0] {
		case '"', '[', '{':
			var v any
			if err := json.Unmarshal([]byte(raw), &v); err == nil {
				return v
			}
		}
	}

	return raw
}
