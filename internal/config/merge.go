// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
)

// Merge folds the sources into a single nested map, later sources taking
// precedence. Tables merge recursively, everything else replaces, and a
// table colliding with a non-table yields a MergeConflictError naming
// the full dotted path. Source trees are never mutated.
func Merge(sources ...Source) (map[string]any, error) {
	merged := map[string]any{}

	for _, src := range sources {
		tree, err := src.Load()
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Describe(), err)
		}
		if err := deepMerge(merged, tree, ""); err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Describe(), err)
		}
	}

	return merged, nil
}

func deepMerge(dst, src map[string]any, prefix string) error {
	for key, srcVal := range src {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		srcMap, srcIsMap := asMap(srcVal)

		dstVal, exists := dst[key]
		if !exists {
			if srcIsMap {
				dst[key] = copyMap(srcMap)
			} else {
				dst[key] = srcVal
			}
			continue
		}

		dstMap, dstIsMap := asMap(dstVal)

		switch {
		case srcIsMap && dstIsMap:
			if err := deepMerge(dstMap, srcMap, path); err != nil {
				return err
			}
			dst[key] = dstMap
		case srcIsMap != dstIsMap:
			return &MergeConflictError{Path: path}
		default:
			dst[key] = srcVal
		}
	}

	return nil
}

// asMap normalizes the map shapes the parsers produce. go-toml and
// encoding/json decode nested tables as map[string]any; yaml.v3 can
// surface map[any]any when decoding through an interface value.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func copyMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		if m, ok := asMap(v); ok {
			out[k] = copyMap(m)
		} else {
			out[k] = v
		}
	}
	return out
}
