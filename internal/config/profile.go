// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"sort"
)

// ProfileKey is the reserved key under which a section defines named
// variants of itself.
const ProfileKey = "profile"

// DefaultProfileName is used when a section defines several profiles and
// none was selected.
const DefaultProfileName = "default"

// ResolveSection collapses a section's profile table into the section
// itself. Profile values deep-merge over the section's bare keys and the
// profile table is removed from the result.
//
// Selection rules: an explicitly selected profile must exist; with no
// selection, a profile named "default" wins; a sole profile is used
// implicitly; several profiles with no selection or default is an error.
// Sections without a profile table pass through untouched (a selection
// against such a section is ignored).
func ResolveSection(name string, section map[string]any, selected string) (map[string]any, error) {
	raw, ok := section[ProfileKey]
	if !ok {
		return section, nil
	}

	profiles, ok := asMap(raw)
	if !ok {
		return nil, fmt.Errorf("section %q: %q must be a table of named profiles", name, ProfileKey)
	}

	available := make([]string, 0, len(profiles))
	for pname := range profiles {
		available = append(available, pname)
	}
	sort.Strings(available)

	chosen := selected
	if chosen == "" {
		switch {
		case hasKey(profiles, DefaultProfileName):
			chosen = DefaultProfileName
		case len(profiles) == 1:
			chosen = available[0]
		default:
			return nil, &AmbiguousProfileError{Section: name, Available: available}
		}
	}

	variant, ok := profiles[chosen]
	if !ok {
		return nil, &UnknownProfileError{Section: name, Name: chosen, Available: available}
	}
	variantMap, ok := asMap(variant)
	if !ok {
		return nil, fmt.Errorf("section %q: profile %q must be a table", name, chosen)
	}

	base := map[string]any{}
	for k, v := range section {
		if k == ProfileKey {
			continue
		}
		base[k] = v
	}
	resolved := copyMap(base)
	if err := deepMerge(resolved, variantMap, name); err != nil {
		return nil, err
	}

	return resolved, nil
}

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}
