// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// InputHashLength is the number of hex characters in an input hash.
const InputHashLength = 16

// InputHash digests the document's four content sections into a short
// deterministic identifier. The metadata section is excluded so the hash
// never depends on itself, and serialization relies on encoding/json
// emitting map keys in sorted order. Callers compute the hash before
// staged paths are substituted, so two runs of the same logical config
// hash identically regardless of where files landed.
func InputHash(doc *RunDocument) (string, error) {
	payload := map[string]any{
		SectionRuntime: doc.Runtime,
		SectionModel:   doc.Model,
		SectionInput:   doc.Input,
		SectionOutput:  doc.Output,
	}

	canonical, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])[:InputHashLength], nil
}
