// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package validate

import (
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// CodeInvalidIdentifier is returned for identifiers that are not valid ULIDs.
const CodeInvalidIdentifier = "INVALID_IDENTIFIER"

// ParseID parses a ULID entity identifier.
func ParseID(field, raw string) (ulid.ULID, error) {
	id, err := ulid.ParseStrict(raw)
	if err != nil {
		return ulid.ULID{}, oops.Code(CodeInvalidIdentifier).
			With("field", field).
			With("value", raw).
			Wrap(err)
	}
	return id, nil
}
