package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID is an opaque catalog identifier. The backend emits ids as JSON strings or
// numbers; both normalize to the same string form.
type ID string

func (id ID) String() string { return string(id) }

func (id ID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a JSON string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}
