package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Ref is a document id. The backend sends it either as a bare string or as a
// populated document ({"_id": ...}); both decode to the same value.
type Ref string

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("ref: %w", err)
		}
		*r = Ref(s)
		return nil
	}

	var doc struct {
		ID  json.RawMessage `json:"_id"`
		OID string          `json:"$oid"`
		Alt string          `json:"id"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("ref: %w", err)
	}
	switch {
	case doc.OID != "":
		*r = Ref(doc.OID)
	case len(doc.ID) > 0:
		var inner Ref
		if err := inner.UnmarshalJSON(doc.ID); err != nil {
			return err
		}
		*r = inner
	default:
		*r = Ref(doc.Alt)
	}
	return nil
}

func (r Ref) String() string { return string(r) }

// Empty reports whether the ref carries no id
func (r Ref) Empty() bool { return r == "" }

// ContainsRef reports whether id is in refs
func ContainsRef(refs []Ref, id Ref) bool {
	if id.Empty() {
		return false
	}
	for _, r := range refs {
		if r == id {
			return true
		}
	}
	return false
}
