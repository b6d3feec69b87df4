package fields

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexID is an identifier the backend sends either as a JSON number (external catalog
// ids) or as a JSON string (internal UUIDs). It is kept in its textual form.
type FlexID string

func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = FlexID(n.String())
	return nil
}

// MarshalJSON writes integer-looking ids as numbers and everything else as strings.
func (id FlexID) MarshalJSON() ([]byte, error) {
	if n, ok := id.Int64(); ok {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

func (id FlexID) String() string {
	return string(id)
}

func (id FlexID) IsZero() bool {
	return id == ""
}

func (id FlexID) Int64() (int64, bool) {
	if id == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
