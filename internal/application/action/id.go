package action

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

// ID is an identifier sent either as a JSON string or a JSON number.
// Pair it with `validate:"int64id"` to reject anything Int64 cannot parse.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	case len(data) > 0 && (data[0] == '-' || (data[0] >= '0' && data[0] <= '9')):
		*id = ID(data)
		return nil
	default:
		return &json.UnmarshalTypeError{Value: string(data), Type: reflect.TypeOf(ID(""))}
	}
}

func (id ID) Int64() (int64, error) {
	return strconv.ParseInt(string(id), 10, 64)
}

func (id ID) Empty() bool {
	return id == ""
}
