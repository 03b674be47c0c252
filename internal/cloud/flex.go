package cloud

import (
	"bytes"
	"encoding/json"
	"strconv"
)

var jsonNull = []byte("null")

// FlexString decodes a JSON string or number as text. Null and any other
// JSON kind decode to "".
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*s = ""
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return nil
	}

	switch c := data[0]; {
	case c == '"':
		var v string
		if err := json.Unmarshal(data, &v); err == nil {
			*s = FlexString(v)
		}
	case c == '-' || (c >= '0' && c <= '9'):
		*s = FlexString(data)
	}
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

// FlexFloat decodes a JSON number or numeric string. Valid is false for
// null, absent or unparseable values.
type FlexFloat struct {
	Value float64
	Valid bool
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	*f = FlexFloat{}

	var text FlexString
	if err := text.UnmarshalJSON(data); err != nil || text == "" {
		return nil
	}
	v, err := strconv.ParseFloat(string(text), 64)
	if err != nil {
		return nil
	}
	*f = FlexFloat{Value: v, Valid: true}
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return jsonNull, nil
	}
	return json.Marshal(f.Value)
}

// FlexList decodes a JSON array element by element. A value that is not an
// array decodes as an empty list, and an element that cannot be decoded
// keeps whatever fields did decode so positions are preserved.
type FlexList[T any] []T

func (l *FlexList[T]) UnmarshalJSON(data []byte) error {
	*l = nil

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}

	out := make([]T, len(items))
	for i, item := range items {
		_ = json.Unmarshal(item, &out[i])
	}
	*l = out
	return nil
}

// Headers decodes a JSON object of header values. Array values contribute
// their first element; other non-string values are skipped.
type Headers map[string]string

func (h *Headers) UnmarshalJSON(data []byte) error {
	*h = nil

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	out := make(Headers, len(raw))
	for k, v := range raw {
		var s FlexString
		_ = s.UnmarshalJSON(v)
		if s == "" {
			var list []FlexString
			if err := json.Unmarshal(v, &list); err == nil && len(list) > 0 {
				s = list[0]
			}
		}
		if s != "" {
			out[k] = string(s)
		}
	}
	*h = out
	return nil
}
