package query

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Decode parses an opaque payload. Malformed JSON is returned as the raw
// string and an empty payload decodes to nil. Numbers stay json.Number so
// token ids keep every digit.
func Decode(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return raw
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return raw
	}
	return v
}

// Encode is the inverse of Decode: strings pass through, everything else is
// marshalled.
func Encode(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
