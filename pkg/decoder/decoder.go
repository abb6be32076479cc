package decoder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/samvad-hq/samvad-title-fetcher/internal/domain"
)

// Package decoder turns raw session payloads into domain.APIResponse values.

const titleField = "title"

// Decode parses payload strictly: it must be exactly one JSON object with a
// string "title" (matched case-sensitively). Other fields are ignored; a key
// repeated at the top level is rejected. Every
// failure is a *domain.DecodeError and the returned response is the zero value.
func Decode(payload []byte) (domain.APIResponse, error) {
	fields, err := decodeObject(payload)
	if err != nil {
		return domain.APIResponse{}, &domain.DecodeError{Err: err}
	}

	raw, ok := fields[titleField]
	if !ok {
		return domain.APIResponse{}, &domain.DecodeError{Err: fmt.Errorf("missing required field %q", titleField)}
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return domain.APIResponse{}, &domain.DecodeError{Err: fmt.Errorf("field %q is null", titleField)}
	}

	var title string
	if err := json.Unmarshal(raw, &title); err != nil {
		return domain.APIResponse{}, &domain.DecodeError{Err: fmt.Errorf("field %q: %w", titleField, err)}
	}

	return domain.APIResponse{Title: title}, nil
}

// decodeObject walks the top-level object token by token so a repeated key
// is rejected instead of silently overwriting the earlier value.
func decodeObject(payload []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, errors.New("empty payload")
	}
	if trimmed[0] != '{' {
		return nil, errors.New("payload is not a JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	fields := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("parse json: unexpected token %v", tok)
		}
		if _, dup := fields[key]; dup {
			return nil, fmt.Errorf("duplicate field %q", key)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("parse json: field %q: %w", key, err)
		}
		fields[key] = value
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON object")
	}
	return fields, nil
}
