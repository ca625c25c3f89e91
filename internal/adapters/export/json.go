package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/okian/lingprofile/internal/domain/model"
)

// WriteJSON writes a single case as an object and several as an array.
func WriteJSON(w io.Writer, cases ...*model.Case) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	var err error
	switch len(cases) {
	case 0:
		return ErrNoCase
	case 1:
		err = enc.Encode(cases[0])
	default:
		err = enc.Encode(cases)
	}
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// ReadCases parses a JSON document holding one case or an array of cases
// and validates each.
func ReadCases(r io.Reader) ([]*model.Case, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	var cases []*model.Case
	if data[0] == '[' {
		if err := json.Unmarshal(data, &cases); err != nil {
			return nil, fmt.Errorf("decode cases: %w", err)
		}
	} else {
		var c model.Case
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode case: %w", err)
		}
		cases = []*model.Case{&c}
	}
	if len(cases) == 0 {
		return nil, ErrEmptyDocument
	}
	for i, c := range cases {
		if c == nil {
			return nil, fmt.Errorf("case %d: %w", i, ErrNoCase)
		}
		if c.Tests == nil {
			c.Tests = []model.AppliedTest{}
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("case %d: %w", i, err)
		}
	}
	return cases, nil
}
