package repository

import (
	"encoding/json"
	"fmt"

	"github.com/okian/lingprofile/internal/domain/catalog"
	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/internal/domain/plan"
)

// Records are stored as their JSON document: the flat case record with the
// 40-entry competence vector, the test definition, or the plan. Both stores
// share this codec so a record loaded from either is a fresh copy.

func encode(kind string, v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	return b, nil
}

func decodeCase(b []byte) (*model.Case, error) {
	var c model.Case
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decode case: %w", err)
	}
	return &c, nil
}

func decodeTest(b []byte) (catalog.TestDefinition, error) {
	var d catalog.TestDefinition
	if err := json.Unmarshal(b, &d); err != nil {
		return d, fmt.Errorf("decode test: %w", err)
	}
	return d, nil
}

func decodePlan(b []byte) (*plan.Plan, error) {
	var p plan.Plan
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &p, nil
}
