package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ScoreMap stores per-dimension numeric values as JSONB.
type ScoreMap map[string]float64

func (m ScoreMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *ScoreMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into ScoreMap", src)
	}
	return json.Unmarshal(b, m)
}

// ValueMap stores core values grouped by category as JSONB.
type ValueMap map[string][]string

func (m ValueMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *ValueMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into ValueMap", src)
	}
	return json.Unmarshal(b, m)
}

// Flatten returns every value tag prefixed by its category, so two
// profiles only overlap when they share a tag within the same category.
func (m ValueMap) Flatten() []string {
	var out []string
	for category, tags := range m {
		for _, tag := range tags {
			out = append(out, category+":"+tag)
		}
	}
	return out
}
