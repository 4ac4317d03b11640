package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// IngredientEntry is a single recipe ingredient. Older generator payloads
// emit bare strings ("2 cups flour"), newer ones emit structured objects
// with separate item and quantity fields. Both decode into this type.
type IngredientEntry struct {
	Item     string `json:"item"`
	Quantity string `json:"quantity,omitempty"`
}

func (e *IngredientEntry) UnmarshalJSON(data []byte) error {
	// Try the structured form first
	var obj struct {
		Item     string `json:"item"`
		Quantity string `json:"quantity"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.Item != "" {
		e.Item = obj.Item
		e.Quantity = obj.Quantity
		return nil
	}

	// Fall back to the legacy bare-string form
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		e.Item = str
		return nil
	}

	return fmt.Errorf("invalid ingredient entry format")
}

// Display renders the entry the way it would appear in a recipe card.
func (e IngredientEntry) Display() string {
	if e.Quantity == "" {
		return e.Item
	}
	return e.Quantity + " " + e.Item
}

// IngredientList is a custom type for handling ingredient arrays in JSONB
type IngredientList []IngredientEntry

// Value implements the driver.Valuer interface
func (l IngredientList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface
func (l *IngredientList) Scan(value interface{}) error {
	if value == nil {
		*l = IngredientList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Items returns the bare item names, trimmed, skipping empty entries.
func (l IngredientList) Items() []string {
	items := make([]string, 0, len(l))
	for _, e := range l {
		item := strings.TrimSpace(e.Item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
