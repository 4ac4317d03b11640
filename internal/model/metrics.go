package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JSONBCountMap is a custom type for handling string->count maps in JSONB
type JSONBCountMap map[string]int

// Value implements the driver.Valuer interface
func (m JSONBCountMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface
func (m *JSONBCountMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONBCountMap{}
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

	return json.Unmarshal(bytes, m)
}

// Trend classifies the direction of a user's diversity scores over time.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// DiversityMetrics is a per-user snapshot of rolling-window diversity
// statistics. One row per user; the aggregator overwrites it on each
// calculation and readers treat snapshots older than seven days as stale.
type DiversityMetrics struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID      string    `gorm:"size:128;not null;uniqueIndex" json:"user_id"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`

	CuisineDistribution JSONBCountMap `gorm:"type:jsonb;default:'{}'" json:"cuisine_distribution"`
	ProteinDistribution JSONBCountMap `gorm:"type:jsonb;default:'{}'" json:"protein_distribution"`
	MethodDistribution  JSONBCountMap `gorm:"type:jsonb;default:'{}'" json:"method_distribution"`

	AverageDiversityScore float64 `gorm:"type:float" json:"average_diversity_score"`
	Trend                 Trend   `gorm:"size:20" json:"trend"`

	UnderrepresentedCuisines JSONBStringArray `gorm:"type:jsonb;default:'[]'" json:"underrepresented_cuisines"`
	UnderrepresentedProteins JSONBStringArray `gorm:"type:jsonb;default:'[]'" json:"underrepresented_proteins"`
	UnderrepresentedMethods  JSONBStringArray `gorm:"type:jsonb;default:'[]'" json:"underrepresented_methods"`

	TotalRecipes   int       `json:"total_recipes"`
	UniqueCuisines int       `json:"unique_cuisines"`
	UniqueProteins int       `json:"unique_proteins"`
	CalculatedAt   time.Time `json:"calculated_at"`
}
