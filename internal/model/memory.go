package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
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

	return json.Unmarshal(bytes, a)
}

// RecipeMetadata carries the categorical tags the diversity scorer reads.
// Every field is optional: an empty string means "unknown" and scores
// neutrally, it never counts as a match.
type RecipeMetadata struct {
	Cuisine        string           `gorm:"size:50" json:"cuisine,omitempty"`
	PrimaryProtein string           `gorm:"size:50" json:"primary_protein,omitempty"`
	CookingMethod  string           `gorm:"size:50" json:"cooking_method,omitempty"`
	MealType       string           `gorm:"size:50" json:"meal_type,omitempty"`
	DietaryTags    JSONBStringArray `gorm:"type:jsonb;default:'[]'" json:"dietary_tags,omitempty"`
	PrepTime       int              `json:"prep_time,omitempty"`
	Difficulty     string           `gorm:"size:20" json:"difficulty,omitempty"`
}

// RecipeMemory is an accepted recipe persisted to the user's history.
// Rows are created only when the orchestrator accepts a candidate; after
// creation only LastAccessedAt changes, and retention cleanup deletes rows
// past the configured age.
type RecipeMemory struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	UserID         string           `gorm:"size:128;not null;index:idx_recipe_memories_user_created" json:"user_id"`
	ConversationID string           `gorm:"size:128" json:"conversation_id"`
	Name           string           `gorm:"size:255;not null" json:"name"`
	Notes          string           `gorm:"type:text" json:"notes"`
	Ingredients    IngredientList   `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions   JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	Servings       int              `json:"servings"`
	PrepTimeMin    int              `json:"prep_time_min"`
	CookTimeMin    int              `json:"cook_time_min"`
	Calories       float64          `gorm:"type:float" json:"calories"`
	Protein        float64          `gorm:"type:float" json:"protein"`
	Carbs          float64          `gorm:"type:float" json:"carbs"`
	Fat            float64          `gorm:"type:float" json:"fat"`
	Metadata       RecipeMetadata   `gorm:"embedded;embeddedPrefix:meta_" json:"metadata"`

	Embedding      pgvector.Vector `gorm:"type:vector(1536)" json:"-"`
	EmbeddingModel string          `gorm:"size:100" json:"embedding_model"`

	CreatedAt       time.Time `gorm:"index:idx_recipe_memories_user_created" json:"created_at"`
	LastAccessedAt  time.Time `json:"last_accessed_at"`
	AcceptedAttempt int       `json:"accepted_attempt"`
	WasRetried      bool      `json:"was_retried"`
	SimilarityScore float64   `gorm:"type:float" json:"similarity_score"`
}

// RecipeDraft is a generator result before acceptance. It never touches
// the database; the orchestrator copies it into a RecipeMemory on accept.
type RecipeDraft struct {
	Name         string         `json:"name"`
	Notes        string         `json:"notes"`
	Ingredients  IngredientList `json:"ingredients"`
	Instructions []string       `json:"instructions"`
	Servings     int            `json:"servings"`
	PrepTimeMin  int            `json:"prep_time_min"`
	CookTimeMin  int            `json:"cook_time_min"`
	Calories     float64        `json:"calories"`
	Protein      float64        `json:"protein"`
	Carbs        float64        `json:"carbs"`
	Fat          float64        `json:"fat"`
	Metadata     RecipeMetadata `json:"metadata"`
}
