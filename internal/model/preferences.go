package model

import (
	"time"

	"github.com/google/uuid"
)

// UserPreferences holds a user's standing dietary profile, one row per
// user. Updates are partial merges; a user who has never saved anything
// reads back an all-empty record rather than a not-found error.
type UserPreferences struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID string    `gorm:"size:128;not null;uniqueIndex" json:"user_id"`

	DietaryRestrictions JSONBStringArray `gorm:"type:jsonb;default:'[]'" json:"dietary_restrictions"`
	Allergens           JSONBStringArray `gorm:"type:jsonb;default:'[]'" json:"allergens"`
	DislikedIngredients JSONBStringArray `gorm:"type:jsonb;default:'[]'" json:"disliked_ingredients"`
	FavoriteCuisines    JSONBStringArray `gorm:"type:jsonb;default:'[]'" json:"favorite_cuisines"`
	FavoriteProteins    JSONBStringArray `gorm:"type:jsonb;default:'[]'" json:"favorite_proteins"`
	FavoriteMethods     JSONBStringArray `gorm:"type:jsonb;default:'[]'" json:"favorite_methods"`

	HealthGoals   JSONBStringArray `gorm:"type:jsonb;default:'[]'" json:"health_goals"`
	CalorieTarget int              `json:"calorie_target"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
