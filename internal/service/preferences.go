package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plateful/backend/internal/model"
)

// UpdatePreferencesRequest is a partial update: nil fields keep their
// stored values, non-nil fields replace them wholesale.
type UpdatePreferencesRequest struct {
	DietaryRestrictions *[]string `json:"dietary_restrictions"`
	Allergens           *[]string `json:"allergens"`
	DislikedIngredients *[]string `json:"disliked_ingredients"`
	FavoriteCuisines    *[]string `json:"favorite_cuisines"`
	FavoriteProteins    *[]string `json:"favorite_proteins"`
	FavoriteMethods     *[]string `json:"favorite_methods"`
	HealthGoals         *[]string `json:"health_goals"`
	CalorieTarget       *int      `json:"calorie_target"`
}

// PreferenceService handles user dietary preference storage.
type PreferenceService struct {
	db *gorm.DB
}

func NewPreferenceService(db *gorm.DB) *PreferenceService {
	return &PreferenceService{db: db}
}

// GetPreferences returns the user's preferences, or an all-empty record
// when none were ever saved.
func (s *PreferenceService) GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error) {
	var prefs model.UserPreferences
	err := s.db.WithContext(ctx).First(&prefs, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return defaultPreferences(userID), nil
		}
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	return &prefs, nil
}

// UpdatePreferences merges the non-nil request fields into the stored
// record, creating it on first write.
func (s *PreferenceService) UpdatePreferences(ctx context.Context, userID string, req *UpdatePreferencesRequest) (*model.UserPreferences, error) {
	var prefs model.UserPreferences
	err := s.db.WithContext(ctx).First(&prefs, "user_id = ?", userID).Error
	isNew := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !isNew {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	if isNew {
		prefs = *defaultPreferences(userID)
	}

	if req.DietaryRestrictions != nil {
		prefs.DietaryRestrictions = model.JSONBStringArray(*req.DietaryRestrictions)
	}
	if req.Allergens != nil {
		prefs.Allergens = model.JSONBStringArray(*req.Allergens)
	}
	if req.DislikedIngredients != nil {
		prefs.DislikedIngredients = model.JSONBStringArray(*req.DislikedIngredients)
	}
	if req.FavoriteCuisines != nil {
		prefs.FavoriteCuisines = model.JSONBStringArray(*req.FavoriteCuisines)
	}
	if req.FavoriteProteins != nil {
		prefs.FavoriteProteins = model.JSONBStringArray(*req.FavoriteProteins)
	}
	if req.FavoriteMethods != nil {
		prefs.FavoriteMethods = model.JSONBStringArray(*req.FavoriteMethods)
	}
	if req.HealthGoals != nil {
		prefs.HealthGoals = model.JSONBStringArray(*req.HealthGoals)
	}
	if req.CalorieTarget != nil {
		prefs.CalorieTarget = *req.CalorieTarget
	}

	if err := s.db.WithContext(ctx).Save(&prefs).Error; err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}
	return &prefs, nil
}

// DeletePreferences removes the stored record. Deleting preferences that
// were never saved is a no-op.
func (s *PreferenceService) DeletePreferences(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.UserPreferences{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete preferences: %w", err)
	}
	return nil
}

func defaultPreferences(userID string) *model.UserPreferences {
	return &model.UserPreferences{
		ID:                  uuid.New(),
		UserID:              userID,
		DietaryRestrictions: model.JSONBStringArray{},
		Allergens:           model.JSONBStringArray{},
		DislikedIngredients: model.JSONBStringArray{},
		FavoriteCuisines:    model.JSONBStringArray{},
		FavoriteProteins:    model.JSONBStringArray{},
		FavoriteMethods:     model.JSONBStringArray{},
		HealthGoals:         model.JSONBStringArray{},
	}
}
