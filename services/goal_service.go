// services/goal_service.go
package services

import (
	"errors"
	"strconv"
	"strings"

	"github.com/S-A-M-22/BiteBuilder-sub000/config"
	"github.com/S-A-M-22/BiteBuilder-sub000/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GoalService struct {
	log *zap.Logger
}

func NewGoalService() *GoalService {
	return &GoalService{log: config.Log}
}

type GoalInput struct {
	TargetWeightKg   *float64 `json:"target_weight_kg"`
	TargetCalories   *int     `json:"target_calories"`
	ConsumedCalories *float64 `json:"consumed_calories"`
	ResetFrequency   string   `json:"reset_frequency"`
}

var resetFrequencies = map[string]bool{
	"daily": true, "weekly": true, "monthly": true, "none": true,
}

func (s *GoalService) GetGoal(userID string) (*models.Goal, error) {
	var goal models.Goal
	err := config.DB.
		Preload("Nutrients.Nutrient").
		Where("user_id = ?", userID).
		First(&goal).Error
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

func (s *GoalService) UpsertGoal(userID string, input GoalInput) (*models.Goal, error) {
	if input.ResetFrequency != "" && !resetFrequencies[input.ResetFrequency] {
		return nil, errors.New("invalid reset_frequency")
	}

	var goal models.Goal
	err := config.DB.Where("user_id = ?", userID).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		goal = models.Goal{
			UserID:         userID,
			TargetWeightKg: input.TargetWeightKg,
			TargetCalories: input.TargetCalories,
			ResetFrequency: input.ResetFrequency,
		}
		if input.ConsumedCalories != nil {
			goal.ConsumedCalories = *input.ConsumedCalories
		}
		if err := config.DB.Create(&goal).Error; err != nil {
			return nil, err
		}
		return &goal, nil
	}
	if err != nil {
		return nil, err
	}

	if input.TargetWeightKg != nil {
		goal.TargetWeightKg = input.TargetWeightKg
	}
	if input.TargetCalories != nil {
		goal.TargetCalories = input.TargetCalories
	}
	if input.ConsumedCalories != nil {
		goal.ConsumedCalories = *input.ConsumedCalories
	}
	if input.ResetFrequency != "" {
		goal.ResetFrequency = input.ResetFrequency
	}
	if err := config.DB.Save(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

// AddGoalNutrient attaches a nutrient target to the user's goal and resyncs
// consumed totals so the new row is populated immediately.
func (s *GoalService) AddGoalNutrient(userID, nutrientID string, targetAmount float64) (*models.GoalNutrient, error) {
	var goal models.Goal
	if err := config.DB.Where("user_id = ?", userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("goal not found for user")
		}
		return nil, err
	}

	var nutrient models.Nutrient
	if err := config.DB.First(&nutrient, "id = ?", nutrientID).Error; err != nil {
		return nil, errors.New("nutrient not found")
	}

	gn := models.GoalNutrient{
		GoalID:       goal.ID,
		NutrientID:   nutrient.ID,
		TargetAmount: targetAmount,
	}
	if err := config.DB.Create(&gn).Error; err != nil {
		return nil, err
	}

	if _, err := s.RecalculateGoalNutrients(userID); err != nil {
		return nil, err
	}

	if err := config.DB.Preload("Nutrient").First(&gn, "id = ?", gn.ID).Error; err != nil {
		return nil, err
	}
	return &gn, nil
}

func (s *GoalService) ListGoalNutrients(userID string) ([]models.GoalNutrient, error) {
	var rows []models.GoalNutrient
	err := config.DB.
		Preload("Nutrient").
		Joins("JOIN goals ON goals.id = goal_nutrients.goal_id").
		Where("goals.user_id = ?", userID).
		Find(&rows).Error
	return rows, err
}

func (s *GoalService) RemoveGoalNutrient(userID, goalNutrientID string) error {
	res := config.DB.
		Where("id = ? AND goal_id IN (?)", goalNutrientID,
			config.DB.Model(&models.Goal{}).Select("id").Where("user_id = ?", userID)).
		Delete(&models.GoalNutrient{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	_, err := s.RecalculateGoalNutrients(userID)
	return err
}

// RecalculateGoalNutrients recomputes total consumed amounts for every
// nutrient tracked by the user's goal by walking the full eaten-meal history,
// then persists any totals that changed. The pass is idempotent: it derives
// absolute values from source data rather than applying deltas, so concurrent
// triggers converge on the same result. Callers invoke it after the
// triggering write (eaten meal logged/removed, goal nutrient added/removed)
// has committed.
//
// Returns the accumulated per-nutrient totals keyed by nutrient id. A user
// without a goal is a no-op with an empty result.
func (s *GoalService) RecalculateGoalNutrients(userID string) (map[string]float64, error) {
	var goal models.Goal
	if err := config.DB.Where("user_id = ?", userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Debug("recalculation skipped, user has no goal", zap.String("user_id", userID))
			return map[string]float64{}, nil
		}
		return nil, err
	}

	s.log.Info("recalculating goal nutrients", zap.String("user_id", userID))

	var eaten []models.EatenMeal
	if err := config.DB.
		Preload("Meal.Items.Product.Nutrients").
		Where("user_id = ?", userID).
		Find(&eaten).Error; err != nil {
		return nil, err
	}

	totals := make(map[string]float64)
	for _, event := range eaten {
		for _, item := range event.Meal.Items {
			if len(item.Product.Nutrients) == 0 {
				// No facts on record: the item contributes nothing.
				continue
			}
			for _, fact := range item.Product.Nutrients {
				amount, ok := parseAmount(fact.AmountPer100)
				if !ok {
					s.log.Warn("unparseable nutrient amount treated as zero",
						zap.String("product_id", fact.ProductID),
						zap.String("nutrient_id", fact.NutrientID))
				}
				totals[fact.NutrientID] += amount * item.Quantity / 100.0
			}
		}
	}

	var goalNutrients []models.GoalNutrient
	if err := config.DB.Where("goal_id = ?", goal.ID).Find(&goalNutrients).Error; err != nil {
		return nil, err
	}

	// All updates for one pass commit together; a failed pass leaves no
	// partial totals and is safe to rerun.
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		for i := range goalNutrients {
			gn := &goalNutrients[i]
			newVal := totals[gn.NutrientID]
			if gn.ConsumedAmount == newVal {
				continue
			}
			if err := tx.Model(&models.GoalNutrient{}).
				Where("id = ?", gn.ID).
				Update("consumed_amount", newVal).Error; err != nil {
				return err
			}
			gn.ConsumedAmount = newVal
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for nutrientID, total := range totals {
		if total != 0 {
			s.log.Debug("nutrient total",
				zap.String("nutrient_id", nutrientID),
				zap.Float64("total", total))
		}
	}
	s.log.Info("recalculation complete",
		zap.String("user_id", userID),
		zap.Int("eaten_meals", len(eaten)),
		zap.Int("goal_nutrients", len(goalNutrients)))

	return totals, nil
}

// parseAmount reads a stored fact amount. A missing amount is zero by
// definition; a present but unparseable one also contributes zero but is
// reported to the caller for logging.
func parseAmount(raw *string) (float64, bool) {
	if raw == nil {
		return 0, true
	}
	v := strings.TrimSpace(*raw)
	if v == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NutrientProgress pairs a tracked nutrient with where the user stands.
type NutrientProgress struct {
	GoalNutrientID string          `json:"goal_nutrient_id"`
	Nutrient       models.Nutrient `json:"nutrient"`
	TargetAmount   float64         `json:"target_amount"`
	ConsumedAmount float64         `json:"consumed_amount"`
	Percent        float64         `json:"percent"`
}

type GoalProgress struct {
	Goal      *models.Goal       `json:"goal"`
	Nutrients []NutrientProgress `json:"nutrients"`
}

func (s *GoalService) GetProgress(userID string) (*GoalProgress, error) {
	goal, err := s.GetGoal(userID)
	if err != nil {
		return nil, err
	}

	out := &GoalProgress{Goal: goal, Nutrients: make([]NutrientProgress, 0, len(goal.Nutrients))}
	for _, gn := range goal.Nutrients {
		out.Nutrients = append(out.Nutrients, NutrientProgress{
			GoalNutrientID: gn.ID,
			Nutrient:       gn.Nutrient,
			TargetAmount:   gn.TargetAmount,
			ConsumedAmount: gn.ConsumedAmount,
			Percent:        gn.ProgressPercent(),
		})
	}
	return out, nil
}
