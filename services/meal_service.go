// services/meal_service.go
package services

import (
	"errors"
	"time"

	"github.com/S-A-M-22/BiteBuilder-sub000/config"
	"github.com/S-A-M-22/BiteBuilder-sub000/models"

	"gorm.io/gorm"
)

type MealService struct {
	goals *GoalService
}

func NewMealService(goals *GoalService) *MealService {
	return &MealService{goals: goals}
}

type MealItemRequest struct {
	ProductBarcode string  `json:"product_barcode"`
	Quantity       float64 `json:"quantity"`
}

var mealTypes = map[string]bool{
	"breakfast": true, "lunch": true, "dinner": true, "snack": true,
}

func validateItems(items []MealItemRequest) error {
	for _, it := range items {
		if it.ProductBarcode == "" {
			return errors.New("product_barcode is required for every item")
		}
		if it.Quantity <= 0 {
			return errors.New("quantity must be positive")
		}
	}
	return nil
}

func (s *MealService) AddMeal(userID, mealType, name, notes string, dateTime time.Time, items []MealItemRequest) (*models.Meal, error) {
	if !mealTypes[mealType] {
		return nil, errors.New("meal_type must be one of breakfast, lunch, dinner, snack")
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	meal := &models.Meal{
		UserID:   userID,
		MealType: mealType,
		Name:     name,
		Notes:    notes,
		DateTime: dateTime,
	}
	if err := config.DB.Create(meal).Error; err != nil {
		return nil, err
	}

	for _, it := range items {
		mi := &models.MealItem{
			MealID:         meal.ID,
			ProductBarcode: it.ProductBarcode,
			Quantity:       it.Quantity,
		}
		if err := config.DB.Create(mi).Error; err != nil {
			return nil, err
		}
	}

	return s.GetMeal(userID, meal.ID)
}

func (s *MealService) GetMeal(userID, mealID string) (*models.Meal, error) {
	var meal models.Meal
	err := config.DB.
		Preload("Items.Product.Nutrients.Nutrient").
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&meal).Error
	if err != nil {
		return nil, err
	}
	return &meal, nil
}

func (s *MealService) ListMeals(userID string) ([]models.Meal, error) {
	var meals []models.Meal
	err := config.DB.
		Preload("Items.Product.Nutrients.Nutrient").
		Where("user_id = ?", userID).
		Order("date_time DESC").
		Find(&meals).Error
	return meals, err
}

func (s *MealService) UpdateMeal(userID, mealID, mealType, name, notes string, dateTime time.Time, items []MealItemRequest) (*models.Meal, error) {
	var meal models.Meal
	if err := config.DB.
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&meal).Error; err != nil {
		return nil, err
	}

	if mealType != "" {
		if !mealTypes[mealType] {
			return nil, errors.New("meal_type must be one of breakfast, lunch, dinner, snack")
		}
		meal.MealType = mealType
	}
	meal.Name = name
	meal.Notes = notes
	if !dateTime.IsZero() {
		meal.DateTime = dateTime
	}
	if err := config.DB.Save(&meal).Error; err != nil {
		return nil, err
	}

	if items != nil {
		if err := validateItems(items); err != nil {
			return nil, err
		}
		if err := config.DB.
			Where("meal_id = ?", meal.ID).
			Delete(&models.MealItem{}).Error; err != nil {
			return nil, err
		}
		for _, it := range items {
			mi := &models.MealItem{
				MealID:         meal.ID,
				ProductBarcode: it.ProductBarcode,
				Quantity:       it.Quantity,
			}
			if err := config.DB.Create(mi).Error; err != nil {
				return nil, err
			}
		}
		// Historical eaten events point at the template, so item edits
		// change past totals too.
		if _, err := s.goals.RecalculateGoalNutrients(userID); err != nil {
			return nil, err
		}
	}

	return s.GetMeal(userID, meal.ID)
}

func (s *MealService) DeleteMeal(userID, mealID string) error {
	var meal models.Meal
	if err := config.DB.
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&meal).Error; err != nil {
		return err
	}

	if err := config.DB.Where("meal_id = ?", meal.ID).Delete(&models.EatenMeal{}).Error; err != nil {
		return err
	}
	if err := config.DB.Where("meal_id = ?", meal.ID).Delete(&models.MealItem{}).Error; err != nil {
		return err
	}
	if err := config.DB.Delete(&meal).Error; err != nil {
		return err
	}

	_, err := s.goals.RecalculateGoalNutrients(userID)
	return err
}

// LogEatenMeal records a consumption event against a meal template and
// resyncs goal totals.
func (s *MealService) LogEatenMeal(userID, mealID string, eatenAt time.Time) (*models.EatenMeal, error) {
	var meal models.Meal
	if err := config.DB.First(&meal, "id = ?", mealID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("meal not found")
		}
		return nil, err
	}
	if meal.UserID != userID {
		return nil, errors.New("cannot log meals for another user")
	}

	event := &models.EatenMeal{
		UserID:  userID,
		MealID:  meal.ID,
		EatenAt: eatenAt,
	}
	if err := config.DB.Create(event).Error; err != nil {
		return nil, err
	}

	if _, err := s.goals.RecalculateGoalNutrients(userID); err != nil {
		return nil, err
	}

	var populated models.EatenMeal
	if err := config.DB.
		Preload("Meal.Items.Product.Nutrients.Nutrient").
		First(&populated, "id = ?", event.ID).Error; err != nil {
		return nil, err
	}
	return &populated, nil
}

func (s *MealService) ListEatenMeals(userID string) ([]models.EatenMeal, error) {
	var events []models.EatenMeal
	err := config.DB.
		Preload("Meal.Items.Product.Nutrients.Nutrient").
		Where("user_id = ?", userID).
		Order("eaten_at DESC").
		Find(&events).Error
	return events, err
}

func (s *MealService) DeleteEatenMeal(userID, eatenMealID string) error {
	res := config.DB.
		Where("id = ? AND user_id = ?", eatenMealID, userID).
		Delete(&models.EatenMeal{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	_, err := s.goals.RecalculateGoalNutrients(userID)
	return err
}
