// services/nutrient_service.go
package services

import (
	"errors"

	"github.com/S-A-M-22/BiteBuilder-sub000/config"
	"github.com/S-A-M-22/BiteBuilder-sub000/models"

	"gorm.io/gorm"
)

// seedNutrients is the canonical reference set. Codes are stable keys; the
// catalog and goal layers look nutrients up by code, never by name.
var seedNutrients = []models.Nutrient{
	// Macronutrients
	{Code: "energy_kj", Name: "Energy (kJ)", Unit: "kJ", Category: "macronutrient"},
	{Code: "energy_kcal", Name: "Energy (kcal)", Unit: "kcal", Category: "macronutrient"},
	{Code: "protein", Name: "Protein", Unit: "g", Category: "macronutrient"},
	{Code: "fat_total", Name: "Total Fat", Unit: "g", Category: "macronutrient"},
	{Code: "fat_saturated", Name: "Saturated Fat", Unit: "g", Category: "macronutrient"},
	{Code: "carbohydrate", Name: "Carbohydrates", Unit: "g", Category: "macronutrient"},
	{Code: "sugars", Name: "Sugars", Unit: "g", Category: "macronutrient"},
	{Code: "fiber", Name: "Dietary Fiber", Unit: "g", Category: "macronutrient"},

	// Minerals
	{Code: "sodium", Name: "Sodium", Unit: "mg", Category: "mineral"},
	{Code: "calcium", Name: "Calcium", Unit: "mg", Category: "mineral"},
	{Code: "iron", Name: "Iron", Unit: "mg", Category: "mineral"},
	{Code: "magnesium", Name: "Magnesium", Unit: "mg", Category: "mineral"},
	{Code: "potassium", Name: "Potassium", Unit: "mg", Category: "mineral"},
	{Code: "phosphorus", Name: "Phosphorus", Unit: "mg", Category: "mineral"},
	{Code: "zinc", Name: "Zinc", Unit: "mg", Category: "mineral"},

	// Vitamins
	{Code: "vitamin_a", Name: "Vitamin A", Unit: "mcg", Category: "vitamin"},
	{Code: "vitamin_c", Name: "Vitamin C", Unit: "mg", Category: "vitamin"},
	{Code: "vitamin_d", Name: "Vitamin D", Unit: "mcg", Category: "vitamin"},
	{Code: "vitamin_b6", Name: "Vitamin B6", Unit: "mg", Category: "vitamin"},
	{Code: "vitamin_b12", Name: "Vitamin B12", Unit: "mcg", Category: "vitamin"},
	{Code: "vitamin_e", Name: "Vitamin E", Unit: "mg", Category: "vitamin"},
	{Code: "vitamin_k", Name: "Vitamin K", Unit: "mcg", Category: "vitamin"},
	{Code: "folate", Name: "Folate", Unit: "mcg", Category: "vitamin"},
}

// SeedNutrients upserts the canonical nutrient definitions. Safe to run on
// every boot.
func SeedNutrients() (created, updated int, err error) {
	for i, seed := range seedNutrients {
		seed.DisplayOrder = uint(i)
		seed.IsVisible = true

		var existing models.Nutrient
		findErr := config.DB.Where("code = ?", seed.Code).First(&existing).Error
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			if err := config.DB.Create(&seed).Error; err != nil {
				return created, updated, err
			}
			created++
			continue
		}
		if findErr != nil {
			return created, updated, findErr
		}

		existing.Name = seed.Name
		existing.Unit = seed.Unit
		existing.Category = seed.Category
		existing.DisplayOrder = seed.DisplayOrder
		if err := config.DB.Save(&existing).Error; err != nil {
			return created, updated, err
		}
		updated++
	}
	return created, updated, nil
}

func ListNutrients() ([]models.Nutrient, error) {
	var nutrients []models.Nutrient
	err := config.DB.
		Where("is_visible = ?", true).
		Order("display_order, name").
		Find(&nutrients).Error
	return nutrients, err
}
