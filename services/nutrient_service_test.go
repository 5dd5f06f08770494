package services

import (
	"testing"

	"github.com/S-A-M-22/BiteBuilder-sub000/config"
	"github.com/S-A-M-22/BiteBuilder-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedNutrientsIsIdempotent(t *testing.T) {
	setupTestDB(t)

	created, updated, err := SeedNutrients()
	require.NoError(t, err)
	assert.Equal(t, len(seedNutrients), created)
	assert.Zero(t, updated)

	created, updated, err = SeedNutrients()
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Equal(t, len(seedNutrients), updated)

	var count int64
	require.NoError(t, config.DB.Model(&models.Nutrient{}).Count(&count).Error)
	assert.Equal(t, int64(len(seedNutrients)), count)
}

func TestSeedNutrientsRepairsDrift(t *testing.T) {
	setupTestDB(t)
	_, _, err := SeedNutrients()
	require.NoError(t, err)

	// someone edited reference data by hand
	require.NoError(t, config.DB.Model(&models.Nutrient{}).
		Where("code = ?", "protein").
		Update("unit", "oz").Error)

	_, _, err = SeedNutrients()
	require.NoError(t, err)

	var protein models.Nutrient
	require.NoError(t, config.DB.Where("code = ?", "protein").First(&protein).Error)
	assert.Equal(t, "g", protein.Unit)
}

func TestListNutrientsOrderAndVisibility(t *testing.T) {
	setupTestDB(t)
	_, _, err := SeedNutrients()
	require.NoError(t, err)

	require.NoError(t, config.DB.Model(&models.Nutrient{}).
		Where("code = ?", "folate").
		Update("is_visible", false).Error)

	nutrients, err := ListNutrients()
	require.NoError(t, err)
	assert.Len(t, nutrients, len(seedNutrients)-1)
	assert.Equal(t, "energy_kj", nutrients[0].Code)
	for i := 1; i < len(nutrients); i++ {
		assert.LessOrEqual(t, nutrients[i-1].DisplayOrder, nutrients[i].DisplayOrder)
	}
}
