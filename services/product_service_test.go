package services

import (
	"testing"

	"github.com/S-A-M-22/BiteBuilder-sub000/config"
	"github.com/S-A-M-22/BiteBuilder-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func float64Ptr(v float64) *float64 { return &v }

func normalizedFixture(barcode string) NormalizedProduct {
	return NormalizedProduct{
		Barcode:       barcode,
		Name:          "Greek Yoghurt 1kg",
		Brand:         "Farmers Own",
		PriceCurrent:  float64Ptr(6.50),
		PrimarySource: "woolworths",
		Nutrition: map[string]*NutritionNode{
			"protein": {
				Label:  "Protein",
				Per100: &NutrientValue{Value: float64Ptr(9.6), Unit: "g"},
			},
			"sodium": {
				Label:  "Sodium",
				Per100: &NutrientValue{Value: float64Ptr(45), Unit: "mg"},
			},
			"unmapped-thing": {
				Label:  "Mystery",
				Per100: &NutrientValue{Value: float64Ptr(1), Unit: "g"},
			},
		},
	}
}

func TestSaveProductCreatesFactsAndBookmark(t *testing.T) {
	setupTestDB(t)
	user := createUser(t, "shopper")
	_, _, err := SeedNutrients()
	require.NoError(t, err)

	product, err := NewProductService().SaveProduct(user.ID, normalizedFixture("9300000000001"))
	require.NoError(t, err)
	require.NotNil(t, product.Barcode)
	assert.Equal(t, "9300000000001", *product.Barcode)

	// two mapped keys become facts, the unmapped one is dropped
	require.Len(t, product.Nutrients, 2)
	byCode := map[string]models.ProductNutrient{}
	for _, fact := range product.Nutrients {
		byCode[fact.Nutrient.Code] = fact
	}
	require.Contains(t, byCode, "protein")
	require.NotNil(t, byCode["protein"].AmountPer100)
	assert.Equal(t, "9.6", *byCode["protein"].AmountPer100)
	require.Contains(t, byCode, "sodium")

	var saved int64
	require.NoError(t, config.DB.Model(&models.SavedProduct{}).
		Where("user_id = ?", user.ID).Count(&saved).Error)
	assert.Equal(t, int64(1), saved)
}

func TestSaveProductUpsertsByBarcode(t *testing.T) {
	setupTestDB(t)
	user := createUser(t, "resaver")
	_, _, err := SeedNutrients()
	require.NoError(t, err)
	svc := NewProductService()

	first, err := svc.SaveProduct(user.ID, normalizedFixture("9300000000002"))
	require.NoError(t, err)

	updated := normalizedFixture("9300000000002")
	updated.Name = "Greek Yoghurt 1kg (new recipe)"
	updated.Nutrition["protein"].Per100.Value = float64Ptr(10.2)
	second, err := svc.SaveProduct(user.ID, updated)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same row, not a duplicate")
	assert.Equal(t, "Greek Yoghurt 1kg (new recipe)", second.Name)

	var products, links int64
	require.NoError(t, config.DB.Model(&models.Product{}).Count(&products).Error)
	require.NoError(t, config.DB.Model(&models.SavedProduct{}).Count(&links).Error)
	assert.Equal(t, int64(1), products)
	assert.Equal(t, int64(1), links)

	for _, fact := range second.Nutrients {
		if fact.Nutrient.Code == "protein" {
			require.NotNil(t, fact.AmountPer100)
			assert.Equal(t, "10.2", *fact.AmountPer100)
		}
	}
}

func TestSaveProductStockcodeFallback(t *testing.T) {
	setupTestDB(t)
	user := createUser(t, "stockcoder")

	item := NormalizedProduct{Stockcode: "123456", Name: "Loose Bananas"}
	product, err := NewProductService().SaveProduct(user.ID, item)
	require.NoError(t, err)
	require.NotNil(t, product.Barcode)
	assert.Equal(t, "WW-STOCK-123456", *product.Barcode)

	_, err = NewProductService().SaveProduct(user.ID, NormalizedProduct{Name: "No identity"})
	assert.Error(t, err)
}

func TestUnsaveKeepsProductReferencedByMeals(t *testing.T) {
	setupTestDB(t)
	user := createUser(t, "keeper")
	_, _, err := SeedNutrients()
	require.NoError(t, err)
	svc := NewProductService()

	product, err := svc.SaveProduct(user.ID, normalizedFixture("9300000000003"))
	require.NoError(t, err)
	createMeal(t, user.ID, map[string]float64{"9300000000003": 100})

	require.NoError(t, svc.Unsave(user.ID, "9300000000003"))

	// bookmark gone, catalog row kept because a meal still points at it
	var links int64
	require.NoError(t, config.DB.Model(&models.SavedProduct{}).
		Where("product_id = ?", product.ID).Count(&links).Error)
	assert.Zero(t, links)
	_, err = svc.GetByBarcode("9300000000003")
	assert.NoError(t, err)
}

func TestUnsaveDeletesOrphanedProduct(t *testing.T) {
	setupTestDB(t)
	user := createUser(t, "orphaner")
	_, _, err := SeedNutrients()
	require.NoError(t, err)
	svc := NewProductService()

	_, err = svc.SaveProduct(user.ID, normalizedFixture("9300000000004"))
	require.NoError(t, err)

	require.NoError(t, svc.Unsave(user.ID, "9300000000004"))
	_, err = svc.GetByBarcode("9300000000004")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var facts int64
	require.NoError(t, config.DB.Model(&models.ProductNutrient{}).Count(&facts).Error)
	assert.Zero(t, facts)

	err = svc.Unsave(user.ID, "9300000000004")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
