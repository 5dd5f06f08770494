package services

import (
	"testing"
	"time"

	"github.com/S-A-M-22/BiteBuilder-sub000/config"
	"github.com/S-A-M-22/BiteBuilder-sub000/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	config.DB = db
	config.Log = zap.NewNop()
}

func strPtr(s string) *string { return &s }

func createUser(t *testing.T, username string) *models.Profile {
	t.Helper()
	u := &models.Profile{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
	}
	require.NoError(t, config.DB.Create(u).Error)
	return u
}

func createNutrient(t *testing.T, code, unit string) *models.Nutrient {
	t.Helper()
	n := &models.Nutrient{Code: code, Name: code, Unit: unit, Category: "macronutrient"}
	require.NoError(t, config.DB.Create(n).Error)
	return n
}

// createProduct stores a catalog product with one fact row per nutrient,
// keyed by nutrient ID with the raw per-100 amount string.
func createProduct(t *testing.T, barcode string, facts map[string]*string) *models.Product {
	t.Helper()
	p := &models.Product{Barcode: &barcode, Name: "product " + barcode}
	require.NoError(t, config.DB.Create(p).Error)
	for nutrientID, amount := range facts {
		fact := &models.ProductNutrient{
			ProductID:    p.ID,
			NutrientID:   nutrientID,
			AmountPer100: amount,
		}
		require.NoError(t, config.DB.Create(fact).Error)
	}
	return p
}

func createMeal(t *testing.T, userID string, items map[string]float64) *models.Meal {
	t.Helper()
	m := &models.Meal{UserID: userID, MealType: "lunch", DateTime: time.Now()}
	require.NoError(t, config.DB.Create(m).Error)
	for barcode, qty := range items {
		mi := &models.MealItem{MealID: m.ID, ProductBarcode: barcode, Quantity: qty}
		require.NoError(t, config.DB.Create(mi).Error)
	}
	return m
}

func eatMeal(t *testing.T, userID, mealID string) *models.EatenMeal {
	t.Helper()
	e := &models.EatenMeal{UserID: userID, MealID: mealID, EatenAt: time.Now()}
	require.NoError(t, config.DB.Create(e).Error)
	return e
}

func createGoalWithNutrient(t *testing.T, userID, nutrientID string, target float64) (*models.Goal, *models.GoalNutrient) {
	t.Helper()
	g := &models.Goal{UserID: userID}
	require.NoError(t, config.DB.Create(g).Error)
	gn := &models.GoalNutrient{GoalID: g.ID, NutrientID: nutrientID, TargetAmount: target}
	require.NoError(t, config.DB.Create(gn).Error)
	return g, gn
}

func reloadGoalNutrient(t *testing.T, id string) *models.GoalNutrient {
	t.Helper()
	var gn models.GoalNutrient
	require.NoError(t, config.DB.First(&gn, "id = ?", id).Error)
	return &gn
}
