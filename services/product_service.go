// services/product_service.go
package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/S-A-M-22/BiteBuilder-sub000/config"
	"github.com/S-A-M-22/BiteBuilder-sub000/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// canonicalCodeMap binds normalized nutrition keys to the seeded nutrient
// codes. Keys outside this map never become fact rows.
var canonicalCodeMap = map[string]string{
	"energy-kj":            "energy_kj",
	"energy-kcal":          "energy_kcal",
	"protein":              "protein",
	"fat":                  "fat_total",
	"fat-saturated":        "fat_saturated",
	"carbohydrates":        "carbohydrate",
	"carbohydrates-sugars": "sugars",
	"fiber":                "fiber",
	"sodium":               "sodium",
	"calcium":              "calcium",
	"potassium":            "potassium",
	"cholesterol":          "cholesterol",
	"iron":                 "iron",
	"magnesium":            "magnesium",
	"vitamin-c":            "vitamin_c",
	"vitamin-d":            "vitamin_d",
	"vitamin-b12":          "vitamin_b12",
	"zinc":                 "zinc",
}

type ProductService struct {
	log *zap.Logger
}

func NewProductService() *ProductService {
	return &ProductService{log: config.Log}
}

// SaveProduct upserts the global product for a normalized payload, rebuilds
// its nutrient fact rows and bookmarks it for the user.
func (s *ProductService) SaveProduct(userID string, item NormalizedProduct) (*models.Product, error) {
	if item.Name == "" {
		return nil, errors.New("product name is required")
	}

	barcode := item.Barcode
	if barcode == "" {
		if item.Stockcode == "" {
			return nil, errors.New("product has no barcode or stockcode")
		}
		barcode = "WW-STOCK-" + item.Stockcode
	}

	now := time.Now()
	var product models.Product
	err := config.DB.Where("barcode = ?", barcode).First(&product).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	created := errors.Is(err, gorm.ErrRecordNotFound)

	product.Barcode = &barcode
	product.Name = item.Name
	product.Brand = item.Brand
	product.Description = item.Description
	product.Size = item.Size
	product.PriceCurrent = item.PriceCurrent
	product.PriceWas = item.PriceWas
	product.IsOnSpecial = item.IsOnSpecial
	product.CupPriceValue = item.CupPriceValue
	product.CupPriceUnit = item.CupPriceUnit
	product.ImageURL = item.ImageURL
	product.ProductURL = item.ProductURL
	product.HealthStar = item.HealthStar
	product.Allergens = item.AllergensRaw
	product.ServingSizeValue = item.ServingSizeValue
	product.ServingSizeUnit = item.ServingSizeUnit
	product.ServingsPerPack = item.ServingsPerPack
	product.NutritionBasis = item.NutritionBasis
	if item.PrimarySource != "" {
		product.PrimarySource = item.PrimarySource
	}
	product.LastEnrichedAt = &now
	if item.Enrichment != nil {
		product.EnrichmentAttempts++
	}

	if created {
		if err := config.DB.Create(&product).Error; err != nil {
			return nil, err
		}
	} else {
		if err := config.DB.Save(&product).Error; err != nil {
			return nil, err
		}
	}

	// rebuild fact rows from scratch
	if err := config.DB.Where("product_id = ?", product.ID).Delete(&models.ProductNutrient{}).Error; err != nil {
		return nil, err
	}
	for key, node := range item.Nutrition {
		if node == nil {
			continue
		}
		code, ok := canonicalCodeMap[key]
		if !ok {
			continue
		}

		var nutrient models.Nutrient
		err := config.DB.Where("code = ?", code).First(&nutrient).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			label := node.Label
			if label == "" {
				label = code
			}
			unit := "g"
			if node.Per100 != nil && node.Per100.Unit != "" {
				unit = node.Per100.Unit
			}
			nutrient = models.Nutrient{
				Code:     code,
				Name:     label,
				Unit:     unit,
				Category: "macronutrient",
			}
			if err := config.DB.Create(&nutrient).Error; err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}

		per100 := formatAmount(node.Per100)
		perServing := formatAmount(node.PerServing)
		if per100 == nil && perServing == nil {
			continue
		}

		fact := models.ProductNutrient{
			ProductID:        product.ID,
			NutrientID:       nutrient.ID,
			AmountPer100:     per100,
			AmountPerServing: perServing,
		}
		if err := config.DB.Create(&fact).Error; err != nil {
			return nil, err
		}
	}

	link := models.SavedProduct{UserID: userID, ProductID: product.ID}
	err = config.DB.Where("user_id = ? AND product_id = ?", userID, product.ID).First(&models.SavedProduct{}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := config.DB.Create(&link).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	s.log.Info("product saved",
		zap.String("barcode", barcode),
		zap.String("user_id", userID),
		zap.Bool("created", created))

	return s.GetByBarcode(barcode)
}

func formatAmount(v *NutrientValue) *string {
	if v == nil || v.Value == nil {
		return nil
	}
	out := strconv.FormatFloat(*v.Value, 'f', -1, 64)
	return &out
}

// ListSaved returns the user's bookmarked products, most recently updated
// first.
func (s *ProductService) ListSaved(userID string) ([]models.Product, error) {
	var products []models.Product
	err := config.DB.
		Preload("Nutrients.Nutrient").
		Joins("JOIN saved_products ON saved_products.product_id = products.id").
		Where("saved_products.user_id = ?", userID).
		Order("products.updated_at DESC").
		Find(&products).Error
	return products, err
}

func (s *ProductService) GetByBarcode(barcode string) (*models.Product, error) {
	var product models.Product
	err := config.DB.
		Preload("Nutrients.Nutrient").
		Where("barcode = ?", barcode).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Unsave removes the user's bookmark. The global product stays unless nobody
// else has it saved, in which case it and its fact rows go too.
func (s *ProductService) Unsave(userID, barcode string) error {
	product, err := s.GetByBarcode(barcode)
	if err != nil {
		return err
	}

	res := config.DB.
		Where("user_id = ? AND product_id = ?", userID, product.ID).
		Delete(&models.SavedProduct{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	var remaining int64
	if err := config.DB.Model(&models.SavedProduct{}).
		Where("product_id = ?", product.ID).
		Count(&remaining).Error; err != nil {
		return err
	}
	if remaining > 0 {
		return nil
	}

	var inMeals int64
	if err := config.DB.Model(&models.MealItem{}).
		Where("product_barcode = ?", barcode).
		Count(&inMeals).Error; err != nil {
		return err
	}
	if inMeals > 0 {
		// still referenced by meal templates, keep the catalog row
		return nil
	}

	return s.DeleteProduct(product.ID)
}

// DeleteProduct removes a product with its fact rows and bookmarks.
func (s *ProductService) DeleteProduct(productID string) error {
	if err := config.DB.Where("product_id = ?", productID).Delete(&models.ProductNutrient{}).Error; err != nil {
		return fmt.Errorf("failed to delete nutrient facts: %w", err)
	}
	if err := config.DB.Where("product_id = ?", productID).Delete(&models.SavedProduct{}).Error; err != nil {
		return err
	}
	return config.DB.Delete(&models.Product{}, "id = ?", productID).Error
}
