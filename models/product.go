package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a global catalog entry. Rows come from Woolworths search results
// (optionally patched by FatSecret enrichment) or are user-added.
type Product struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	Barcode     *string `gorm:"size:32;uniqueIndex" json:"barcode"`
	Name        string  `gorm:"size:255;not null;index" json:"name"`
	Brand       string  `gorm:"size:255;index" json:"brand"`
	Description string  `json:"description,omitempty"`
	Size        string  `gorm:"size:100" json:"size,omitempty"`

	PriceCurrent *float64 `json:"price_current,omitempty"`
	PriceWas     *float64 `json:"price_was,omitempty"`
	IsOnSpecial  bool     `gorm:"default:false" json:"is_on_special"`

	CupPriceValue *float64 `json:"cup_price_value,omitempty"`
	CupPriceUnit  string   `gorm:"size:16" json:"cup_price_unit,omitempty"`

	ImageURL   string `json:"image_url,omitempty"`
	ProductURL string `json:"product_url,omitempty"`
	HealthStar string `gorm:"size:10" json:"health_star,omitempty"`
	Allergens  string `json:"allergens,omitempty"`

	ServingSizeValue *float64 `json:"serving_size_value,omitempty"`
	ServingSizeUnit  string   `gorm:"size:8" json:"serving_size_unit,omitempty"`
	ServingsPerPack  *float64 `json:"servings_per_pack,omitempty"`

	// per_100g | per_100ml | per_serving
	NutritionBasis string `gorm:"size:16" json:"nutrition_basis,omitempty"`

	// woolworths | openfoodfacts | user_added
	PrimarySource string `gorm:"size:32;default:woolworths" json:"primary_source"`

	LastEnrichedAt     *time.Time `json:"last_enriched_at,omitempty"`
	EnrichmentAttempts uint       `gorm:"default:0" json:"enrichment_attempts"`

	Nutrients []ProductNutrient `gorm:"constraint:OnDelete:CASCADE" json:"nutrients,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ProductNutrient is one nutrient fact row, at most one per (product,
// nutrient). Amounts are kept as the raw strings the source supplied; the
// aggregation pass parses them and treats anything unparseable as zero.
type ProductNutrient struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID  string `gorm:"type:uuid;not null;uniqueIndex:idx_product_nutrient" json:"product_id"`
	NutrientID string `gorm:"type:uuid;not null;uniqueIndex:idx_product_nutrient;index" json:"nutrient_id"`

	AmountPer100     *string `gorm:"size:32" json:"amount_per_100"`
	AmountPerServing *string `gorm:"size:32" json:"amount_per_serving"`

	Nutrient Nutrient `json:"nutrient,omitempty"`
}

func (pn *ProductNutrient) BeforeCreate(tx *gorm.DB) error {
	if pn.ID == "" {
		pn.ID = uuid.NewString()
	}
	return nil
}

// SavedProduct links a user to a global product ("My Foods" bookmark).
type SavedProduct struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_saved_user_product" json:"user_id"`
	ProductID string    `gorm:"type:uuid;not null;uniqueIndex:idx_saved_user_product" json:"product_id"`
	SavedAt   time.Time `gorm:"autoCreateTime" json:"saved_at"`
}

func (sp *SavedProduct) BeforeCreate(tx *gorm.DB) error {
	if sp.ID == "" {
		sp.ID = uuid.NewString()
	}
	return nil
}
