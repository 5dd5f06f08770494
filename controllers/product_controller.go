package controllers

import (
	"errors"
	"strconv"

	"github.com/S-A-M-22/BiteBuilder-sub000/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SearchProducts proxies the retailer search, optionally enriching results
// with FatSecret readings when ?enrich=true.
func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(400, gin.H{"error": "query parameter q is required"})
		return
	}

	results, err := services.NewWooliesService().Search(c.Request.Context(), query)
	if err != nil {
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}

	if enrich, _ := strconv.ParseBool(c.Query("enrich")); enrich {
		fs := services.NewFatSecretService()
		for i := range results {
			// enrichment is best effort, a FatSecret outage should not
			// break search
			_ = fs.EnrichProduct(c.Request.Context(), &results[i])
		}
	}

	c.JSON(200, gin.H{"query": query, "count": len(results), "results": results})
}

func SaveProduct(c *gin.Context) {
	var body services.NormalizedProduct
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	product, err := services.NewProductService().SaveProduct(c.GetString("userID"), body)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	c.JSON(201, product)
}

func ListSavedProducts(c *gin.Context) {
	products, err := services.NewProductService().ListSaved(c.GetString("userID"))
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, products)
}

func GetProduct(c *gin.Context) {
	product, err := services.NewProductService().GetByBarcode(c.Param("barcode"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "product not found"})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, product)
}

func UnsaveProduct(c *gin.Context) {
	err := services.NewProductService().Unsave(c.GetString("userID"), c.Param("barcode"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "saved product not found"})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"message": "product removed"})
}

// AnalyzeMealText runs a free-text description through FatSecret NLP and
// returns the canonical nutrient reading.
func AnalyzeMealText(c *gin.Context) {
	var body struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if body.Text == "" {
		c.JSON(400, gin.H{"error": "text is required"})
		return
	}

	data, err := services.NewFatSecretService().AnalyzeMealText(c.Request.Context(), body.Text)
	if err != nil {
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}

	nutrients, provenance := services.ExtractNutrients(data)
	c.JSON(200, gin.H{"nutrients": nutrients, "source_foods": provenance})
}
