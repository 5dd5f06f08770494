package controllers

import (
	"github.com/S-A-M-22/BiteBuilder-sub000/services"

	"github.com/gin-gonic/gin"
)

func ListNutrients(c *gin.Context) {
	nutrients, err := services.ListNutrients()
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, nutrients)
}
