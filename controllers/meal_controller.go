package controllers

import (
	"errors"
	"time"

	"github.com/S-A-M-22/BiteBuilder-sub000/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func newMealService() *services.MealService {
	return services.NewMealService(services.NewGoalService())
}

func AddMeal(c *gin.Context) {
	var body struct {
		MealType string                     `json:"meal_type"`
		Name     string                     `json:"name"`
		Notes    string                     `json:"notes"`
		DateTime time.Time                  `json:"date_time"`
		Items    []services.MealItemRequest `json:"items"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	meal, err := newMealService().AddMeal(c.GetString("userID"), body.MealType, body.Name, body.Notes, body.DateTime, body.Items)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	c.JSON(201, meal)
}

func GetMeal(c *gin.Context) {
	meal, err := newMealService().GetMeal(c.GetString("userID"), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "meal not found"})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, meal)
}

func ListMeals(c *gin.Context) {
	meals, err := newMealService().ListMeals(c.GetString("userID"))
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, meals)
}

func UpdateMeal(c *gin.Context) {
	var body struct {
		MealType string                     `json:"meal_type"`
		Name     string                     `json:"name"`
		Notes    string                     `json:"notes"`
		DateTime time.Time                  `json:"date_time"`
		Items    []services.MealItemRequest `json:"items"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	meal, err := newMealService().UpdateMeal(c.GetString("userID"), c.Param("id"), body.MealType, body.Name, body.Notes, body.DateTime, body.Items)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "meal not found"})
			return
		}
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, meal)
}

func DeleteMeal(c *gin.Context) {
	if err := newMealService().DeleteMeal(c.GetString("userID"), c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "meal not found"})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"message": "meal deleted"})
}

func LogEatenMeal(c *gin.Context) {
	var body struct {
		MealID  string    `json:"meal_id"`
		EatenAt time.Time `json:"eaten_at"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if body.EatenAt.IsZero() {
		body.EatenAt = time.Now()
	}

	event, err := newMealService().LogEatenMeal(c.GetString("userID"), body.MealID, body.EatenAt)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	c.JSON(201, event)
}

func ListEatenMeals(c *gin.Context) {
	events, err := newMealService().ListEatenMeals(c.GetString("userID"))
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, events)
}

func DeleteEatenMeal(c *gin.Context) {
	if err := newMealService().DeleteEatenMeal(c.GetString("userID"), c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "eaten meal not found"})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"message": "eaten meal deleted"})
}
