package controllers

import (
	"errors"

	"github.com/S-A-M-22/BiteBuilder-sub000/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func GetGoal(c *gin.Context) {
	goal, err := services.NewGoalService().GetGoal(c.GetString("userID"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "no goal set"})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, goal)
}

func UpsertGoal(c *gin.Context) {
	var body services.GoalInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	goal, err := services.NewGoalService().UpsertGoal(c.GetString("userID"), body)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, goal)
}

func AddGoalNutrient(c *gin.Context) {
	var body struct {
		NutrientID   string  `json:"nutrient_id"`
		TargetAmount float64 `json:"target_amount"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	gn, err := services.NewGoalService().AddGoalNutrient(c.GetString("userID"), body.NutrientID, body.TargetAmount)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "goal or nutrient not found"})
			return
		}
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	c.JSON(201, gn)
}

func ListGoalNutrients(c *gin.Context) {
	rows, err := services.NewGoalService().ListGoalNutrients(c.GetString("userID"))
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, rows)
}

func RemoveGoalNutrient(c *gin.Context) {
	err := services.NewGoalService().RemoveGoalNutrient(c.GetString("userID"), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "goal nutrient not found"})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"message": "goal nutrient removed"})
}

func GetGoalProgress(c *gin.Context) {
	progress, err := services.NewGoalService().GetProgress(c.GetString("userID"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "no goal set"})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, progress)
}

// RecalculateGoal forces a full resync of consumed totals from eaten history.
func RecalculateGoal(c *gin.Context) {
	totals, err := services.NewGoalService().RecalculateGoalNutrients(c.GetString("userID"))
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"totals": totals})
}
