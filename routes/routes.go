// routes/routes.go
package routes

import (
	"time"

	"github.com/S-A-M-22/BiteBuilder-sub000/controllers"
	"github.com/S-A-M-22/BiteBuilder-sub000/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/verify-otp", middlewares.PendingAuthMiddleware(), controllers.VerifyOTP)
		auth.GET("/verify", middlewares.PendingAuthMiddleware(), controllers.VerifySession)
		auth.POST("/logout", middlewares.PendingAuthMiddleware(), controllers.Logout)
		auth.POST("/reset-password", controllers.RequestPasswordReset)
		auth.POST("/reset-password/confirm", controllers.ConfirmPasswordReset)
	}

	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	{
		api.GET("/profile", controllers.GetProfile)
		api.PUT("/profile", controllers.UpdateProfile)

		api.GET("/nutrients", controllers.ListNutrients)

		api.GET("/products/search", controllers.SearchProducts)
		api.POST("/products/analyze", controllers.AnalyzeMealText)
		api.POST("/products", controllers.SaveProduct)
		api.GET("/products", controllers.ListSavedProducts)
		api.GET("/products/:barcode", controllers.GetProduct)
		api.DELETE("/products/:barcode", controllers.UnsaveProduct)

		api.POST("/meals", controllers.AddMeal)
		api.GET("/meals", controllers.ListMeals)
		api.GET("/meals/:id", controllers.GetMeal)
		api.PUT("/meals/:id", controllers.UpdateMeal)
		api.DELETE("/meals/:id", controllers.DeleteMeal)

		api.POST("/eaten-meals", controllers.LogEatenMeal)
		api.GET("/eaten-meals", controllers.ListEatenMeals)
		api.DELETE("/eaten-meals/:id", controllers.DeleteEatenMeal)

		api.GET("/goal", controllers.GetGoal)
		api.PUT("/goal", controllers.UpsertGoal)
		api.GET("/goal/progress", controllers.GetGoalProgress)
		api.POST("/goal/recalculate", controllers.RecalculateGoal)
		api.POST("/goal/nutrients", controllers.AddGoalNutrient)
		api.GET("/goal/nutrients", controllers.ListGoalNutrients)
		api.DELETE("/goal/nutrients/:id", controllers.RemoveGoalNutrient)
	}

	return r
}
