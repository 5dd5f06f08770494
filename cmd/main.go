// cmd/main.go
package main

import (
	"os"

	"github.com/S-A-M-22/BiteBuilder-sub000/config"
	"github.com/S-A-M-22/BiteBuilder-sub000/routes"
	"github.com/S-A-M-22/BiteBuilder-sub000/services"

	"go.uber.org/zap"
)

func main() {
	config.InitLogger()
	config.InitDB()
	config.InitRedis()

	created, updated, err := services.SeedNutrients()
	if err != nil {
		config.Log.Fatal("failed to seed nutrients", zap.Error(err))
	}
	config.Log.Info("nutrient reference seeded",
		zap.Int("created", created),
		zap.Int("updated", updated))

	r := routes.SetupRouter()

	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}
	config.Log.Info("server starting", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		config.Log.Fatal("server exited", zap.Error(err))
	}
}
