package main

import (
	"log"

	"easyticket/config"
	"easyticket/database"
	"easyticket/handler"
	"easyticket/helper"
	"easyticket/router"
	"easyticket/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.ConfigOr("CORS_ORIGIN", "http://localhost:5173"),
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept, Stripe-Signature",
		AllowCredentials: true,
	}))

	database.ConnectDB()
	utils.ConnectCache()

	helper.StartExpirySweeper()

	stripe := handler.NewStripe()
	handler.Gateway = stripe
	router.SetupRoutes(app, stripe)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	log.Fatal(app.Listen(":" + config.ConfigOr("PORT", "8002")))
}
