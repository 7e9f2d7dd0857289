package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zulfuqarov/CarsTrack/controllers"
	"github.com/zulfuqarov/CarsTrack/middlewares"
	"github.com/zulfuqarov/CarsTrack/storage"
)

// Register wires all HTTP routes.
func Register(app *fiber.App, store storage.Storage, maxUploadSize int64) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/auth/register", controllers.Register)
	api.Post("/auth/login", controllers.Login)
	api.Get("/auth/me", middlewares.IsAuthenticatedHeader(), controllers.Me)

	// Public reads (the tracking site needs no account).
	// The customerId lookup must be registered before the :id route.
	api.Get("/customers", controllers.GetCustomers)
	api.Get("/customers/customerId/:code", controllers.GetCustomerByCode)
	api.Get("/customers/:id", controllers.GetCustomer)

	// Admin mutations (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to the request TX)
	protected.Use(middlewares.Idempotency())

	// Then the per-request transaction
	protected.Use(middlewares.Tx())

	protected.Post("/customers", controllers.CreateCustomer)
	protected.Put("/customers/:id", controllers.UpdateCustomer)
	protected.Delete("/customers/:id", controllers.DeleteCustomer(store))

	protected.Post("/upload/:category", controllers.UploadImages(store, maxUploadSize))
}
