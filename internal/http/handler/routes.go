package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"github.com/jasonhew98/e-commerce-service/internal/http/middleware"
	"github.com/jasonhew98/e-commerce-service/internal/service"
)

// Services groups the use cases exposed over HTTP.
type Services struct {
	Accounts  service.AccountService
	Users     service.UserService
	Products  service.ProductService
	Onboard   service.OnboardService
	Drive     service.DriveService
	Microsoft service.MicrosoftService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers only bind and validate input; behavior lives in the services.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api", middleware.Actor())

	account := api.Group("/account")
	account.Post("/", AddAccount(svc.Accounts))
	account.Get("/", ListAccounts(svc.Accounts))
	account.Get("/pageSize", AccountPageSize(svc.Accounts))
	account.Get("/detail", GetAccount(svc.Accounts))
	account.Patch("/", UpdateAccount(svc.Accounts))

	user := api.Group("/user")
	user.Post("/", AddUser(svc.Users))
	user.Get("/", ListUsers(svc.Users))
	user.Get("/pageSize", UserPageSize(svc.Users))
	user.Get("/detail", GetUser(svc.Users))
	user.Patch("/", UpdateUser(svc.Users))

	product := api.Group("/product")
	product.Post("/", AddProduct(svc.Products))
	product.Get("/", ListProducts(svc.Products))
	product.Get("/pageSize", ProductPageSize(svc.Products))
	product.Get("/detail", GetProduct(svc.Products))
	product.Patch("/", UpdateProduct(svc.Products))

	onboard := api.Group("/onboard")
	onboard.Post("/signup", SignUp(svc.Onboard))
	onboard.Post("/login", Login(svc.Onboard))

	google := api.Group("/internal/google")
	google.Post("/download", DownloadDriveFile(svc.Drive))
	google.Post("/refresh", RefreshAccessToken(svc.Drive))

	microsoft := api.Group("/internal/microsoft")
	microsoft.Post("/refresh", RefreshMicrosoftAccessToken(svc.Microsoft))
}
