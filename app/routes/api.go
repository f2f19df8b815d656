package routes

import (
	"net/http"

	"github.com/shashiranjanraj/motomart/app/controllers"
	"github.com/shashiranjanraj/motomart/app/services"
	"github.com/shashiranjanraj/motomart/pkg/metrics"
	"github.com/shashiranjanraj/motomart/pkg/middleware"
	"github.com/shashiranjanraj/motomart/pkg/response"
	"github.com/shashiranjanraj/motomart/pkg/router"
)

// Deps carries the service layer into route registration.
type Deps struct {
	Auth    *services.AuthService
	Product *services.ProductService
	Order   *services.OrderService
	Payment *services.PaymentService

	// Ready reports whether the backing store is reachable; used by the
	// readiness endpoint.
	Ready func() error
}

// RegisterAPI mounts every route of the application onto r.
func RegisterAPI(r *router.Router, d Deps) {
	authController := controllers.NewAuthController(d.Auth)
	productController := controllers.NewProductController(d.Product)
	orderController := controllers.NewOrderController(d.Order)
	invoiceController := controllers.NewInvoiceController(d.Order)
	paymentController := controllers.NewPaymentController(d.Payment)

	authed := middleware.Auth(d.Auth)

	api := r.Group("/api")

	// Catalog: reads are public, mutations need a bearer token.
	api.Get("/products", "products.index", productController.Index)
	products := api.Group("/products", authed)
	products.Post("", "products.store", productController.Store)
	products.Put("/{id}", "products.update", productController.Update)
	products.Delete("/{id}", "products.destroy", productController.Destroy)

	api.Post("/users/signup", "users.signup", authController.Signup)
	api.Post("/users/login", "users.login", authController.Login)
	users := api.Group("/users", authed)
	users.Put("/profile", "users.profile", authController.UpdateProfile)
	users.Put("/password", "users.password", authController.ChangePassword)
	users.Delete("", "users.destroy", authController.DeleteAccount)

	orders := api.Group("/orders", authed)
	orders.Post("", "orders.store", orderController.Store)
	orders.Get("", "orders.index", orderController.Index)
	orders.Put("/{id}/pay", "orders.pay", orderController.Pay)
	orders.Delete("/{id}", "orders.cancel", orderController.Cancel)

	invoices := api.Group("/invoice", authed)
	invoices.Get("/{id}", "invoice.show", invoiceController.Show)

	payment := api.Group("/payment", authed)
	payment.Post("/create-payment-intent", "payment.intent", paymentController.CreateIntent)

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/health/live", "health.live", func(w http.ResponseWriter, _ *http.Request) {
		response.Message(w, "ok")
	})
	r.Get("/health/ready", "health.ready", func(w http.ResponseWriter, _ *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(); err != nil {
				response.Error(w, http.StatusServiceUnavailable, "store unavailable")
				return
			}
		}
		response.Message(w, "ok")
	})
}
