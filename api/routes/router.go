package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/boutique2v/commerce-backend/api/controllers"
	webhookcontrollers "github.com/boutique2v/commerce-backend/api/controllers/webhooks"
	"github.com/boutique2v/commerce-backend/api/middleware"
	adminsvc "github.com/boutique2v/commerce-backend/internal/admin"
	cartsvc "github.com/boutique2v/commerce-backend/internal/cart"
	categorysvc "github.com/boutique2v/commerce-backend/internal/categories"
	chatsvc "github.com/boutique2v/commerce-backend/internal/chats"
	invoicesvc "github.com/boutique2v/commerce-backend/internal/invoices"
	ordersvc "github.com/boutique2v/commerce-backend/internal/orders"
	paymentsvc "github.com/boutique2v/commerce-backend/internal/payments"
	productsvc "github.com/boutique2v/commerce-backend/internal/products"
	settingsvc "github.com/boutique2v/commerce-backend/internal/settings"
	uploadsvc "github.com/boutique2v/commerce-backend/internal/uploads"
	usersvc "github.com/boutique2v/commerce-backend/internal/users"
	wishlistsvc "github.com/boutique2v/commerce-backend/internal/wishlist"
	"github.com/boutique2v/commerce-backend/pkg/config"
	"github.com/boutique2v/commerce-backend/pkg/db"
	"github.com/boutique2v/commerce-backend/pkg/logger"
	"github.com/boutique2v/commerce-backend/pkg/metrics"
	pkgredis "github.com/boutique2v/commerce-backend/pkg/redis"
	pkgstripe "github.com/boutique2v/commerce-backend/pkg/stripe"
)

const adminRole = "admin"

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger

	DB       db.Pinger
	Redis    *pkgredis.Client
	Registry *prometheus.Registry

	Stripe       *pkgstripe.Client
	StripeGuard  *paymentsvc.IdempotencyGuard
	HTTPMetrics  *metrics.HTTPMetrics
	StorageRoot  string
	UploadPrefix string

	Users      usersvc.Service
	Products   productsvc.Service
	Categories categorysvc.Service
	Cart       cartsvc.Service
	Wishlist   wishlistsvc.Service
	Orders     ordersvc.Service
	Payments   paymentsvc.Service
	Uploads    uploadsvc.Service
	Chats      chatsvc.Service
	Settings   settingsvc.Service
	Invoices   invoicesvc.Service
	Admin      adminsvc.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.RateLim.LoginWindow,
		cfg.RateLim.LoginIPLimit,
		cfg.RateLim.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.RateLim.RegisterWindow,
		cfg.RateLim.RegisterIPLimit,
		cfg.RateLim.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	if deps.StorageRoot != "" {
		prefix := deps.UploadPrefix
		if prefix == "" {
			prefix = "/uploads"
		}
		fs := http.StripPrefix(prefix+"/", http.FileServer(http.Dir(deps.StorageRoot)))
		r.Get(prefix+"/*", fs.ServeHTTP)
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(deps.Payments, deps.Stripe, deps.StripeGuard, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Users, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Users, logg))
	})

	// Public storefront reads.
	r.Route("/api/v1/store", func(r chi.Router) {
		r.Get("/", controllers.StoreInfo(deps.Settings, logg))
	})
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(deps.Products, logg))
		r.Get("/{productID}", controllers.ProductDetail(deps.Products, logg))
	})
	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", controllers.CategoryList(deps.Categories, true, logg))
		r.Get("/{categoryID}", controllers.CategoryDetail(deps.Categories, logg))
	})
	r.Post("/api/v1/orders/quote", controllers.OrderQuote(deps.Orders, logg))

	// Authenticated customer surface.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", controllers.UserProfile(deps.Users, logg))
			r.Put("/", controllers.UserUpdateProfile(deps.Users, logg))
			r.Post("/password", controllers.UserChangePassword(deps.Users, logg))
			r.Post("/avatar", controllers.UserUploadAvatar(deps.Users, deps.Uploads, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Cart, logg))
			r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
			r.Patch("/items/{productID}", controllers.CartUpdateItem(deps.Cart, logg))
			r.Delete("/items/{productID}", controllers.CartRemoveItem(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistFetch(deps.Wishlist, logg))
			r.Post("/items", controllers.WishlistAdd(deps.Wishlist, logg))
			r.Delete("/items/{productID}", controllers.WishlistRemove(deps.Wishlist, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(deps.Orders, logg))
			r.Get("/my", controllers.MyOrders(deps.Orders, logg))
			r.Get("/{orderID}", controllers.OrderDetail(deps.Orders, logg))
			r.Get("/{orderID}/invoice", controllers.OrderInvoiceDownload(deps.Orders, logg))
		})

		r.Post("/payments/intent", controllers.PaymentIntentCreate(deps.Payments, logg))

		r.Route("/chat", func(r chi.Router) {
			r.Get("/", controllers.ChatFetch(deps.Chats, logg))
			r.Post("/messages", controllers.ChatPost(deps.Chats, logg))
		})
	})

	// Admin surface.
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(adminRole, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Get("/dashboard", controllers.AdminDashboard(deps.Admin, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Products, logg))
			r.Post("/", controllers.AdminCreateProduct(deps.Products, logg))
			r.Put("/{productID}", controllers.AdminUpdateProduct(deps.Products, logg))
			r.Patch("/{productID}/meta", controllers.AdminUpdateProductMeta(deps.Products, logg))
			r.Delete("/{productID}", controllers.AdminDeleteProduct(deps.Products, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(deps.Categories, false, logg))
			r.Post("/", controllers.AdminCreateCategory(deps.Categories, logg))
			r.Put("/{categoryID}", controllers.AdminUpdateCategory(deps.Categories, logg))
			r.Delete("/{categoryID}", controllers.AdminDeleteCategory(deps.Categories, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(deps.Orders, logg))
			r.Get("/{orderID}", controllers.OrderDetail(deps.Orders, logg))
			r.Patch("/{orderID}/status", controllers.AdminOrderStatus(deps.Orders, logg))
			r.Post("/{orderID}/invoice", controllers.AdminRegenerateInvoice(deps.Orders, logg))
		})

		r.Get("/users", controllers.AdminUserList(deps.Users, logg))

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.AdminSettings(deps.Settings, logg))
			r.Put("/", controllers.AdminUpdateSettings(deps.Settings, logg))
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", controllers.AdminInvoiceList(deps.Invoices, logg))
			r.Post("/", controllers.AdminCreateInvoice(deps.Invoices, logg))
			r.Get("/{invoiceID}", controllers.AdminInvoiceDetail(deps.Invoices, logg))
			r.Put("/{invoiceID}", controllers.AdminUpdateInvoice(deps.Invoices, logg))
			r.Delete("/{invoiceID}", controllers.AdminDeleteInvoice(deps.Invoices, logg))
			r.Post("/{invoiceID}/render", controllers.AdminRenderInvoice(deps.Invoices, logg))
			r.Get("/{invoiceID}/download", controllers.AdminInvoiceDownload(deps.Invoices, logg))
		})

		r.Route("/chats", func(r chi.Router) {
			r.Get("/", controllers.AdminChatThreads(deps.Chats, logg))
			r.Get("/{threadID}", controllers.AdminChatThread(deps.Chats, logg))
			r.Post("/{threadID}/messages", controllers.AdminChatReply(deps.Chats, logg))
		})

		r.Post("/uploads", controllers.AdminUploadImage(deps.Uploads, logg))
	})

	return r
}
