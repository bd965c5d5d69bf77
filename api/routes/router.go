package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Max3uc3Planz/lcdt-back/api/controllers"
	"github.com/Max3uc3Planz/lcdt-back/api/middleware"
	"github.com/Max3uc3Planz/lcdt-back/internal/addresses"
	"github.com/Max3uc3Planz/lcdt-back/internal/auth"
	"github.com/Max3uc3Planz/lcdt-back/internal/availability"
	"github.com/Max3uc3Planz/lcdt-back/internal/catalog"
	"github.com/Max3uc3Planz/lcdt-back/internal/discounts"
	"github.com/Max3uc3Planz/lcdt-back/internal/orders"
	"github.com/Max3uc3Planz/lcdt-back/internal/settings"
	"github.com/Max3uc3Planz/lcdt-back/internal/telephones"
	"github.com/Max3uc3Planz/lcdt-back/internal/timeslot"
	"github.com/Max3uc3Planz/lcdt-back/internal/users"
	"github.com/Max3uc3Planz/lcdt-back/internal/zones"
	"github.com/Max3uc3Planz/lcdt-back/pkg/auth/session"
	"github.com/Max3uc3Planz/lcdt-back/pkg/config"
	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
	"github.com/Max3uc3Planz/lcdt-back/pkg/logger"
	"github.com/Max3uc3Planz/lcdt-back/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. All services are
// required; the router does not nil-check beyond what controllers do.
type Deps struct {
	Cfg            *config.Config
	Logg           *logger.Logger
	DBPinger       controllers.Pinger
	RedisClient    *redis.Client
	SessionManager session.AccessSessionChecker

	Auth         auth.Service
	Users        users.Service
	Addresses    addresses.Service
	Telephones   telephones.Service
	Catalog      catalog.Service
	Availability availability.Service
	Timeslots    timeslot.Service
	Zones        zones.Service
	Discounts    discounts.Service
	Orders       orders.Service
	Settings     settings.Service
}

// NewRouter assembles the full route table.
func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Cfg, deps.Logg

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(logg, deps.DBPinger, deps.RedisClient))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RedisClient, logg)).
			Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, deps.RedisClient, logg),
			middleware.Idempotency(deps.RedisClient, logg),
		).Post("/register", controllers.AuthRegister(deps.Users, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
	})

	// Public menu browsing; no account needed to look at the dishes.
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/products", controllers.ProductList(deps.Catalog, logg))
		r.Get("/products/{productId}", controllers.ProductGet(deps.Catalog, logg))
		r.Get("/categories", controllers.CategoryList(deps.Catalog, logg))
		r.Get("/tags", controllers.TagList(deps.Catalog, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
		r.Use(middleware.Idempotency(deps.RedisClient, logg))

		r.Post("/auth/logout", controllers.AuthLogout(deps.Auth, logg))

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/product/{productId}/available/{qty}", controllers.CheckoutAvailability(deps.Availability, logg))
			r.Get("/address", controllers.CheckoutAddress(deps.Zones, logg))
			r.Post("/timeslot", controllers.CheckoutTimeslot(deps.Timeslots, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(deps.Orders, logg))
			r.Get("/user/{userId}", controllers.OrderListByUser(deps.Orders, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff(logg))
				r.Get("/pending", controllers.OrderQueue(deps.Orders, logg, enums.OrderStatusPending))
				r.Get("/processing", controllers.OrderQueue(deps.Orders, logg, enums.OrderStatusProcessing))
				r.Get("/packing", controllers.OrderQueue(deps.Orders, logg, enums.OrderStatusPacking))
				r.Get("/delivery", controllers.OrderQueue(deps.Orders, logg, enums.OrderStatusDelivery))
				r.Get("/history", controllers.OrderHistory(deps.Orders, logg))
				r.Get("/count", controllers.OrderCounts(deps.Orders, logg))
				r.Put("/{orderId}/status", controllers.OrderSetStatus(deps.Orders, logg))
			})

			r.Get("/{orderId}", controllers.OrderGet(deps.Orders, logg))
			r.Get("/{orderId}/live-status", controllers.OrderLive(deps.Orders, logg))
		})

		r.Get("/promo-codes/{code}/validate", controllers.PromoValidate(deps.Discounts, logg))

		r.Route("/users/{userId}", func(r chi.Router) {
			r.Get("/", controllers.UserGet(deps.Users, logg))
			r.Put("/", controllers.UserUpdate(deps.Users, logg))
			r.Delete("/", controllers.UserDelete(deps.Users, logg))

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", controllers.AddressList(deps.Addresses, logg))
				r.Post("/", controllers.AddressCreate(deps.Addresses, logg))
				r.Put("/{addressId}", controllers.AddressUpdate(deps.Addresses, logg))
				r.Delete("/{addressId}", controllers.AddressDelete(deps.Addresses, logg))
			})

			r.Route("/telephones", func(r chi.Router) {
				r.Get("/", controllers.TelephoneList(deps.Telephones, logg))
				r.Post("/", controllers.TelephoneCreate(deps.Telephones, logg))
				r.Put("/{telephoneId}", controllers.TelephoneUpdate(deps.Telephones, logg))
				r.Delete("/{telephoneId}", controllers.TelephoneDelete(deps.Telephones, logg))
			})
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/suggest", controllers.AddressSuggest(deps.Addresses, logg))
			r.Get("/resolve", controllers.AddressResolve(deps.Addresses, logg))
		})

		r.Get("/delivery-types", controllers.DeliveryTypeList(deps.Timeslots, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/promotional-codes", func(r chi.Router) {
			r.Get("/", controllers.PromoList(deps.Discounts, logg))
			r.Post("/", controllers.PromoCreate(deps.Discounts, logg))
			r.Delete("/{promoId}", controllers.PromoDelete(deps.Discounts, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.ProductCreate(deps.Catalog, logg))
			r.Put("/{productId}", controllers.ProductUpdate(deps.Catalog, logg))
			r.Delete("/{productId}", controllers.ProductDelete(deps.Catalog, logg))
			r.Get("/{productId}/day-stocks", controllers.DayStockList(deps.Catalog, logg))
			r.Delete("/{productId}/day-stocks/{stockId}", controllers.DayStockDelete(deps.Catalog, logg))
		})
		r.Put("/day-stocks", controllers.DayStockUpsert(deps.Catalog, logg))

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.CategoryCreate(deps.Catalog, logg))
			r.Put("/{categoryId}", controllers.CategoryUpdate(deps.Catalog, logg))
			r.Delete("/{categoryId}", controllers.CategoryDelete(deps.Catalog, logg))
		})
		r.Route("/tags", func(r chi.Router) {
			r.Post("/", controllers.TagCreate(deps.Catalog, logg))
			r.Delete("/{tagId}", controllers.TagDelete(deps.Catalog, logg))
		})

		r.Route("/delivery-zones", func(r chi.Router) {
			r.Get("/", controllers.ZoneList(deps.Zones, logg))
			r.Post("/", controllers.ZoneCreate(deps.Zones, logg))
			r.Put("/{zoneId}", controllers.ZoneUpdate(deps.Zones, logg))
			r.Delete("/{zoneId}", controllers.ZoneDelete(deps.Zones, logg))
		})

		r.Route("/time-slots", func(r chi.Router) {
			r.Post("/", controllers.SlotCreate(deps.Timeslots, logg))
			r.Delete("/{slotId}", controllers.SlotDelete(deps.Timeslots, logg))
		})

		r.Get("/settings", controllers.SettingsGet(deps.Settings, logg))
		r.Put("/settings", controllers.SettingsUpdate(deps.Settings, logg))
	})

	return r
}
