// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sandbox

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/currency"

	"github.com/taibuivan/edura/internal/money"
	"github.com/taibuivan/edura/internal/platform/config"
	"github.com/taibuivan/edura/internal/platform/constants"
	"github.com/taibuivan/edura/internal/platform/middleware"
	"github.com/taibuivan/edura/internal/platform/sec"
)

// Handler implements every REST endpoint of the backend contract.
//
// # Scope
//
// Handlers parse and validate input, enforce ownership, and delegate state
// changes to the [Store], whose methods apply the business rules atomically.
type Handler struct {
	store    *Store
	tokens   *sec.TokenService
	cfg      *config.SandboxConfig
	logger   *slog.Logger
	currency currency.Unit
	now      func() time.Time
}

// NewHandler constructs a [Handler].
func NewHandler(store *Store, tokens *sec.TokenService, cfg *config.SandboxConfig, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		tokens:   tokens,
		cfg:      cfg,
		logger:   logger,
		currency: money.VND,
		now:      time.Now,
	}
}

// Routes returns a [chi.Router] with the whole contract.
//
// # Endpoints
//   - /auth/*: account lifecycle (anonymous)
//   - /courses, /categories: public reads, staff writes
//   - /cart, /enrollments, /payments: authenticated; payment admin is admin only
//   - /users: self or admin
//   - /payments/gateway/{id}: the simulated payment provider return page
//   - /uploads/*: stored avatars
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Route("/auth", func(auth chi.Router) {
		auth.Post("/register", handler.register)
		auth.Post("/login", handler.login)
		auth.Post("/google-login", handler.googleLogin)
		auth.Post("/refresh-token", handler.refreshToken)
		auth.Post("/logout", handler.logout)
		auth.Post("/forgot-password", handler.forgotPassword)
		auth.Post("/reset-password/{token}", handler.resetPassword)
	})

	router.Route("/categories", func(categories chi.Router) {
		categories.Get("/", handler.listCategories)
		categories.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireRole(sec.RoleAdmin))
			admin.Post("/", handler.createCategory)
			admin.Put("/{id}", handler.updateCategory)
			admin.Delete("/{id}", handler.deleteCategory)
		})
	})

	router.Route("/courses", func(courses chi.Router) {
		courses.Get("/", handler.listCourses)
		courses.Get("/{id}", handler.getCourse)
		courses.Get("/{id}/details", handler.getCourseDetails)
		courses.Get("/{id}/lessons", handler.listLessons)
		courses.Group(func(staff chi.Router) {
			staff.Use(middleware.RequireRole(sec.RoleInstructor))
			staff.Post("/", handler.createCourse)
			staff.Put("/{id}", handler.updateCourse)
			staff.Delete("/{id}", handler.deleteCourse)
		})
	})

	router.Group(func(member chi.Router) {
		member.Use(middleware.RequireAuth)

		member.Get("/cart", handler.getCart)
		member.Delete("/cart", handler.clearCart)
		member.Post("/cart/items", handler.addCartItem)
		member.Delete("/cart/items/{course_id}", handler.removeCartItem)

		member.Get("/enrollments", handler.listEnrollments)

		member.Get("/payments", handler.listPayments)
		member.Post("/payments/checkout", handler.checkout)
		member.With(middleware.RequireRole(sec.RoleAdmin)).Get("/payments/stats", handler.paymentStats)
		member.With(middleware.RequireRole(sec.RoleAdmin)).Patch("/payments/{id}/status", handler.updatePaymentStatus)

		member.With(middleware.RequireRole(sec.RoleAdmin)).Get("/users", handler.listUsers)
		member.Get("/users/{id}", handler.getUser)
		member.Put("/users/{id}", handler.updateUser)
		member.Patch("/users/{id}/avatar", handler.uploadAvatar)
	})

	router.Get(gatewayPath+"{id}", handler.gatewayReturn)
	router.Get(constants.PathUploads+"/*", handler.serveUpload)

	return router
}
