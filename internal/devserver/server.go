// Package devserver is an in-memory stand-in for the WashLink API, close
// enough in routes, JSON shapes and error behavior to develop and test the
// client against without the production backend. Nothing here survives a
// restart; persistent storage stays behind the real API.
package devserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/washlink/app/internal/api"
)

type otpRecord struct {
	hash      []byte
	expiresAt time.Time
}

// Server holds all state behind one mutex. Volumes are dev-sized; contention
// is a non-issue.
type Server struct {
	jwtSecret string
	log       *logrus.Logger

	mu           sync.Mutex
	usersByPhone map[string]api.User
	otps         map[string]otpRecord
	orders       []api.Order
	revoked      map[string]struct{}
	items        []api.Item
}

// New creates a server with a seeded catalog covering every category.
func New(jwtSecret string, log *logrus.Logger) *Server {
	return &Server{
		jwtSecret:    jwtSecret,
		log:          log,
		usersByPhone: make(map[string]api.User),
		otps:         make(map[string]otpRecord),
		revoked:      make(map[string]struct{}),
		items:        seedItems(),
	}
}

// Router wires the routes under /api/v1, mirroring the production base path.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// The production client is a browser app on another origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/request-otp", s.requestOTP)
		r.Post("/auth/verify-otp", s.verifyOTP)
		r.Get("/items/public", s.listItems)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Post("/auth/logout", s.logout)
			r.Get("/users/me", s.currentUser)
			r.Post("/orders", s.createOrder)
			r.Get("/orders/my-orders", s.myOrders)
			r.Get("/orders/{id}", s.getOrder)
		})
	})

	return r
}

func (s *Server) isRevoked(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[token]
	return ok
}

func seedItems() []api.Item {
	now := time.Now()
	mk := func(id int64, name, desc string, price int64, category, eta string) api.Item {
		return api.Item{
			ID:            id,
			Name:          name,
			Description:   desc,
			Price:         decimal.NewFromInt(price),
			Currency:      "ETB",
			Category:      category,
			IsActive:      true,
			EstimatedTime: eta,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}
	return []api.Item{
		mk(1, "Regular Wash", "Wash, dry and fold per kilogram", 100, api.CategoryRegular, "48 hours"),
		mk(2, "Regular Iron", "Pressing service per item", 40, api.CategoryRegular, "48 hours"),
		mk(3, "Express Wash", "Same-day wash, dry and fold", 180, api.CategoryExpress, "8 hours"),
		mk(4, "Express Iron", "Same-day pressing per item", 70, api.CategoryExpress, "8 hours"),
		mk(5, "Premium Dry Cleaning", "Suits, dresses and delicate fabrics", 350, api.CategoryPremium, "72 hours"),
		mk(6, "Premium Shoe Care", "Deep clean and condition per pair", 250, api.CategoryPremium, "72 hours"),
	}
}
