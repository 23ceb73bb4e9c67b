package devserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/washlink/app/internal/api"
)

var deliveryCharge = decimal.NewFromInt(50)

// createOrder validates and prices a submitted draft. Pricing is
// authoritative here: unit prices come from the catalog, not from the
// client-supplied lines, and the subtotal is recomputed server-side.
func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req api.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.PickupAddress == "" {
		writeDetail(w, http.StatusBadRequest, "Pickup address is required")
		return
	}
	if req.Delivery && req.DeliveryAddress == "" {
		writeDetail(w, http.StatusBadRequest, "Delivery address is required")
		return
	}
	if len(req.Items) == 0 {
		writeDetail(w, http.StatusBadRequest, "At least one item is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[int64]api.Item, len(s.items))
	for _, item := range s.items {
		byID[item.ID] = item
	}

	subtotal := decimal.Zero
	lines := make([]api.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		item, ok := byID[line.ProductID]
		if !ok {
			writeDetail(w, http.StatusBadRequest, "Unknown item in order")
			return
		}
		if line.Quantity < 1 {
			writeDetail(w, http.StatusBadRequest, "Item quantity must be at least 1")
			return
		}
		lines = append(lines, api.OrderItem{
			ProductID:   item.ID,
			CategoryID:  api.CategoryID(item.Category),
			Quantity:    line.Quantity,
			Price:       item.Price,
			ServiceType: item.Name,
		})
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	charge := decimal.Zero
	if req.Delivery {
		charge = deliveryCharge
	}

	deliveryAddress := req.DeliveryAddress
	if !req.Delivery {
		deliveryAddress = req.PickupAddress
	}

	order := api.Order{
		ID:              uuid.NewString(),
		UserID:          claims.UserID.String(),
		Status:          api.OrderStatusPending,
		ServiceType:     "laundry",
		Subtotal:        subtotal,
		Delivery:        req.Delivery,
		DeliveryCharge:  charge,
		PickupAddress:   req.PickupAddress,
		DeliveryAddress: deliveryAddress,
		CreatedAt:       time.Now(),
		Items:           lines,
	}
	s.orders = append(s.orders, order)

	writeJSON(w, http.StatusOK, order)
}

// myOrders lists the caller's orders newest first, paged by skip/limit.
func (s *Server) myOrders(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)

	s.mu.Lock()
	defer s.mu.Unlock()

	mine := make([]api.Order, 0)
	for i := len(s.orders) - 1; i >= 0; i-- {
		if s.orders[i].UserID == claims.UserID.String() {
			mine = append(mine, s.orders[i])
		}
	}

	if skip >= len(mine) {
		writeJSON(w, http.StatusOK, []api.Order{})
		return
	}
	end := skip + limit
	if end > len(mine) {
		end = len(mine)
	}
	writeJSON(w, http.StatusOK, mine[skip:end])
}

// getOrder fetches one order. Another user's order reads as not found rather
// than forbidden, so order IDs cannot be probed.
func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, order := range s.orders {
		if order.ID == id && order.UserID == claims.UserID.String() {
			writeJSON(w, http.StatusOK, order)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Order not found")
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
