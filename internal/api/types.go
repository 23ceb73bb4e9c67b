// Package api holds the wire types shared by the WashLink client and the
// in-memory development server. Shapes follow the remote API exactly.
package api

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// User is the authenticated identity returned by /users/me and /auth/verify-otp.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Item is a sellable laundry service from the public catalog.
type Item struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	Category      string          `json:"category"`
	IsActive      bool            `json:"is_active"`
	EstimatedTime string          `json:"estimated_time"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderItem is one line of a submitted order. Price is the unit price at the
// time the order was composed, not a live catalog read.
type OrderItem struct {
	ProductID   int64           `json:"product_id"`
	CategoryID  int64           `json:"category_id"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	ServiceType string          `json:"service_type"`
}

// Order as returned by the order endpoints. Never mutated locally; status
// changes show up only on a fresh fetch.
type Order struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	ServiceProviderID string          `json:"service_provider_id,omitempty"`
	DriverID          string          `json:"driver_id,omitempty"`
	Status            string          `json:"status"`
	ServiceType       string          `json:"service_type"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Delivery          bool            `json:"delivery"`
	DeliveryCharge    decimal.Decimal `json:"delivery_charge"`
	PickupAddress     string          `json:"pickup_address"`
	DeliveryAddress   string          `json:"delivery_address"`
	CreatedAt         time.Time       `json:"created_at"`
	Items             []OrderItem     `json:"items"`
}

// --- Request / Response types ---

type OTPRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type OTPResponse struct {
	OTP string `json:"otp"`
}

type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	OTPCode     string `json:"otp_code"`
	FullName    string `json:"full_name,omitempty"`
}

type AuthResponse struct {
	Message     string `json:"message"`
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CreateOrderRequest struct {
	PickupAddress   string      `json:"pickup_address"`
	DeliveryAddress string      `json:"delivery_address"`
	Delivery        bool        `json:"delivery"`
	Items           []OrderItem `json:"items"`
	Notes           string      `json:"notes,omitempty"`
}

var phonePattern = regexp.MustCompile(`^(\+251|0)?[79]\d{8}$`)

// ValidPhone reports whether phone is an Ethiopian mobile number in any of
// the accepted spellings (+251..., 0..., or bare).
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
