package api

// Order lifecycle. The server owns every transition; the client only renders
// the status it is told.
const (
	OrderStatusPending    = "pending"
	OrderStatusAccepted   = "accepted"
	OrderStatusPickedUp   = "picked_up"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Catalog categories.
const (
	CategoryRegular = "Regular"
	CategoryExpress = "Express"
	CategoryPremium = "Premium"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// CategoryID maps a category label to the numeric identifier the order
// endpoint expects on line items. Unknown labels fall back to Regular.
func CategoryID(category string) int64 {
	switch category {
	case CategoryExpress:
		return 2
	case CategoryPremium:
		return 3
	default:
		return 1
	}
}
