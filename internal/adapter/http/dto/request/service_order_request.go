package request

// OpenServiceOrderRequest is the payload for opening a service order.
type OpenServiceOrderRequest struct {
	CustomerID  string `json:"customer_id" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// UpdateStatusRequest carries the requested lifecycle transition. Status
// uses the API spellings open/in_progress/finished.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdatePriceRequest carries a price update. Currency defaults server-side
// when omitted.
type UpdatePriceRequest struct {
	Price    *float64 `json:"price" binding:"required"`
	Currency string   `json:"currency"`
}
