package models

// Account represents a user's prepaid balance and usage counters.
type Account struct {
	UserID      int64 `json:"-"`
	Balance     int64 `json:"balance"`
	TotalSlides int64 `json:"total_slides"`
	TotalSpent  int64 `json:"total_spent"`
}

// Stats is the aggregate view over all accounts.
type Stats struct {
	TotalUsers  int64 `json:"total_users"`
	TotalSlides int64 `json:"total_slides"`
	TotalEarned int64 `json:"total_earned"`
}

// Slide is one generated slide of a presentation.
type Slide struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreditRequest is the payload for the ops credit endpoint.
type CreditRequest struct {
	Amount int64 `json:"amount"`
}

// ReduceRequest is the payload for the ops forced-reduce endpoint.
type ReduceRequest struct {
	Amount int64 `json:"amount"`
}

// AccountResponse is the canonical account view returned by the ops API.
type AccountResponse struct {
	UserID      int64 `json:"user_id"`
	Balance     int64 `json:"balance"`
	TotalSlides int64 `json:"total_slides"`
	TotalSpent  int64 `json:"total_spent"`
}
