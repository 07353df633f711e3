package money

import "time"

// Transaction is one ledger entry. UserID is a non-owning reference to the
// users table. Date is set at creation and entries are immutable afterwards.
type Transaction struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	UserID      int64     `json:"user_id"`
	Date        time.Time `json:"date"`
}

// CreateForm is the url-encoded transaction payload.
type CreateForm struct {
	Type        string  `validate:"required,oneof=income expense"`
	Amount      float64 `validate:"required"`
	Description string
}
