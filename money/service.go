package money

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/user/miniweb-go/apperror"
)

// Service validates and persists transactions.
type Service struct {
	store    Store
	validate *validator.Validate
}

// NewService creates a Service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store, validate: validator.New()}
}

// Create validates the form (type must be income or expense, amount must be
// a non-zero number) and inserts the transaction for userID.
func (s *Service) Create(ctx context.Context, form CreateForm, userID int64) (*Transaction, error) {
	if err := s.validate.Struct(form); err != nil {
		return nil, apperror.NewValidationError("transaction type must be income or expense and amount must be a number", err)
	}
	tx := &Transaction{
		Type:        form.Type,
		Amount:      form.Amount,
		Description: form.Description,
		UserID:      userID,
	}
	return s.store.Create(ctx, tx)
}

// ListByUser returns userID's transactions, newest first.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]Transaction, error) {
	return s.store.ListByUser(ctx, userID)
}
