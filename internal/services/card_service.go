package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"kakeibo/internal/core"
	"kakeibo/internal/storage"
)

// CardService manages credit card records.
type CardService struct {
	repo *storage.Repository
}

func NewCardService(repo *storage.Repository) *CardService {
	return &CardService{repo: repo}
}

// CardUpdate carries the fields of a partial update; nil fields keep
// their stored value.
type CardUpdate struct {
	CardName            *string
	WithdrawalAccountID *string
	ClosingDay          *int
	WithdrawalMonth     *string
	WithdrawalDay       *int
}

func (s *CardService) Create(ctx context.Context, card core.CreditCard) (core.CreditCard, error) {
	if err := card.Validate(); err != nil {
		return core.CreditCard{}, err
	}

	card.CardID = uuid.NewString()
	now := time.Now().UTC()
	card.CreatedAt = now
	card.UpdatedAt = now

	if err := s.repo.SaveCreditCard(ctx, card); err != nil {
		return core.CreditCard{}, fmt.Errorf("save credit card: %w", err)
	}

	slog.InfoContext(ctx, "Credit card created",
		"card_id", card.CardID, "card_name", card.CardName)
	return card, nil
}

func (s *CardService) List(ctx context.Context, userID string) ([]core.CreditCard, error) {
	return s.repo.ListCreditCards(ctx, userID)
}

func (s *CardService) Update(ctx context.Context, userID, cardID string, update CardUpdate) (core.CreditCard, error) {
	card, err := s.repo.CreditCard(ctx, userID, cardID)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("load credit card: %w", err)
	}
	if card == nil {
		return core.CreditCard{}, fmt.Errorf("credit card %s: %w", cardID, core.ErrNotFound)
	}

	if update.CardName != nil {
		card.CardName = *update.CardName
	}
	if update.WithdrawalAccountID != nil {
		card.WithdrawalAccountID = *update.WithdrawalAccountID
	}
	if update.ClosingDay != nil {
		card.ClosingDay = *update.ClosingDay
	}
	if update.WithdrawalMonth != nil {
		card.WithdrawalMonth = *update.WithdrawalMonth
	}
	if update.WithdrawalDay != nil {
		card.WithdrawalDay = *update.WithdrawalDay
	}
	card.UpdatedAt = time.Now().UTC()

	if err := card.Validate(); err != nil {
		return core.CreditCard{}, err
	}
	if err := s.repo.SaveCreditCard(ctx, *card); err != nil {
		return core.CreditCard{}, fmt.Errorf("save credit card: %w", err)
	}
	return *card, nil
}

func (s *CardService) Delete(ctx context.Context, userID, cardID string) error {
	card, err := s.repo.CreditCard(ctx, userID, cardID)
	if err != nil {
		return fmt.Errorf("load credit card: %w", err)
	}
	if card == nil {
		return fmt.Errorf("credit card %s: %w", cardID, core.ErrNotFound)
	}
	return s.repo.DeleteCreditCard(ctx, userID, cardID)
}
