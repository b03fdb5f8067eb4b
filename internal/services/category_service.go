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

// defaultCategories is the starter set written on an owner's first
// category listing.
var defaultCategories = []core.Category{
	{Type: core.Income, Name: "Salary", Subcategories: []string{"Base pay", "Overtime", "Bonus"}},
	{Type: core.Income, Name: "Side job", Subcategories: []string{"Freelance", "Part-time"}},
	{Type: core.Income, Name: "Other income", Subcategories: []string{"Investment", "Windfall"}},
	{Type: core.Expense, Name: "Food", Subcategories: []string{"Groceries", "Dining out", "Lunch"}},
	{Type: core.Expense, Name: "Housing", Subcategories: []string{"Rent", "Utilities", "Internet"}},
	{Type: core.Expense, Name: "Transport", Subcategories: []string{"Train", "Bus", "Fuel"}},
	{Type: core.Expense, Name: "Leisure", Subcategories: []string{"Movies", "Books", "Games"}},
	{Type: core.Expense, Name: "Daily goods", Subcategories: []string{"Detergent", "Clothing", "Sundries"}},
}

// CategoryTree groups an owner's categories by transaction type.
type CategoryTree struct {
	Income  []core.Category `json:"income"`
	Expense []core.Category `json:"expense"`
}

// CategoryService manages transaction categories. An owner with no
// stored categories gets the default set seeded on first listing.
type CategoryService struct {
	repo *storage.Repository
}

func NewCategoryService(repo *storage.Repository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context, userID string) (CategoryTree, error) {
	cats, err := s.repo.ListCategories(ctx, userID)
	if err != nil {
		return CategoryTree{}, fmt.Errorf("list categories: %w", err)
	}
	if len(cats) == 0 {
		cats, err = s.seedDefaults(ctx, userID)
		if err != nil {
			return CategoryTree{}, err
		}
	}

	tree := CategoryTree{
		Income:  make([]core.Category, 0, len(cats)),
		Expense: make([]core.Category, 0, len(cats)),
	}
	for _, c := range cats {
		switch c.Type {
		case core.Income:
			tree.Income = append(tree.Income, c)
		case core.Expense:
			tree.Expense = append(tree.Expense, c)
		}
	}
	return tree, nil
}

func (s *CategoryService) Create(ctx context.Context, cat core.Category) (core.Category, error) {
	if err := cat.Validate(); err != nil {
		return core.Category{}, err
	}
	cat.CategoryID = uuid.NewString()
	cat.CreatedAt = time.Now().UTC()
	if err := s.repo.SaveCategory(ctx, cat); err != nil {
		return core.Category{}, fmt.Errorf("save category: %w", err)
	}
	return cat, nil
}

func (s *CategoryService) seedDefaults(ctx context.Context, userID string) ([]core.Category, error) {
	now := time.Now().UTC()
	seeded := make([]core.Category, 0, len(defaultCategories))
	for _, d := range defaultCategories {
		c := core.Category{
			UserID:        userID,
			CategoryID:    uuid.NewString(),
			Type:          d.Type,
			Name:          d.Name,
			Subcategories: d.Subcategories,
			CreatedAt:     now,
		}
		if err := s.repo.SaveCategory(ctx, c); err != nil {
			return nil, fmt.Errorf("seed category %q: %w", d.Name, err)
		}
		seeded = append(seeded, c)
	}
	slog.InfoContext(ctx, "Default categories seeded",
		"user_id", userID, "count", len(seeded))
	return seeded, nil
}
