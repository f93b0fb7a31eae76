package service

import (
	"context"
	"fmt"

	"food-order-service/internal/apperr"
	"food-order-service/internal/entity"
	"food-order-service/internal/repository"
)

type CartService struct {
	repo  *repository.CartRepository
	menus *MenuItemService
}

// NewCartService creates a new instance of CartService.
func NewCartService(repo *repository.CartRepository, menus *MenuItemService) *CartService {
	return &CartService{repo: repo, menus: menus}
}

func (s *CartService) GetCart(ctx context.Context, userID int) ([]entity.CartItemRow, error) {
	items, err := s.repo.GetCartItems(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting cart of user %d", userID)
		return nil, err
	}
	return items, nil
}

func (s *CartService) Count(ctx context.Context, userID int) (int, error) {
	return s.repo.CountItems(ctx, userID)
}

// AddItem adds quantity units of a menu item, merging with an existing row.
func (s *CartService) AddItem(ctx context.Context, userID, menuItemID, quantity int) error {
	if quantity < 1 {
		return apperr.InvalidArgument("quantity must be at least 1")
	}

	item, err := s.menus.GetMenuItemByID(ctx, menuItemID)
	if err != nil {
		return err
	}
	if !item.Available {
		return fmt.Errorf("menu item %d: %w", menuItemID, ErrUnavailable)
	}

	if err := s.repo.AddItem(ctx, userID, menuItemID, quantity); err != nil {
		logger.Error().Err(err).Msgf("Error adding menu item %d to cart of user %d", menuItemID, userID)
		return err
	}
	return nil
}

// UpdateItem sets the quantity of a cart row. A quantity of zero or less
// removes the row.
func (s *CartService) UpdateItem(ctx context.Context, userID, menuItemID, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, menuItemID)
	}
	if err := s.repo.UpdateQuantity(ctx, userID, menuItemID, quantity); err != nil {
		return notFound(err, "cart item", menuItemID)
	}
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, menuItemID int) error {
	if err := s.repo.RemoveItem(ctx, userID, menuItemID); err != nil {
		return notFound(err, "cart item", menuItemID)
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID int) error {
	if err := s.repo.ClearCart(ctx, userID); err != nil {
		logger.Error().Err(err).Msgf("Error clearing cart of user %d", userID)
		return err
	}
	return nil
}
