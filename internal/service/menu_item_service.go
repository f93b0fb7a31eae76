package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"food-order-service/internal/apperr"
	"food-order-service/internal/entity"
	"food-order-service/internal/repository"
)

const menuItemCacheTTL = 10 * time.Minute

type MenuItemService struct {
	repo *repository.MenuItemRepository
	rdb  *redis.Client
}

// NewMenuItemService creates a new instance of MenuItemService.
func NewMenuItemService(repo *repository.MenuItemRepository, rdb *redis.Client) *MenuItemService {
	return &MenuItemService{repo: repo, rdb: rdb}
}

func menuItemKey(id int) string {
	return fmt.Sprintf("menu_item:%d", id)
}

func (s *MenuItemService) GetMenuItems(ctx context.Context) ([]*entity.MenuItem, error) {
	items, err := s.repo.GetMenuItems(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting menu items")
		return nil, err
	}
	return items, nil
}

// GetMenuItemByID reads through the cache. A cache failure falls back to
// the database.
func (s *MenuItemService) GetMenuItemByID(ctx context.Context, id int) (*entity.MenuItem, error) {
	key := menuItemKey(id)
	cached, err := s.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var item entity.MenuItem
		if err := json.Unmarshal([]byte(cached), &item); err == nil {
			return &item, nil
		}
		logger.Warn().Msgf("Dropping unreadable cache entry for menu item %d", id)
	case errors.Is(err, redis.Nil):
	default:
		logger.Error().Err(err).Msgf("Error getting menu item %d from cache", id)
	}

	item, err := s.repo.GetMenuItemByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "menu item", id)
	}

	if data, err := json.Marshal(item); err == nil {
		if err := s.rdb.Set(ctx, key, data, menuItemCacheTTL).Err(); err != nil {
			logger.Error().Err(err).Msgf("Error setting menu item %d in cache", id)
		}
	}
	return item, nil
}

func validateMenuItem(item *entity.MenuItem) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return apperr.InvalidArgument("name is required")
	}
	if item.Price < 0 {
		return apperr.InvalidArgument("price must not be negative")
	}
	return nil
}

func (s *MenuItemService) CreateMenuItem(ctx context.Context, item *entity.MenuItem) (*entity.MenuItem, error) {
	if err := validateMenuItem(item); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateMenuItem(ctx, item)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating menu item")
		return nil, err
	}
	return created, nil
}

func (s *MenuItemService) UpdateMenuItem(ctx context.Context, item *entity.MenuItem) (*entity.MenuItem, error) {
	if err := validateMenuItem(item); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetMenuItemByID(ctx, item.ID); err != nil {
		return nil, notFound(err, "menu item", item.ID)
	}
	updated, err := s.repo.UpdateMenuItem(ctx, item)
	if err != nil {
		logger.Error().Err(err).Msgf("Error updating menu item %d", item.ID)
		return nil, err
	}
	s.invalidate(ctx, item.ID)
	return updated, nil
}

func (s *MenuItemService) DeleteMenuItem(ctx context.Context, id int) error {
	if err := s.repo.DeleteMenuItem(ctx, id); err != nil {
		return notFound(err, "menu item", id)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *MenuItemService) invalidate(ctx context.Context, id int) {
	if err := s.rdb.Del(ctx, menuItemKey(id)).Err(); err != nil {
		logger.Error().Err(err).Msgf("Error deleting menu item %d from cache", id)
	}
}
