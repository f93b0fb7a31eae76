package service

import (
	"context"
	"database/sql"
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

const categoryCacheTTL = 30 * time.Minute

type CategoryService struct {
	repo *repository.CategoryRepository
	rdb  *redis.Client
}

func NewCategoryService(repo *repository.CategoryRepository, rdb *redis.Client) *CategoryService {
	return &CategoryService{repo: repo, rdb: rdb}
}

func categoryKey(id int) string {
	return fmt.Sprintf("category:%d", id)
}

func (s *CategoryService) GetCategories(ctx context.Context) ([]*entity.Category, error) {
	categories, err := s.repo.GetCategories(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting categories")
		return nil, err
	}
	return categories, nil
}

// GetCategoryByID reads through the cache like menu items do.
func (s *CategoryService) GetCategoryByID(ctx context.Context, id int) (*entity.Category, error) {
	key := categoryKey(id)
	cached, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		var c entity.Category
		if err := json.Unmarshal([]byte(cached), &c); err == nil {
			return &c, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		logger.Error().Err(err).Msgf("Error getting category %d from cache", id)
	}

	c, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "category", id)
	}

	if data, err := json.Marshal(c); err == nil {
		if err := s.rdb.Set(ctx, key, data, categoryCacheTTL).Err(); err != nil {
			logger.Error().Err(err).Msgf("Error setting category %d in cache", id)
		}
	}
	return c, nil
}

// checkName trims the name and makes sure no other category uses it.
func (s *CategoryService) checkName(ctx context.Context, c *entity.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperr.InvalidArgument("name is required")
	}
	existing, err := s.repo.GetCategoryByName(ctx, c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != c.ID {
		return fmt.Errorf("category %q already exists: %w", c.Name, ErrConflict)
	}
	return nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, c *entity.Category) (*entity.Category, error) {
	c.ID = 0
	if err := s.checkName(ctx, c); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateCategory(ctx, c)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating category")
		return nil, err
	}
	return created, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, c *entity.Category) (*entity.Category, error) {
	if _, err := s.repo.GetCategoryByID(ctx, c.ID); err != nil {
		return nil, notFound(err, "category", c.ID)
	}
	if err := s.checkName(ctx, c); err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateCategory(ctx, c)
	if err != nil {
		logger.Error().Err(err).Msgf("Error updating category %d", c.ID)
		return nil, err
	}
	s.invalidate(ctx, c.ID)
	return updated, nil
}

// DeleteCategory refuses to delete a category that still has menu items.
func (s *CategoryService) DeleteCategory(ctx context.Context, id int) error {
	n, err := s.repo.CountMenuItems(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("category %d still has %d menu items: %w", id, n, ErrConflict)
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return notFound(err, "category", id)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context, id int) {
	if err := s.rdb.Del(ctx, categoryKey(id)).Err(); err != nil {
		logger.Error().Err(err).Msgf("Error deleting category %d from cache", id)
	}
}
