package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-order-service/internal/apperr"
	"food-order-service/internal/entity"
	"food-order-service/internal/repository"
)

func TestMenuItemServiceCachesReads(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	mr, rdb := newRedis(t)
	svc := NewMenuItemService(repository.NewMenuItemRepository(db), rdb)

	mock.ExpectQuery(q("FROM menu_items WHERE id = ?")).WithArgs(3).
		WillReturnRows(sqlmock.NewRows(menuCols).AddRow(3, "Phở bò", "", 45000, "pho.png", 1, true))

	first, err := svc.GetMenuItemByID(ctx, 3)
	require.NoError(t, err)
	assert.True(t, mr.Exists("menu_item:3"))

	second, err := svc.GetMenuItemByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMenuItemServiceUpdateInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	mr, rdb := newRedis(t)
	svc := NewMenuItemService(repository.NewMenuItemRepository(db), rdb)
	require.NoError(t, mr.Set("menu_item:3", `{"id":3,"name":"old","price":1}`))

	mock.ExpectQuery(q("FROM menu_items WHERE id = ?")).WithArgs(3).
		WillReturnRows(sqlmock.NewRows(menuCols).AddRow(3, "old", "", 1, "", 0, true))
	mock.ExpectExec(q("UPDATE menu_items SET")).WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := svc.UpdateMenuItem(ctx, &entity.MenuItem{ID: 3, Name: "Phở gà", Price: 40000, Available: true})
	require.NoError(t, err)
	assert.False(t, mr.Exists("menu_item:3"))
}

func TestMenuItemServiceValidation(t *testing.T) {
	svc := NewMenuItemService(nil, nil)
	_, err := svc.CreateMenuItem(context.Background(), &entity.MenuItem{Name: "  ", Price: 10})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	_, err = svc.CreateMenuItem(context.Background(), &entity.MenuItem{Name: "Cơm", Price: -1})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestMenuItemServiceDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	_, rdb := newRedis(t)
	svc := NewMenuItemService(repository.NewMenuItemRepository(db), rdb)

	mock.ExpectExec(q("DELETE FROM menu_items WHERE id = ?")).WithArgs(8).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, svc.DeleteMenuItem(context.Background(), 8), ErrNotFound)
}

func TestCartServiceAddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("unavailable item", func(t *testing.T) {
		db, mock := newMock(t)
		_, rdb := newRedis(t)
		menus := NewMenuItemService(repository.NewMenuItemRepository(db), rdb)
		svc := NewCartService(repository.NewCartRepository(db), menus)

		mock.ExpectQuery(q("FROM menu_items WHERE id = ?")).WithArgs(3).
			WillReturnRows(sqlmock.NewRows(menuCols).AddRow(3, "Phở bò", "", 45000, "", 1, false))

		assert.ErrorIs(t, svc.AddItem(ctx, 7, 3, 1), ErrUnavailable)
	})

	t.Run("unknown item", func(t *testing.T) {
		db, mock := newMock(t)
		_, rdb := newRedis(t)
		menus := NewMenuItemService(repository.NewMenuItemRepository(db), rdb)
		svc := NewCartService(repository.NewCartRepository(db), menus)

		mock.ExpectQuery(q("FROM menu_items WHERE id = ?")).WithArgs(99).WillReturnError(sql.ErrNoRows)

		assert.ErrorIs(t, svc.AddItem(ctx, 7, 99, 1), ErrNotFound)
	})

	t.Run("adds", func(t *testing.T) {
		db, mock := newMock(t)
		_, rdb := newRedis(t)
		menus := NewMenuItemService(repository.NewMenuItemRepository(db), rdb)
		svc := NewCartService(repository.NewCartRepository(db), menus)

		mock.ExpectQuery(q("FROM menu_items WHERE id = ?")).WithArgs(3).
			WillReturnRows(sqlmock.NewRows(menuCols).AddRow(3, "Phở bò", "", 45000, "", 1, true))
		mock.ExpectExec(q("INSERT INTO cart_items")).WithArgs(7, 3, 2).WillReturnResult(sqlmock.NewResult(1, 1))

		assert.NoError(t, svc.AddItem(ctx, 7, 3, 2))
	})

	t.Run("zero quantity", func(t *testing.T) {
		svc := NewCartService(nil, nil)
		assert.ErrorIs(t, svc.AddItem(ctx, 7, 3, 0), apperr.ErrInvalidArgument)
	})
}

func TestCartServiceUpdateItemToZeroRemoves(t *testing.T) {
	db, mock := newMock(t)
	svc := NewCartService(repository.NewCartRepository(db), nil)

	mock.ExpectExec(q("DELETE FROM cart_items WHERE user_id = ? AND menu_item_id = ?")).WithArgs(7, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, svc.UpdateItem(context.Background(), 7, 3, 0))
}

func TestCartServiceRemoveMissing(t *testing.T) {
	db, mock := newMock(t)
	svc := NewCartService(repository.NewCartRepository(db), nil)

	mock.ExpectExec(q("DELETE FROM cart_items WHERE user_id = ? AND menu_item_id = ?")).WithArgs(7, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, svc.RemoveItem(context.Background(), 7, 3), ErrNotFound)
}
