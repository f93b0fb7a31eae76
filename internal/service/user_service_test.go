package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"food-order-service/internal/apperr"
	"food-order-service/internal/repository"
)

var userCols = []string{"id", "fullname", "email", "phone_number", "address", "role_name", "password_hash", "created_at"}

func TestUserServiceRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a customer", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewUserService(repository.NewUserRepository(db), "secret")

		mock.ExpectQuery(q("FROM users WHERE phone_number = ?")).WithArgs("0901234567").WillReturnError(sql.ErrNoRows)
		mock.ExpectExec(q("INSERT INTO users")).
			WithArgs("An Nguyen", "an@example.com", "0901234567", "", "customer", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(5, 1))

		user, err := svc.Register(ctx, RegisterInput{FullName: " An Nguyen ", Email: "an@example.com", PhoneNumber: "0901234567", Password: "hunter22"})
		require.NoError(t, err)
		assert.Equal(t, 5, user.ID)
		assert.Equal(t, "customer", user.RoleName)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22")))
	})

	t.Run("rejects a taken phone number", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewUserService(repository.NewUserRepository(db), "secret")

		mock.ExpectQuery(q("FROM users WHERE phone_number = ?")).WithArgs("0901234567").
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "Someone", "", "0901234567", "", "customer", "x", time.Now()))

		_, err := svc.Register(ctx, RegisterInput{FullName: "An", PhoneNumber: "0901234567", Password: "hunter22"})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("rejects a short password", func(t *testing.T) {
		svc := NewUserService(nil, "secret")
		_, err := svc.Register(ctx, RegisterInput{FullName: "An", PhoneNumber: "0901234567", Password: "123"})
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})
}

func TestUserServiceLogin(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("issues a token", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewUserService(repository.NewUserRepository(db), "secret")

		mock.ExpectQuery(q("FROM users WHERE phone_number = ?")).WithArgs("0901234567").
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(9, "Admin", "", "0901234567", "", "admin", string(hash), time.Now()))

		token, user, err := svc.Login(ctx, "0901234567", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, 9, user.ID)

		claims := &JwtCustomClaims{}
		_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) { return []byte("secret"), nil })
		require.NoError(t, err)
		assert.Equal(t, 9, claims.UserID)
		assert.True(t, claims.IsAdmin())
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
	})

	t.Run("wrong password", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewUserService(repository.NewUserRepository(db), "secret")

		mock.ExpectQuery(q("FROM users WHERE phone_number = ?")).
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(9, "An", "", "0901234567", "", "customer", string(hash), time.Now()))

		_, _, err := svc.Login(ctx, "0901234567", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown phone", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewUserService(repository.NewUserRepository(db), "secret")

		mock.ExpectQuery(q("FROM users WHERE phone_number = ?")).WillReturnError(sql.ErrNoRows)

		_, _, err := svc.Login(ctx, "0900000000", "hunter22")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUserServiceGetUserByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	svc := NewUserService(repository.NewUserRepository(db), "secret")

	mock.ExpectQuery(q("FROM users WHERE id = ?")).WithArgs(3).WillReturnError(sql.ErrNoRows)

	_, err := svc.GetUserByID(context.Background(), 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserServiceUpdateProfile(t *testing.T) {
	ctx := context.Background()
	current := func() *sqlmock.Rows {
		return sqlmock.NewRows(userCols).AddRow(7, "An", "", "0901234567", "", "customer", "x", time.Now())
	}

	t.Run("saves the new fields", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewUserService(repository.NewUserRepository(db), "secret")

		mock.ExpectQuery(q("FROM users WHERE id = ?")).WithArgs(7).WillReturnRows(current())
		mock.ExpectQuery(q("FROM users WHERE phone_number = ?")).WithArgs("0907654321").WillReturnError(sql.ErrNoRows)
		mock.ExpectExec(q("UPDATE users SET fullname = ?, email = ?, phone_number = ?, address = ?, role_name = ? WHERE id = ?")).
			WithArgs("An Nguyen", "an@example.com", "0907654321", "12 Lê Lợi", "customer", 7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		user, err := svc.UpdateProfile(ctx, 7, ProfileInput{FullName: " An Nguyen ", Email: "an@example.com", PhoneNumber: "0907654321", Address: "12 Lê Lợi"}, false)
		require.NoError(t, err)
		assert.Equal(t, "An Nguyen", user.FullName)
		assert.Equal(t, "customer", user.RoleName)
	})

	t.Run("phone taken by another account", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewUserService(repository.NewUserRepository(db), "secret")

		mock.ExpectQuery(q("FROM users WHERE id = ?")).WithArgs(7).WillReturnRows(current())
		mock.ExpectQuery(q("FROM users WHERE phone_number = ?")).WithArgs("0907654321").
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(8, "Binh", "", "0907654321", "", "customer", "x", time.Now()))

		_, err := svc.UpdateProfile(ctx, 7, ProfileInput{FullName: "An", PhoneNumber: "0907654321"}, false)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("customer cannot promote themselves", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewUserService(repository.NewUserRepository(db), "secret")

		mock.ExpectQuery(q("FROM users WHERE id = ?")).WithArgs(7).WillReturnRows(current())

		_, err := svc.UpdateProfile(ctx, 7, ProfileInput{FullName: "An", PhoneNumber: "0901234567", RoleName: "admin"}, false)
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})

	t.Run("admin changes the role", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewUserService(repository.NewUserRepository(db), "secret")

		mock.ExpectQuery(q("FROM users WHERE id = ?")).WithArgs(7).WillReturnRows(current())
		mock.ExpectExec(q("UPDATE users SET")).
			WithArgs("An", "", "0901234567", "", "admin", 7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		user, err := svc.UpdateProfile(ctx, 7, ProfileInput{FullName: "An", PhoneNumber: "0901234567", RoleName: "admin"}, true)
		require.NoError(t, err)
		assert.Equal(t, "admin", user.RoleName)
	})

	t.Run("requires a name", func(t *testing.T) {
		svc := NewUserService(nil, "secret")
		_, err := svc.UpdateProfile(ctx, 7, ProfileInput{PhoneNumber: "0901234567"}, false)
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})
}

func TestUserServiceChangePassword(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	row := func() *sqlmock.Rows {
		return sqlmock.NewRows(userCols).AddRow(7, "An", "", "0901234567", "", "customer", string(hash), time.Now())
	}

	t.Run("stores a bcrypt hash of the new password", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewUserService(repository.NewUserRepository(db), "secret")

		var stored string
		mock.ExpectQuery(q("FROM users WHERE id = ?")).WithArgs(7).WillReturnRows(row())
		mock.ExpectExec(q("UPDATE users SET password_hash = ? WHERE id = ?")).
			WithArgs(hashCapture{&stored}, 7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, svc.ChangePassword(ctx, 7, "hunter22", "correct-horse", true))
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("correct-horse")))
	})

	t.Run("wrong current password", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewUserService(repository.NewUserRepository(db), "secret")

		mock.ExpectQuery(q("FROM users WHERE id = ?")).WithArgs(7).WillReturnRows(row())

		err := svc.ChangePassword(ctx, 7, "guess", "correct-horse", true)
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})

	t.Run("admin reset skips the current password", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewUserService(repository.NewUserRepository(db), "secret")

		mock.ExpectQuery(q("FROM users WHERE id = ?")).WithArgs(7).WillReturnRows(row())
		mock.ExpectExec(q("UPDATE users SET password_hash = ? WHERE id = ?")).
			WithArgs(sqlmock.AnyArg(), 7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, svc.ChangePassword(ctx, 7, "", "correct-horse", false))
	})

	t.Run("too short", func(t *testing.T) {
		svc := NewUserService(nil, "secret")
		assert.ErrorIs(t, svc.ChangePassword(ctx, 7, "hunter22", "123", true), apperr.ErrInvalidArgument)
	})
}

// hashCapture matches any string argument and keeps it for inspection.
type hashCapture struct{ dst *string }

func (h hashCapture) Match(v driver.Value) bool {
	s, ok := v.(string)
	*h.dst = s
	return ok
}

func TestUserServiceDeleteUserNotFound(t *testing.T) {
	db, mock := newMock(t)
	svc := NewUserService(repository.NewUserRepository(db), "secret")

	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM cart_items WHERE user_id = ?")).WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("DELETE FROM users WHERE id = ?")).WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, svc.DeleteUser(context.Background(), 3), ErrNotFound)
}
