package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"food-order-service/internal/apperr"
	"food-order-service/internal/entity"
	"food-order-service/internal/repository"
)

const tokenTTL = 24 * time.Hour

type UserService struct {
	repo      *repository.UserRepository
	jwtSecret []byte
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo *repository.UserRepository, jwtSecret string) *UserService {
	return &UserService{repo: repo, jwtSecret: []byte(jwtSecret)}
}

// JwtCustomClaims is the payload of the bearer tokens this service issues.
type JwtCustomClaims struct {
	UserID int    `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (c *JwtCustomClaims) IsAdmin() bool {
	return c != nil && c.Role == entity.RoleAdmin
}

type RegisterInput struct {
	FullName    string `json:"fullname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Password    string `json:"password"`
}

// Register creates a customer account. Admin accounts are never created
// through this path.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.FullName = strings.TrimSpace(in.FullName)
	if in.PhoneNumber == "" || in.FullName == "" || len(in.Password) < 6 {
		return nil, apperr.InvalidArgument("fullname, phone_number and a password of at least 6 characters are required")
	}

	_, err := s.repo.GetUserByPhone(ctx, in.PhoneNumber)
	if err == nil {
		return nil, fmt.Errorf("phone number %s is already registered: %w", in.PhoneNumber, ErrConflict)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.Error().Err(err).Msg("Error checking phone number")
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, &entity.User{
		FullName:     in.FullName,
		Email:        strings.TrimSpace(in.Email),
		PhoneNumber:  in.PhoneNumber,
		Address:      strings.TrimSpace(in.Address),
		RoleName:     entity.RoleCustomer,
		PasswordHash: string(hash),
	})
	if err != nil {
		logger.Error().Err(err).Msg("Error creating user")
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and issues a signed token valid for 24 hours.
func (s *UserService) Login(ctx context.Context, phoneNumber, password string) (string, *entity.User, error) {
	user, err := s.repo.GetUserByPhone(ctx, strings.TrimSpace(phoneNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		logger.Error().Err(err).Msg("Error loading user for login")
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *UserService) IssueToken(user *entity.User) (string, error) {
	claims := &JwtCustomClaims{
		UserID: user.ID,
		Role:   user.RoleName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		},
	}
	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tkn.SignedString(s.jwtSecret)
}

// GetUserByID retrieves a user by ID.
func (s *UserService) GetUserByID(ctx context.Context, id int) (*entity.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting user by ID %d", id)
		return nil, notFound(err, "user", id)
	}
	return user, nil
}

func (s *UserService) GetUsers(ctx context.Context) ([]*entity.User, error) {
	users, err := s.repo.GetUsers(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting users")
		return nil, err
	}
	return users, nil
}

// ProfileInput carries the editable fields of an account. RoleName is only
// applied when the caller may change roles.
type ProfileInput struct {
	FullName    string `json:"fullname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	RoleName    string `json:"role_name"`
}

// UpdateProfile rewrites the profile of user id. A phone number already
// used by another account is a conflict.
func (s *UserService) UpdateProfile(ctx context.Context, id int, in ProfileInput, canChangeRole bool) (*entity.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if in.FullName == "" || in.PhoneNumber == "" {
		return nil, apperr.InvalidArgument("fullname and phone_number are required")
	}

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.PhoneNumber != user.PhoneNumber {
		other, err := s.repo.GetUserByPhone(ctx, in.PhoneNumber)
		if err == nil && other.ID != id {
			return nil, fmt.Errorf("phone number %s is already registered: %w", in.PhoneNumber, ErrConflict)
		}
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	if role := strings.TrimSpace(in.RoleName); role != "" && role != user.RoleName {
		if !canChangeRole {
			return nil, apperr.InvalidArgument("role_name can only be changed by an admin")
		}
		if role != entity.RoleCustomer && role != entity.RoleAdmin {
			return nil, apperr.InvalidArgument("unknown role %q", role)
		}
		user.RoleName = role
	}

	user.FullName = in.FullName
	user.Email = strings.TrimSpace(in.Email)
	user.PhoneNumber = in.PhoneNumber
	user.Address = strings.TrimSpace(in.Address)

	updated, err := s.repo.UpdateUser(ctx, user)
	if err != nil {
		logger.Error().Err(err).Msgf("Error updating user %d", id)
		return nil, err
	}
	return updated, nil
}

// ChangePassword sets a new password for user id. The current password is
// checked unless verifyCurrent is false, as when an admin resets another
// user's password.
func (s *UserService) ChangePassword(ctx context.Context, id int, current, next string, verifyCurrent bool) error {
	if len(next) < 6 {
		return apperr.InvalidArgument("the new password needs at least 6 characters")
	}

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if verifyCurrent && bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return apperr.InvalidArgument("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, id, string(hash)); err != nil {
		logger.Error().Err(err).Msgf("Error changing password of user %d", id)
		return notFound(err, "user", id)
	}
	return nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		logger.Error().Err(err).Msgf("Error deleting user %d", id)
		return notFound(err, "user", id)
	}
	return nil
}
