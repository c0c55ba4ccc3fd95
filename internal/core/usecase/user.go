package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Nzyazin/finledger/internal/core/auth"
	"github.com/Nzyazin/finledger/internal/core/logger"
	"github.com/Nzyazin/finledger/internal/core/models"
	"github.com/Nzyazin/finledger/internal/core/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserUsecase interface {
	CreateUser(ctx context.Context, name, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (string, *models.User, error)
	Profile(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type userUsecase struct {
	users  repository.UserRepository
	tokens *auth.JWTManager
	log    logger.Logger
}

func NewUserUsecase(users repository.UserRepository, tokens *auth.JWTManager, log logger.Logger) UserUsecase {
	return &userUsecase{users: users, tokens: tokens, log: log}
}

func (uc *userUsecase) CreateUser(ctx context.Context, name, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := uc.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			uc.log.Warn("Email already taken", logger.StringField("email", email))
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	uc.log.Info("User created",
		logger.StringField("user_id", user.ID.String()),
		logger.StringField("email", user.Email))
	return user, nil
}

// Authenticate verifies credentials and issues a bearer token. A missing user
// and a wrong password report the same error.
func (uc *userUsecase) Authenticate(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		uc.log.Warn("Password mismatch", logger.StringField("email", email))
		return "", nil, ErrInvalidCredentials
	}

	token, err := uc.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	return token, user, nil
}

func (uc *userUsecase) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
