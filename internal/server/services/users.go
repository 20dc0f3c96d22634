package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page is one slice of the identity list.
type Page struct {
	Results      []models.PublicUser `json:"results"`
	Page         int                 `json:"page"`
	Limit        int                 `json:"limit"`
	TotalPages   int                 `json:"totalPages"`
	TotalResults int                 `json:"totalResults"`
}

// UserService manages identities on behalf of administrators.
type UserService struct {
	repomanager repomanager.RepositoryManager
	tx          dbx.Transactor
	hasher      auth.PasswordHasher
}

func NewUserService(m repomanager.RepositoryManager, hasher auth.PasswordHasher) *UserService {
	return &UserService{repomanager: m, tx: m.Transactor(), hasher: hasher}
}

func (s *UserService) CreateUser(ctx context.Context, name, email, password string, role models.Role) (*models.PublicUser, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if err := validateRegistration(name, email, password); err != nil {
		return nil, err
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, common.WithMessage(common.ErrorValidation, "Role is invalid")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, internalError("hash password", err)
	}

	user, err := s.repomanager.Users(s.tx.Conn()).Create(ctx, &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, errEmailTaken
		}
		return nil, internalError("create user", err)
	}

	pub := user.Public()
	return &pub, nil
}

// ListUsers returns page (1-based) of at most limit identities. Zero or
// negative arguments fall back to the defaults; limit is capped at MaxLimit.
// A page too far out to address yields an empty result.
func (s *UserService) ListUsers(ctx context.Context, page, limit int) (*Page, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset := math.MaxInt
	if page-1 <= math.MaxInt/limit {
		offset = (page - 1) * limit
	}

	users, total, err := s.repomanager.Users(s.tx.Conn()).List(ctx, limit, offset)
	if err != nil {
		return nil, internalError("list users", err)
	}

	results := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		results = append(results, u.Public())
	}

	return &Page{
		Results:      results,
		Page:         page,
		Limit:        limit,
		TotalPages:   (total + limit - 1) / limit,
		TotalResults: total,
	}, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.PublicUser, error) {
	user, err := s.repomanager.Users(s.tx.Conn()).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errUserNotFound
		}
		return nil, internalError("get user", err)
	}
	pub := user.Public()
	return &pub, nil
}

// UpdateUser applies the non-nil changes. A password change also revokes
// every refresh token of the user.
func (s *UserService) UpdateUser(ctx context.Context, id string, name, email, password *string) (*models.PublicUser, error) {
	var upd models.UserUpdate

	if name != nil {
		n := strings.TrimSpace(*name)
		if err := validateName(n); err != nil {
			return nil, err
		}
		upd.Name = &n
	}
	if email != nil {
		e := normalizeEmail(*email)
		if err := validateEmail(e); err != nil {
			return nil, err
		}
		upd.Email = &e
	}
	if password != nil {
		if err := validatePassword(*password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*password)
		if err != nil {
			return nil, internalError("hash password", err)
		}
		upd.PasswordHash = &hash
	}

	var user *models.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = s.repomanager.Users(tx).Update(ctx, id, upd)
		if err != nil {
			return err
		}
		if upd.PasswordHash != nil {
			_, err = s.repomanager.RefreshTokens(tx).DeleteAllForUser(ctx, id, models.TokenKindRefresh)
		}
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return nil, errUserNotFound
		case errors.Is(err, common.ErrorConflict):
			return nil, errEmailTaken
		}
		return nil, internalError("update user", err)
	}

	pub := user.Public()
	return &pub, nil
}

// DeleteUser removes the identity and its refresh tokens in one transaction.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).Delete(ctx, id); err != nil {
			return err
		}
		_, err := s.repomanager.RefreshTokens(tx).DeleteAllForUser(ctx, id, models.TokenKindRefresh)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return errUserNotFound
		}
		return internalError("delete user", err)
	}
	return nil
}
