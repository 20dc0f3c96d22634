// Package services implements the session lifecycle (register, login,
// logout, refresh) and identity management on top of the repositories.
package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

// AuthResult is returned by register and login.
type AuthResult struct {
	User   models.PublicUser `json:"user"`
	Tokens *models.TokenPair `json:"tokens"`
}

// SessionService drives a session through
// unauthenticated -> authenticated -> rotated ... -> revoked.
type SessionService struct {
	repomanager repomanager.RepositoryManager
	tx          dbx.Transactor
	issuer      *auth.Issuer
	codec       *auth.Codec
	hasher      auth.PasswordHasher
	recordTTL   time.Duration
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewSessionService(m repomanager.RepositoryManager, issuer *auth.Issuer, codec *auth.Codec,
	hasher auth.PasswordHasher, cfg *config.Config) *SessionService {
	return &SessionService{
		repomanager: m,
		tx:          m.Transactor(),
		issuer:      issuer,
		codec:       codec,
		hasher:      hasher,
		recordTTL:   cfg.RefreshRecordTTL,
		now:         time.Now,
	}
}

// startSession issues a pair for userID and persists its refresh half.
func (s *SessionService) startSession(ctx context.Context, db dbx.DBTX, userID string) (*models.TokenPair, error) {
	pair, err := s.issuer.IssuePair(userID)
	if err != nil {
		return nil, internalError("issue token pair", err)
	}

	expiresAt := s.now().Add(s.recordTTL)
	if _, err := s.repomanager.RefreshTokens(db).Create(ctx, pair.RefreshToken.Token, userID, expiresAt, models.TokenKindRefresh); err != nil {
		// A token collision is an internal fault.
		return nil, internalError("persist refresh token", err)
	}
	return pair, nil
}

// Register creates an identity with role user and opens its first session.
func (s *SessionService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if err := validateRegistration(name, email, password); err != nil {
		return nil, err
	}

	if _, err := s.repomanager.Users(s.tx.Conn()).GetByEmail(ctx, email); err == nil {
		return nil, errEmailTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, internalError("find user by email", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, internalError("hash password", err)
	}

	var result *AuthResult
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).Create(ctx, &models.User{
			Name:         name,
			Email:        email,
			PasswordHash: hash,
			Role:         models.RoleUser,
		})
		if err != nil {
			return err
		}

		pair, err := s.startSession(ctx, tx, user.ID)
		if err != nil {
			return err
		}

		result = &AuthResult{User: user.Public(), Tokens: pair}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, errEmailTaken
		}
		return nil, internalError("register", err)
	}

	return result, nil
}

// Login checks credentials and opens a new session. Unknown email and wrong
// password fail identically.
func (s *SessionService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if err := validateLogin(email, password); err != nil {
		return nil, err
	}

	conn := s.tx.Conn()
	user, err := s.repomanager.Users(conn).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.burnVerify(password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, internalError("find user by email", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, internalError("verify password", err)
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	pair, err := s.startSession(ctx, conn, user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user.Public(), Tokens: pair}, nil
}

// burnVerify runs one hash comparison for an unknown email, keeping login
// timing uniform.
func (s *SessionService) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("authkeeper-dummy-password")
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

// Logout deletes the active refresh record behind refreshToken. Records of
// other kinds are treated as absent. No new token is issued.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return errRefreshRequired
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RefreshTokens(tx)
		rec, err := repo.FindActive(ctx, refreshToken)
		if err != nil {
			return err
		}
		if rec.Kind != models.TokenKindRefresh {
			return common.ErrorNotFound
		}
		return repo.Delete(ctx, rec.ID)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return errRefreshNotFound
		}
		return internalError("logout", err)
	}
	return nil
}

// RefreshAuth redeems refreshToken for a new pair. The lookup, the delete of
// the presented record and the insert of its replacement share one
// transaction: a redeemed token is never usable again, and if the insert
// fails the delete is rolled back so the caller can retry.
func (s *SessionService) RefreshAuth(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	if refreshToken == "" {
		return nil, errRefreshRequired
	}

	claims, err := s.codec.Verify(refreshToken, models.TokenKindRefresh)
	if err != nil {
		return nil, errInvalidRefreshToken
	}

	var pair *models.TokenPair
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		refresh := s.repomanager.RefreshTokens(tx)

		rec, err := refresh.FindActive(ctx, refreshToken)
		if err != nil {
			return err
		}
		if rec.Kind != models.TokenKindRefresh || rec.UserID != claims.Subject {
			return errInvalidRefreshToken
		}

		if _, err := s.repomanager.Users(tx).GetByID(ctx, rec.UserID); err != nil {
			return err
		}

		if err := refresh.Delete(ctx, rec.ID); err != nil {
			return err
		}

		pair, err = s.startSession(ctx, tx, rec.UserID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorUnauthorized) {
			return nil, errInvalidRefreshToken
		}
		return nil, internalError("refresh auth", err)
	}

	return pair, nil
}

// LogoutAll revokes every refresh record of userID.
func (s *SessionService) LogoutAll(ctx context.Context, userID string) (int64, error) {
	n, err := s.repomanager.RefreshTokens(s.tx.Conn()).DeleteAllForUser(ctx, userID, models.TokenKindRefresh)
	if err != nil {
		return 0, internalError("logout all", err)
	}
	return n, nil
}

// SweepExpired purges refresh records whose expiry has passed.
func (s *SessionService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repomanager.RefreshTokens(s.tx.Conn()).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, internalError("sweep expired refresh tokens", err)
	}
	return n, nil
}
