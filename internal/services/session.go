package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-recipe-book/internal/jwt"
	"github.com/sbilibin2017/gw-recipe-book/internal/logger"
	"github.com/sbilibin2017/gw-recipe-book/internal/models"
)

// ErrSessionNotFound is returned when a token does not lead to a live session and user.
var ErrSessionNotFound = errors.New("session not found")

//go:generate mockgen -source=session.go -destination=session_mock.go -package=services

// SessionStore keeps server-side sessions.
type SessionStore interface {
	Save(ctx context.Context, s models.Session) error
	Get(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TokenIssuer signs and parses session tokens.
type TokenIssuer interface {
	Generate(ctx context.Context, sessionID uuid.UUID) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// SessionService moves a visitor between the anonymous and authenticated states.
type SessionService struct {
	store  SessionStore
	users  UserReader
	tokens TokenIssuer
	ttl    time.Duration
}

// NewSessionService creates a SessionService whose sessions live for ttl.
func NewSessionService(store SessionStore, users UserReader, tokens TokenIssuer, ttl time.Duration) *SessionService {
	return &SessionService{
		store:  store,
		users:  users,
		tokens: tokens,
		ttl:    ttl,
	}
}

// Start opens a session for userID and returns the signed token for the cookie
// together with its expiry.
func (s *SessionService) Start(ctx context.Context, userID uuid.UUID) (string, time.Time, error) {
	now := time.Now().UTC()
	session := models.Session{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.store.Save(ctx, session); err != nil {
		logger.Log.Errorw("failed to save session", "user_id", userID, "err", err)
		return "", time.Time{}, err
	}

	token, err := s.tokens.Generate(ctx, session.ID)
	if err != nil {
		logger.Log.Errorw("failed to sign session token", "session_id", session.ID, "err", err)
		return "", time.Time{}, err
	}

	logger.Log.Infow("session started", "session_id", session.ID, "user_id", userID)
	return token, session.ExpiresAt, nil
}

// Resolve maps a session token back to its user.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.UserDB, error) {
	claims, err := s.tokens.GetClaims(ctx, token)
	if err != nil {
		logger.Log.Warnw("invalid session token", "err", err)
		return nil, ErrSessionNotFound
	}

	session, err := s.store.Get(ctx, claims.SessionID)
	if err != nil {
		logger.Log.Errorw("failed to load session", "session_id", claims.SessionID, "err", err)
		return nil, err
	}
	if session == nil || session.Expired(time.Now()) {
		return nil, ErrSessionNotFound
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		logger.Log.Errorw("failed to load session user", "user_id", session.UserID, "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}

	return user, nil
}

// End deletes the session behind token. Tokens that no longer verify are ignored.
func (s *SessionService) End(ctx context.Context, token string) error {
	claims, err := s.tokens.GetClaims(ctx, token)
	if err != nil {
		logger.Log.Warnw("logout with invalid session token", "err", err)
		return nil
	}

	if err := s.store.Delete(ctx, claims.SessionID); err != nil {
		logger.Log.Errorw("failed to delete session", "session_id", claims.SessionID, "err", err)
		return err
	}

	logger.Log.Infow("session ended", "session_id", claims.SessionID)
	return nil
}
