package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// Claims are the JWT claims issued at sign-in. The registered ID is the session id.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IdentityUsecase handles accounts, sign-in and token resolution.
type IdentityUsecase struct {
	users     domain.UserRepository
	sessions  SessionStore
	publisher EventPublisher
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *logger.Logger
}

func NewIdentityUsecase(users domain.UserRepository, sessions SessionStore, publisher EventPublisher, jwtSecret string, tokenTTL time.Duration, log *logger.Logger) *IdentityUsecase {
	return &IdentityUsecase{
		users:     users,
		sessions:  sessions,
		publisher: publisher,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    log.Named("IdentityUsecase"),
	}
}

// CreateAccount registers a user with a fixed role.
func (uc *IdentityUsecase) CreateAccount(ctx context.Context, email, password string, role domain.Role) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.Invalid("a valid email is required")
	}
	if len(password) < minPasswordLength {
		return nil, domain.Invalid("password must be at least %d characters", minPasswordLength)
	}
	if !role.IsValid() {
		return nil, domain.Invalid("role must be %q or %q", domain.RoleStudent, domain.RoleLandlord)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		Email:        email,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			uc.logger.Info("Signup with taken email", zap.String("email", email))
		} else {
			uc.logger.Error("Failed to create user", zap.String("email", email), zap.Error(err))
		}
		return nil, err
	}
	uc.logger.Info("Account created", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// SignIn checks the credentials and issues a token backed by a stored session.
func (uc *IdentityUsecase) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, domain.Invalid("email and password are required")
	}
	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(uc.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	if err := uc.sessions.Save(ctx, sessionID, user.ID, uc.tokenTTL); err != nil {
		uc.logger.Error("Failed to store session", zap.String("user_id", user.ID), zap.Error(err))
		return "", nil, err
	}

	uc.publishAuthChange(ctx, SubjectSignedIn, user.ID)
	uc.logger.Info("User signed in", zap.String("user_id", user.ID))
	return token, user, nil
}

// SignOut ends the session behind token. Signing out an unknown or expired token is a no-op.
func (uc *IdentityUsecase) SignOut(ctx context.Context, token string) error {
	claims, err := uc.parse(token)
	if err != nil {
		return nil
	}
	if err := uc.sessions.Delete(ctx, claims.ID); err != nil {
		uc.logger.Error("Failed to delete session", zap.String("user_id", claims.UserID), zap.Error(err))
		return err
	}
	uc.publishAuthChange(ctx, SubjectSignedOut, claims.UserID)
	uc.logger.Info("User signed out", zap.String("user_id", claims.UserID))
	return nil
}

// Authenticate resolves a bearer token to the signed-in user.
func (uc *IdentityUsecase) Authenticate(ctx context.Context, token string) (domain.User, error) {
	claims, err := uc.parse(token)
	if err != nil {
		return domain.User{}, domain.ErrAuthRequired
	}
	active, err := uc.sessions.Exists(ctx, claims.ID)
	if err != nil {
		return domain.User{}, err
	}
	if !active {
		return domain.User{}, domain.ErrAuthRequired
	}
	return domain.User{ID: claims.UserID, Email: claims.Email, Role: domain.Role(claims.Role)}, nil
}

func (uc *IdentityUsecase) Profile(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrAuthRequired
	}
	return uc.users.FindByID(ctx, userID)
}

func (uc *IdentityUsecase) parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return uc.jwtSecret, nil
	})
	if err != nil {
		uc.logger.Debug("Token rejected", zap.Error(err))
		return nil, err
	}
	if !token.Valid || claims.UserID == "" || claims.ID == "" {
		return nil, errors.New("token is not valid")
	}
	return claims, nil
}

func (uc *IdentityUsecase) publishAuthChange(ctx context.Context, subject, userID string) {
	event := map[string]interface{}{
		"user_id": userID,
		"at":      time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := uc.publisher.Publish(ctx, subject, event); err != nil {
		uc.logger.Warn("Failed to publish auth event", zap.String("subject", subject), zap.Error(err))
	}
}
