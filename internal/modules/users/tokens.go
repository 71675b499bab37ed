package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/platform/apierr"
	"github.com/yungbote/meetingscribe-backend/internal/platform/dbctx"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type Tokens struct {
	Access    string `json:"access"`
	Refresh   string `json:"refresh"`
	ExpiresIn int64  `json:"expires_in"`
}

type JWTClaims struct {
	TokenType  string `json:"typ"`
	RememberMe bool   `json:"rmb,omitempty"`
	jwt.RegisteredClaims
}

func invalidCredentials() error {
	return apierr.New(http.StatusUnauthorized, CodeInvalidCredentials, errors.New("invalid email or password"))
}

func invalidToken(err error) error {
	return apierr.New(http.StatusUnauthorized, CodeInvalidToken, err)
}

func (u Usecases) Login(ctx context.Context, email, password string, rememberMe bool) (*Tokens, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apierr.InvalidInput(errors.New("email and password are required"))
	}
	usr, err := u.deps.Users.GetByEmail(dbctx.Of(ctx), email)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "login_failed", err)
	}
	if usr == nil {
		return nil, invalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usr.Password), []byte(password)); err != nil {
		return nil, invalidCredentials()
	}
	return u.issue(usr.ID, rememberMe)
}

// Refresh exchanges a valid refresh token for a new pair with the same remember-me class.
func (u Usecases) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	claims, err := u.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, invalidToken(fmt.Errorf("invalid subject: %w", err))
	}
	usr, err := u.deps.Users.GetByID(dbctx.Of(ctx), userID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "refresh_failed", err)
	}
	if usr == nil {
		return nil, invalidToken(errors.New("user no longer exists"))
	}
	return u.issue(usr.ID, claims.RememberMe)
}

// ParseAccessToken validates an access token and returns its user id.
func (u Usecases) ParseAccessToken(token string) (uuid.UUID, error) {
	claims, err := u.parse(token, tokenTypeAccess)
	if err != nil {
		return uuid.Nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, invalidToken(fmt.Errorf("invalid subject: %w", err))
	}
	return userID, nil
}

func (u Usecases) Me(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	usr, err := u.deps.Users.GetByID(dbctx.Of(ctx), userID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_user_failed", err)
	}
	if usr == nil {
		return nil, apierr.NotFound(errors.New("user not found"))
	}
	return usr, nil
}

func (u Usecases) issue(userID uuid.UUID, rememberMe bool) (*Tokens, error) {
	ttl := u.ttls(rememberMe)
	access, err := u.sign(userID, tokenTypeAccess, rememberMe, ttl.Access)
	if err != nil {
		return nil, err
	}
	refresh, err := u.sign(userID, tokenTypeRefresh, rememberMe, ttl.Refresh)
	if err != nil {
		return nil, err
	}
	return &Tokens{Access: access, Refresh: refresh, ExpiresIn: int64(ttl.Access.Seconds())}, nil
}

func (u Usecases) sign(userID uuid.UUID, typ string, rememberMe bool, ttl time.Duration) (string, error) {
	now := u.deps.Now()
	claims := JWTClaims{
		TokenType:  typ,
		RememberMe: rememberMe,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(u.deps.JWTSecret))
	if err != nil {
		return "", apierr.New(http.StatusInternalServerError, "sign_token_failed", err)
	}
	return signed, nil
}

func (u Usecases) parse(tokenString, wantType string) (*JWTClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, invalidToken(errors.New("token is required"))
	}
	claims := &JWTClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.deps.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(u.deps.Now),
	)
	if err != nil {
		return nil, invalidToken(fmt.Errorf("parse token: %w", err))
	}
	if !parsed.Valid {
		return nil, invalidToken(errors.New("invalid or expired token"))
	}
	if claims.TokenType != wantType {
		return nil, invalidToken(fmt.Errorf("expected %s token", wantType))
	}
	return claims, nil
}
