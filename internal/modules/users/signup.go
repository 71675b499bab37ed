package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/meetingscribe-backend/internal/data/db"
	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/platform/apierr"
	"github.com/yungbote/meetingscribe-backend/internal/platform/dbctx"
)

type SignupInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (in *SignupInput) normalize() error {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	switch {
	case in.Email == "":
		return errors.New("email is required")
	case in.Password == "":
		return errors.New("password is required")
	case in.FirstName == "":
		return errors.New("first name is required")
	case in.LastName == "":
		return errors.New("last name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("email is not valid")
	}
	return nil
}

// Signup creates the user and provisions their quota in one transaction.
func (u Usecases) Signup(ctx context.Context, in SignupInput) (*types.User, error) {
	if err := in.normalize(); err != nil {
		return nil, apierr.InvalidInput(err)
	}

	exists, err := u.deps.Users.EmailExists(dbctx.Of(ctx), in.Email)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "signup_failed", err)
	}
	if exists {
		return nil, apierr.AlreadyExists(errors.New("email is already in use"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierr.InvalidInput(fmt.Errorf("hash password: %w", err))
	}

	usr := &types.User{
		Email:     in.Email,
		Password:  string(hashed),
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	err = u.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := u.deps.Users.Create(dbc, usr); err != nil {
			if db.IsUniqueViolation(err) {
				return apierr.AlreadyExists(errors.New("email is already in use"))
			}
			return apierr.New(http.StatusInternalServerError, "signup_failed", err)
		}
		if _, err := u.deps.Quota.Create(dbc, usr.ID, u.deps.DefaultMaxMinutes); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if u.deps.Log != nil {
		u.deps.Log.Info("user signed up", "user_id", usr.ID)
	}
	return usr, nil
}
