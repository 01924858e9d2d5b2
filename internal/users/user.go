package users

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/pkg"
	"github.com/2beens/fittrack/pkg/optional"

	"go.uber.org/multierr"
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// VerifyPassword compares candidate against the stored bcrypt hash.
func (u *User) VerifyPassword(candidate string) bool {
	return pkg.CheckPasswordHash(candidate, u.PasswordHash)
}

func (u *User) SetPassword(password string) error {
	hash, err := pkg.HashPassword(password)
	if errors.Is(err, pkg.ErrPasswordTooLong) {
		return apperr.Validation("password must be at most 72 bytes")
	}
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

const (
	MaxUsernameLength = 80
	MaxEmailLength    = 120
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)

	var err error
	if r.Username == "" {
		err = multierr.Append(err, errors.New("username is required"))
	} else if pkg.TooLong(r.Username, MaxUsernameLength) {
		err = multierr.Append(err, fmt.Errorf("username must be at most %d characters", MaxUsernameLength))
	}
	if r.Email == "" {
		err = multierr.Append(err, errors.New("email is required"))
	} else if pkg.TooLong(r.Email, MaxEmailLength) {
		err = multierr.Append(err, fmt.Errorf("email must be at most %d characters", MaxEmailLength))
	}
	if r.Password == "" {
		err = multierr.Append(err, errors.New("password is required"))
	}
	if err != nil {
		return apperr.ValidationWrap(err, "invalid registration")
	}
	return nil
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" || r.Password == "" {
		return apperr.Validation("username and password are required")
	}
	return nil
}

// UpdateProfileRequest changes only the fields present in the request.
type UpdateProfileRequest struct {
	Username optional.Value[string] `json:"username"`
	Email    optional.Value[string] `json:"email"`
	Password optional.Value[string] `json:"password"`
}

// Validate trims username and email in place.
func (r *UpdateProfileRequest) Validate() error {
	var err error
	if r.Username.Set {
		r.Username.V = strings.TrimSpace(r.Username.V)
		if r.Username.V == "" {
			err = multierr.Append(err, errors.New("username cannot be empty"))
		} else if pkg.TooLong(r.Username.V, MaxUsernameLength) {
			err = multierr.Append(err, fmt.Errorf("username must be at most %d characters", MaxUsernameLength))
		}
	}
	if r.Email.Set {
		r.Email.V = strings.TrimSpace(r.Email.V)
		if r.Email.V == "" {
			err = multierr.Append(err, errors.New("email cannot be empty"))
		} else if pkg.TooLong(r.Email.V, MaxEmailLength) {
			err = multierr.Append(err, fmt.Errorf("email must be at most %d characters", MaxEmailLength))
		}
	}
	if r.Password.Set && r.Password.V == "" {
		err = multierr.Append(err, errors.New("password cannot be empty"))
	}
	if err != nil {
		return apperr.ValidationWrap(err, "invalid profile update")
	}
	return nil
}
