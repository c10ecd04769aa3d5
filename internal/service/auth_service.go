/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"studybud/internal/entity"
	"studybud/internal/metrics"
	"studybud/internal/nlog"
	"studybud/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Letters, digits and @ . + - _ only, as usernames are part of URLs and pages. Any script's letters count
var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]{1,150}$`)

// bcrypt only reads this many bytes of a password and refuses longer ones
const MaxPasswordBytes = 72

// Messages shown on the login and registration forms
const (
	MsgUserDoesNotExist   = "User does not exist"
	MsgIncorrectPassword  = "Username OR Password is incorrect"
	MsgPasswordsMismatch  = "Passwords do not match"
	MsgUsernameTaken      = "A user with that username already exists"
	MsgInvalidUsername    = "Enter a valid username. It may contain only letters, numbers, and @/./+/-/_ characters"
	MsgPasswordIsRequired = "Password is required"
	MsgPasswordTooLong    = "Ensure the password has at most 72 bytes"
)

// Service used to register and authenticate identities
type AuthService interface {
	Register(ctx context.Context, username, password, confirm string) (*entity.User, error) // Creates the identity and its secret
	Authenticate(ctx context.Context, username, password string) (*entity.User, error)      // Checks the credentials, returning the identity
	CurrentUser(ctx context.Context, id string) (*entity.User, error)                       // Resolves the identity stored in a session, nil when it's gone
}

type authService struct {
	userRepository repository.UserRepository
	bcryptCost     int
	metrics        *metrics.Metrics
	logger         nlog.Logger
}

func NewAuthService(userRepo repository.UserRepository, bcryptCost int, m *metrics.Metrics, logger nlog.Logger) AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		userRepository: userRepo,
		bcryptCost:     bcryptCost,
		metrics:        m,
		logger:         logger,
	}
}

func (a *authService) Logf(format string, v ...any) {
	a.logger.Logf(format, v...)
}

// NormalizeUsername trims and lowercases a username the way it is stored
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (a *authService) Register(ctx context.Context, username, password, confirm string) (*entity.User, error) {
	username = NormalizeUsername(username)

	if !usernamePattern.MatchString(username) {
		return nil, &AuthError{MsgInvalidUsername}
	}
	if password == "" {
		return nil, &AuthError{MsgPasswordIsRequired}
	}
	if len(password) > MaxPasswordBytes {
		return nil, &AuthError{MsgPasswordTooLong}
	}
	if password != confirm {
		return nil, &AuthError{MsgPasswordsMismatch}
	}

	// Checked again by the unique index on insert, for registrations racing each other
	_, err := a.userRepository.GetByUsername(ctx, username)
	if err == nil {
		a.Logf("Registration refused, username {%s} is taken", username)
		return nil, &AuthError{MsgUsernameTaken}
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("looking up %s: %w", username, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, &AuthError{MsgPasswordTooLong}
	}
	if err != nil {
		a.Logf("ERROR: Could not calculate hash {%v}", err)
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	id := uuid.New().String()
	u := &entity.User{
		ID:        id,
		Username:  username,
		CreatedAt: time.Now(),

		Secret: entity.UserSecret{
			UserID: id,
			Hash:   string(hash),
		},
	}

	if err := a.userRepository.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			a.Logf("Registration refused, username {%s} is taken", username)
			return nil, &AuthError{MsgUsernameTaken}
		}
		return nil, fmt.Errorf("registering %s: %w", username, err)
	}

	a.metrics.Registered()
	a.Logf("User registered {%s, %s}", u.ID, u.Username)
	return u, nil
}

func (a *authService) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	username = NormalizeUsername(username)

	u, err := a.userRepository.GetForLogin(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		a.metrics.LoginAttempt(false)
		return nil, &AuthError{MsgUserDoesNotExist}
	}
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Secret.Hash), []byte(password)); err != nil {
		a.metrics.LoginAttempt(false)
		a.Logf("Wrong credentials for {%s}", username)
		return nil, &AuthError{MsgIncorrectPassword}
	}

	a.metrics.LoginAttempt(true)
	u.Secret = entity.UserSecret{}
	return u, nil
}

func (a *authService) CurrentUser(ctx context.Context, id string) (*entity.User, error) {
	if id == "" {
		return nil, nil
	}
	u, err := a.userRepository.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving session user: %w", err)
	}
	return u, nil
}
