package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	ur := newFakeUserRepo()
	svc := NewAuthService(ur)

	id, err := svc.Register(context.Background(), "  Anna@Example.com ", "correct horse")
	require.NoError(t, err)

	stored, exists, _ := ur.GetByID(context.Background(), id)
	require.True(t, exists)
	assert.Equal(t, "anna@example.com", stored.Email)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)
	assert.True(t, stored.IsActive)

	loggedIn, err := svc.Login(context.Background(), "ANNA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, id, loggedIn)

	_, err = svc.Login(context.Background(), "anna@example.com", "wrong horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), "anna@example.com", "password1")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "ANNA@example.com", "password2")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), "not-an-email", "password1")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Register(context.Background(), "Anna <anna@example.com>", "password1")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Register(context.Background(), "anna@example.com", "short")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Register(context.Background(), "anna@example.com", strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
