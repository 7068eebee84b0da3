package service

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrAIKeyMissing       = errors.New("no OpenAI API key configured")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrNotScheduled       = errors.New("schedule is not registered with the scheduler yet")
	ErrApiKeyLimit        = errors.New("api key limit reached")
)
