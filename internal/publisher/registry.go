package publisher

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Credentials are a tenant's decrypted channel settings.
type Credentials struct {
	TelegramBotToken    string
	TelegramChatID      string
	LinkedInAccessToken string
	LinkedInURN         string
	MetaAccessToken     string
	FacebookPageID      string
	InstagramBusinessID string
}

// Configured reports whether every field ch needs is present.
func (c Credentials) Configured(ch Channel) bool {
	switch ch {
	case Telegram:
		return c.TelegramBotToken != "" && c.TelegramChatID != ""
	case LinkedIn:
		return c.LinkedInAccessToken != "" && c.LinkedInURN != ""
	case Facebook:
		return c.MetaAccessToken != "" && c.FacebookPageID != ""
	case Instagram:
		return c.MetaAccessToken != "" && c.InstagramBusinessID != ""
	default:
		return false
	}
}

// Factory builds a publisher from credentials that are known to be complete.
type Factory func(creds Credentials) (Publisher, error)

type Endpoints struct {
	Telegram string
	LinkedIn string
	Graph    string
}

// Registry maps channels to publisher factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[Channel]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[Channel]Factory)}
}

// NewDefaultRegistry registers the built-in channels. All publishers share
// client.
func NewDefaultRegistry(client *http.Client, endpoints Endpoints, timeout time.Duration) *Registry {
	r := NewRegistry()
	r.Register(Telegram, func(c Credentials) (Publisher, error) {
		return NewTelegramPublisher(TelegramConfig{
			BotToken: c.TelegramBotToken,
			ChatID:   c.TelegramChatID,
			BaseURL:  endpoints.Telegram,
			Timeout:  timeout,
		}, client)
	})
	r.Register(LinkedIn, func(c Credentials) (Publisher, error) {
		return NewLinkedInPublisher(LinkedInConfig{
			AccessToken: c.LinkedInAccessToken,
			AuthorURN:   c.LinkedInURN,
			BaseURL:     endpoints.LinkedIn,
			Timeout:     timeout,
		}, client)
	})
	r.Register(Facebook, func(c Credentials) (Publisher, error) {
		return NewFacebookPublisher(FacebookConfig{
			AccessToken: c.MetaAccessToken,
			PageID:      c.FacebookPageID,
			BaseURL:     endpoints.Graph,
			Timeout:     timeout,
		}, client)
	})
	r.Register(Instagram, func(c Credentials) (Publisher, error) {
		return NewInstagramPublisher(InstagramConfig{
			AccessToken: c.MetaAccessToken,
			BusinessID:  c.InstagramBusinessID,
			BaseURL:     endpoints.Graph,
			Timeout:     timeout,
		}, client)
	})
	return r
}

func (r *Registry) Register(ch Channel, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[ch] = f
}

// Resolve returns a publisher for ch, or an error wrapping ErrNotConfigured
// when the channel is unknown or its credentials are incomplete.
func (r *Registry) Resolve(ch Channel, creds Credentials) (Publisher, error) {
	r.mu.RLock()
	f, ok := r.factories[ch]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: no publisher registered for %q", ErrNotConfigured, ch)
	}
	if !creds.Configured(ch) {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, ch.Title())
	}
	return f(creds)
}
