// Package sessions keeps logged in marketwatch clients around so that
// every request does not go through the sso flow.
package sessions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"marketwatch-backend/internal/components/assert"
	"marketwatch-backend/internal/components/telemetry"
	"marketwatch-backend/internal/scrapers/marketwatch"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	report_sessions_login = "sessions.login"
	report_sessions_size  = "sessions.size"
)

// LoginFunc returns a client logged in as email.
type LoginFunc func(ctx context.Context, email, password string) (*marketwatch.Client, error)

// NewLoginFunc creates a fresh client per login, clients hold their own
// cookie jar.
func NewLoginFunc(opts marketwatch.ClientOptions, tel telemetry.API) LoginFunc {
	return func(ctx context.Context, email, password string) (*marketwatch.Client, error) {
		client, err := marketwatch.NewClient(opts, tel)
		if err != nil {
			return nil, err
		}
		err = client.Login(ctx, email, password)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

type Cache struct {
	cache *expirable.LRU[string, *marketwatch.Client]
	login LoginFunc
	tel   telemetry.API
}

func NewCache(login LoginFunc, ttl time.Duration, tel telemetry.API) Cache {
	assert.NotNil(login, "login func")
	assert.NotNil(tel, "telemetry")
	if ttl == 0 {
		ttl = time.Minute * 15
	}
	return Cache{
		cache: expirable.NewLRU[string, *marketwatch.Client](2048, nil, ttl),
		login: login,
		tel:   tel,
	}
}

// the password is part of the key so a wrong password never reuses a
// session that was opened with the right one
func key(email, password string) string {
	sum := sha256.Sum256([]byte(email + "\x00" + password))
	return hex.EncodeToString(sum[:])
}

// Get returns a cached client for the credentials or logs in, failed
// logins are not cached.
func (c Cache) Get(ctx context.Context, email, password string) (*marketwatch.Client, error) {
	k := key(email, password)
	cached, hit := c.cache.Get(k)
	if hit {
		return cached, nil
	}

	client, err := c.login(ctx, email, password)
	if err != nil {
		c.tel.ReportWarning(report_sessions_login, err)
		return nil, err
	}

	c.cache.Add(k, client)
	c.tel.ReportCount(report_sessions_size, int64(c.cache.Len()))
	return client, nil
}

// Forget drops the session for the credentials, the next Get logs in again.
func (c Cache) Forget(email, password string) {
	c.cache.Remove(key(email, password))
}

// Expired is true for scrape errors a fresh login may fix, marketwatch
// serves different markup to a session it has logged out.
func Expired(err error) bool {
	return errors.Is(err, marketwatch.ErrNotLoggedIn) ||
		errors.Is(err, marketwatch.ErrUnexpectedMarkup)
}
