// Package refresher signs in the integration-test accounts and stores their JWTs in the variables file.
package refresher

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/pkg/errors"

	"github.com/wwi21seb-projekt/alpha-services/internal/auth"
	"github.com/wwi21seb-projekt/alpha-services/internal/config"
	"github.com/wwi21seb-projekt/alpha-services/internal/variables"
)

const (
	UsernameKeyPrefix = "username"
	PasswordKeyPrefix = "password"
	TokenKeyPrefix    = "jwt"
)

// Credential identifies one test account.
type Credential struct {
	Index    int
	Username string
	Password string
}

// TokenFetcher logs in and returns a token.
type TokenFetcher interface {
	FetchToken(ctx context.Context, username, password string) (string, error)
}

type Refresher struct {
	accounts int
	fetcher  TokenFetcher
	store    *variables.Store
}

func New(cfg config.Config, fetcher TokenFetcher, store *variables.Store) *Refresher {
	return &Refresher{accounts: cfg.Accounts, fetcher: fetcher, store: store}
}

func key(prefix string, index int) string {
	return prefix + strconv.Itoa(index)
}

// LoadCredentials reads the username/password pair of every account.
// All keys are checked before returning, so a single missing key fails the whole run.
func (r *Refresher) LoadCredentials() ([]Credential, error) {
	keys := make([]string, 0, 2*r.accounts)
	for i := 1; i <= r.accounts; i++ {
		keys = append(keys, key(UsernameKeyPrefix, i), key(PasswordKeyPrefix, i))
	}

	values, err := r.store.Require(keys...)
	if err != nil {
		return nil, err
	}

	credentials := make([]Credential, 0, r.accounts)
	for i := 1; i <= r.accounts; i++ {
		credentials = append(credentials, Credential{
			Index:    i,
			Username: values[key(UsernameKeyPrefix, i)],
			Password: values[key(PasswordKeyPrefix, i)],
		})
	}

	return credentials, nil
}

// FetchToken logs in with one credential pair.
func (r *Refresher) FetchToken(ctx context.Context, username, password string) (string, error) {
	return r.fetcher.FetchToken(ctx, username, password)
}

// PersistToken stores token under jwt<index> and rewrites the variables file.
func (r *Refresher) PersistToken(index int, token string) error {
	k := key(TokenKeyPrefix, index)
	slog.Debug("persisting token", "key", k, "path", r.store.Path())
	return r.store.Set(k, token)
}

// Run refreshes every account in order and stops at the first error.
func (r *Refresher) Run(ctx context.Context) error {
	credentials, err := r.LoadCredentials()
	if err != nil {
		return errors.WithMessage(err, "could not load credentials")
	}

	for _, c := range credentials {
		slog.Info("Fetching token...", "account", c.Index, "username", c.Username)
		token, err := r.FetchToken(ctx, c.Username, c.Password)
		if err != nil {
			return errors.WithMessagef(err, "could not fetch token for account %d", c.Index)
		}

		logTokenInfo(c.Index, token)

		if err := r.PersistToken(c.Index, token); err != nil {
			return errors.WithMessagef(err, "could not persist token for account %d", c.Index)
		}
		slog.Info("Token updated", "account", c.Index, "key", key(TokenKeyPrefix, c.Index))
	}

	return nil
}

func logTokenInfo(index int, token string) {
	info, err := auth.Inspect(token)
	if err != nil {
		slog.Debug("token is not a JWT, storing as-is", "account", index)
		return
	}

	args := []any{"account", index, "subject", info.Subject, "issuer", info.Issuer}
	if info.ExpiresAt != nil {
		args = append(args, "expiresAt", *info.ExpiresAt)
	}
	slog.Debug("token claims", args...)
}
