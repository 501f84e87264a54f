package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/de-tools/entra-atlas/pkg/store/kv"
	"github.com/rs/zerolog"
)

const (
	KeyAccessToken = "auth_accessToken"
	KeyTokenExpiry = "auth_tokenExpiry"
	KeyTenantID    = "auth_tenantId"

	GraphScope         = "https://graph.microsoft.com/.default"
	DefaultRefreshSkew = 5 * time.Minute
)

var ErrNotLoggedIn = errors.New("not logged in")

type SessionOptions struct {
	// Credential acquires new tokens. Without one the session can only
	// serve the stored token.
	Credential azcore.TokenCredential
	// TenantID is recorded when the token carries no tid claim.
	TenantID    string
	Scopes      []string
	RefreshSkew time.Duration
}

// Session is an azcore.TokenCredential backed by the token persisted in kv.
// A stored token is served until RefreshSkew before it expires.
type Session struct {
	storage    kv.Storage
	credential azcore.TokenCredential
	tenantID   string
	scopes     []string
	skew       time.Duration
	now        func() time.Time

	mu sync.Mutex
}

func NewSession(storage kv.Storage, opts SessionOptions) *Session {
	if len(opts.Scopes) == 0 {
		opts.Scopes = []string{GraphScope}
	}
	if opts.RefreshSkew <= 0 {
		opts.RefreshSkew = DefaultRefreshSkew
	}
	return &Session{
		storage:    storage,
		credential: opts.Credential,
		tenantID:   opts.TenantID,
		scopes:     opts.Scopes,
		skew:       opts.RefreshSkew,
		now:        time.Now,
	}
}

func (s *Session) Skew() time.Duration {
	return s.skew
}

// GetToken serves the session's Graph token; the requested scopes are
// ignored because the session only ever holds Graph tokens.
func (s *Session) GetToken(ctx context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.load(ctx)
	if err == nil && stored.ExpiresOn.Add(-s.skew).After(s.now()) {
		return *stored, nil
	}
	if err != nil && !errors.Is(err, ErrNotLoggedIn) {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("discarding unreadable stored session")
	}
	return s.refresh(ctx)
}

// Refresh acquires a new token from the credential and persists it.
func (s *Session) Refresh(ctx context.Context) (azcore.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh(ctx)
}

// Stored returns the persisted token without contacting the identity provider.
func (s *Session) Stored(ctx context.Context) (azcore.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.load(ctx)
	if err != nil {
		return azcore.AccessToken{}, err
	}
	return *token, nil
}

// TenantID returns the tenant recorded with the persisted token.
func (s *Session) TenantID(ctx context.Context) (string, error) {
	return StoredTenantID(ctx, s.storage)
}

func (s *Session) refresh(ctx context.Context) (azcore.AccessToken, error) {
	if s.credential == nil {
		return azcore.AccessToken{}, ErrNotLoggedIn
	}

	token, err := s.credential.GetToken(ctx, policy.TokenRequestOptions{Scopes: s.scopes})
	if err != nil {
		return azcore.AccessToken{}, fmt.Errorf("failed to acquire token: %w", err)
	}

	tenantID := s.tenantID
	if claims, err := ParseClaims(token.Token); err == nil {
		tenantID = claims.TenantID
	} else {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("token carries no readable tenant claim")
	}

	if err := s.persist(ctx, token, tenantID); err != nil {
		return azcore.AccessToken{}, err
	}
	zerolog.Ctx(ctx).Debug().
		Str("tenant", tenantID).
		Time("expires_on", token.ExpiresOn).
		Msg("access token refreshed")
	return token, nil
}

func (s *Session) persist(ctx context.Context, token azcore.AccessToken, tenantID string) error {
	if err := s.storage.Set(ctx, KeyAccessToken, []byte(token.Token)); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	expiry := token.ExpiresOn.UTC().Format(time.RFC3339)
	if err := s.storage.Set(ctx, KeyTokenExpiry, []byte(expiry)); err != nil {
		return fmt.Errorf("failed to store token expiry: %w", err)
	}
	if tenantID != "" {
		if err := s.storage.Set(ctx, KeyTenantID, []byte(tenantID)); err != nil {
			return fmt.Errorf("failed to store tenant id: %w", err)
		}
	}
	return nil
}

func (s *Session) load(ctx context.Context) (*azcore.AccessToken, error) {
	token, err := s.storage.Get(ctx, KeyAccessToken)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read access token: %w", err)
	}

	rawExpiry, err := s.storage.Get(ctx, KeyTokenExpiry)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token expiry: %w", err)
	}
	expiry, err := time.Parse(time.RFC3339, string(rawExpiry))
	if err != nil {
		return nil, fmt.Errorf("invalid token expiry %q: %w", rawExpiry, err)
	}

	return &azcore.AccessToken{Token: string(token), ExpiresOn: expiry}, nil
}

// StoredTenantID reads the tenant of the last login.
func StoredTenantID(ctx context.Context, storage kv.Storage) (string, error) {
	raw, err := storage.Get(ctx, KeyTenantID)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", fmt.Errorf("failed to read tenant id: %w", err)
	}
	return string(raw), nil
}

// Logout removes every auth key. Scan history is kept.
func Logout(ctx context.Context, storage kv.Storage) error {
	for _, key := range []string{KeyAccessToken, KeyTokenExpiry, KeyTenantID} {
		if err := storage.Delete(ctx, key); err != nil && !errors.Is(err, kv.ErrKeyNotFound) {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return nil
}
