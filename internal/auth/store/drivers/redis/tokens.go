// Package redis implements the token authority store on Redis. Records
// expire naturally via TTL, which keeps the hot revocation path free of
// housekeeping queries.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oakmontlabs/gatehouse/internal/auth/domain"
	"github.com/oakmontlabs/gatehouse/internal/auth/store"
)

type Config struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}

type TokenStore struct {
	client *redis.Client
	prefix string
}

func NewTokenStore(cfg Config) (*TokenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "gatehouse:token:"
	}
	return &TokenStore{client: client, prefix: prefix}, nil
}

func (s *TokenStore) Close() error { return s.client.Close() }

// record is the JSON shape stored per fingerprint.
type record struct {
	ID          string           `json:"id"`
	PrincipalID string           `json:"principal_id"`
	Kind        domain.TokenKind `json:"kind"`
	Fingerprint string           `json:"fingerprint"`
	IssuedAt    time.Time        `json:"issued_at"`
	ExpiresAt   time.Time        `json:"expires_at"`
	Revoked     bool             `json:"revoked"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (s *TokenStore) key(fingerprint string) string {
	return s.prefix + fingerprint
}

func (s *TokenStore) principalKey(principalID string) string {
	return s.prefix + "principal:" + principalID
}

func (s *TokenStore) Create(ctx context.Context, t domain.Token) error {
	now := time.Now().UTC()
	rec := record{
		ID:          t.ID,
		PrincipalID: t.PrincipalID,
		Kind:        t.Kind,
		Fingerprint: t.Fingerprint,
		IssuedAt:    t.IssuedAt.UTC(),
		ExpiresAt:   t.ExpiresAt.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	ttl := time.Until(t.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(t.Fingerprint), payload, ttl)
	pipe.SAdd(ctx, s.principalKey(t.PrincipalID), t.Fingerprint)
	// Keep the index alive at least as long as its longest-lived member.
	pipe.ExpireNX(ctx, s.principalKey(t.PrincipalID), ttl)
	pipe.ExpireGT(ctx, s.principalKey(t.PrincipalID), ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *TokenStore) GetByFingerprint(ctx context.Context, fingerprint string) (domain.Token, error) {
	payload, err := s.client.Get(ctx, s.key(fingerprint)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Token{}, store.ErrNotFound
		}
		return domain.Token{}, err
	}

	var rec record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return domain.Token{}, err
	}
	return rec.toDomain(), nil
}

func (s *TokenStore) Revoke(ctx context.Context, fingerprint string) error {
	payload, err := s.client.Get(ctx, s.key(fingerprint)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return store.ErrNotFound
		}
		return err
	}

	var rec record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return err
	}
	rec.Revoked = true
	rec.UpdatedAt = time.Now().UTC()

	updated, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	// KeepTTL preserves the remaining expiry set at creation.
	return s.client.Set(ctx, s.key(fingerprint), updated, redis.KeepTTL).Err()
}

func (s *TokenStore) RevokeAllForPrincipal(ctx context.Context, principalID string) error {
	fingerprints, err := s.client.SMembers(ctx, s.principalKey(principalID)).Result()
	if err != nil {
		return err
	}

	for _, fp := range fingerprints {
		if err := s.Revoke(ctx, fp); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	return nil
}

// DeleteExpired is a no-op: Redis evicts expired records itself.
func (s *TokenStore) DeleteExpired(ctx context.Context) error { return nil }

func (r record) toDomain() domain.Token {
	return domain.Token{
		ID:          r.ID,
		PrincipalID: r.PrincipalID,
		Kind:        r.Kind,
		Fingerprint: r.Fingerprint,
		IssuedAt:    r.IssuedAt,
		ExpiresAt:   r.ExpiresAt,
		Revoked:     r.Revoked,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
