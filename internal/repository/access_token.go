package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"classroom-ledger/internal/domain"
)

type AccessTokenRepository struct {
	db *sql.DB
}

func NewAccessTokenRepository(db *sql.DB) *AccessTokenRepository {
	return &AccessTokenRepository{db: db}
}

// HashToken is the stored form of a plain bearer token.
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// FindByPlainToken looks a token up by its sha256 hash. Expiry is left to the caller.
func (r *AccessTokenRepository) FindByPlainToken(ctx context.Context, plain string) (domain.AccessToken, error) {
	plain = strings.TrimSpace(plain)
	if plain == "" {
		return domain.AccessToken{}, ErrNotFound
	}

	var (
		t         domain.AccessToken
		expiresAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, token_hash, user_id, role, expires_at FROM access_tokens WHERE token_hash = $1`,
		HashToken(plain),
	).Scan(&t.ID, &t.TokenHash, &t.UserID, &t.Role, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AccessToken{}, ErrNotFound
	}
	if err != nil {
		return domain.AccessToken{}, fmt.Errorf("find token: %w", err)
	}
	t.ExpiresAt = timePtr(expiresAt)
	return t, nil
}
