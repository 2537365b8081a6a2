package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"classroom-ledger/internal/domain"
)

type tokenTable map[string]domain.AccessToken

func (t tokenTable) FindByPlainToken(_ context.Context, plain string) (domain.AccessToken, error) {
	tok, ok := t[plain]
	if !ok {
		return domain.AccessToken{}, errors.New("not found")
	}
	return tok, nil
}

func TestTokenMiddleware(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	tokens := tokenTable{
		"good":    {ID: 1, UserID: "staff-1", Role: "teacher"},
		"expired": {ID: 2, UserID: "staff-2", ExpiresAt: &past},
	}

	var seen string
	h := TokenMiddleware(tokens, func() time.Time { return now })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUserID(r.Context())
		assert.Equal(t, "teacher", GetRole(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		query  string
		want   int
		user   string
	}{
		{name: "header", header: "Bearer good", want: http.StatusNoContent, user: "staff-1"},
		{name: "query param", query: "?token=good", want: http.StatusNoContent, user: "staff-1"},
		{name: "missing", want: http.StatusUnauthorized},
		{name: "unknown", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer expired", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/payments/stats"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.user, seen)
		})
	}
}

func TestGetUserID_Missing(t *testing.T) {
	_, err := GetUserID(context.Background())
	assert.ErrorIs(t, err, ErrNoUser)
}
