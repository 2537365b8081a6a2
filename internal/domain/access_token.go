package domain

import "time"

type AccessToken struct {
	ID        int64
	TokenHash string
	UserID    string
	Role      string
	ExpiresAt *time.Time
}

func (t AccessToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && t.ExpiresAt.Before(now)
}
