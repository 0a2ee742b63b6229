package sessions

import "time"

// RefreshToken is one row of the server-side refresh registry. A token
// is usable iff its row exists and has not expired.
type RefreshToken struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}
