package models

import "time"

// Session is the authenticated caller as reported by the auth provider.
type Session struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// UserProfile is the per-user record that carries authorization roles.
type UserProfile struct {
	UID       string    `bson:"_id" json:"uid"`
	Email     string    `bson:"email" json:"email"`
	Roles     []string  `bson:"roles" json:"roles"`
	CreatedAt time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// HasRole reports whether the profile lists role.
func (p *UserProfile) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// GatewayClaims is the subset of JWT claims read when tokens were already
// verified by the API gateway.
type GatewayClaims struct {
	SUB               string `json:"sub"`
	UserID            string `json:"user_id"`
	Email             string `json:"email"`
	EmailVerified     bool   `json:"email_verified"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	ISS               string `json:"iss"`
	Exp               int64  `json:"exp"`
}

// UID returns the subject, falling back to the Firebase-style user_id claim.
func (c *GatewayClaims) UID() string {
	if c.SUB != "" {
		return c.SUB
	}
	return c.UserID
}
