package models

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleInfluencer UserRole = "influencer"
)

// Origin records where an identity came from. Demo identities always take
// the fallback write path.
type Origin string

const (
	OriginLive Origin = "live"
	OriginDemo Origin = "demo"
)

// UserSession is the signed-in user as the application sees it.
type UserSession struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	Role       UserRole `json:"role"`
	HasProfile bool     `json:"hasProfile"`
	Origin     Origin   `json:"origin"`
}

func (u UserSession) IsAdmin() bool { return u.Role == RoleAdmin }

func (u UserSession) IsDemo() bool { return u.Origin == OriginDemo }
