package models

// Profile is the auth-side account row keyed by user id.
type Profile struct {
	ID        string   `json:"id" gorm:"primaryKey"`
	Email     string   `json:"email"`
	Role      UserRole `json:"role"`
	FullName  string   `json:"full_name"`
	AvatarURL string   `json:"avatar_url"`
}

func (Profile) TableName() string { return "profiles" }
