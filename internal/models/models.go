package models

// User is keyed by a unique, immutable username. The password is only
// ever stored as a bcrypt hash, and RefreshToken is a single slot:
// issuing a new refresh token overwrites the previous one.
type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	Nickname     string `gorm:"not null"                 json:"nickname"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	RefreshToken string `json:"-"`
	Roles        []Role `gorm:"many2many:user_roles;"    json:"roles"`
}

// Role is a named authority, created on first reference.
type Role struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Authority string `gorm:"unique;not null"          json:"authority"`
}

// DefaultAuthority is attached to every newly registered user.
const DefaultAuthority = "ROLE_USER"

// Authorities returns the user's authority names in role order.
func (u *User) Authorities() []string {
	names := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		names[i] = r.Authority
	}
	return names
}
