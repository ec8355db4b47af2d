package domain

import "time"

// Role is the closed set of actor kinds.
type Role string

const (
	RoleCitizen  Role = "citizen"
	RoleOfficial Role = "official"
)

// ParseRole returns the Role named by s, or false when s is not a known role.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleCitizen, RoleOfficial:
		return r, true
	}
	return "", false
}

// User models a registered actor. MunicipalityID is empty for citizens whose
// home location could not be resolved yet; it is always set for officials.
type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Role           Role
	MunicipalityID string
	HomeAddress    string
	Lat            *float64
	Lng            *float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Caller is the identity resolved once per request from the bearer credential.
type Caller struct {
	ID             string
	Role           Role
	MunicipalityID string
}

// CallerOf builds the request identity from a stored user.
func CallerOf(u *User) Caller {
	return Caller{ID: u.ID, Role: u.Role, MunicipalityID: u.MunicipalityID}
}

func (c Caller) IsCitizen() bool  { return c.Role == RoleCitizen }
func (c Caller) IsOfficial() bool { return c.Role == RoleOfficial }

// InMunicipality reports whether the caller belongs to municipality id.
// An unresolved caller municipality never matches.
func (c Caller) InMunicipality(id string) bool {
	return c.MunicipalityID != "" && c.MunicipalityID == id
}
