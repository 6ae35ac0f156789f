package auth

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Normalize maps any unrecognised role onto the most restricted one.
func Normalize(role string) Role {
	switch Role(role) {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return Role(role)
	default:
		return RoleStudent
	}
}

// Identity is what the identity provider tells us about the caller.
type Identity struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanAuthor reports whether the identity may publish notices.
func (i Identity) CanAuthor() bool {
	return i.Role == RoleAdmin || i.Role == RoleTeacher
}
