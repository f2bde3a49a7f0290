package auth

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
)

var Roles = []string{RoleEmployee, RoleManager, RoleHR}

// UserContext is the identity attached to an authenticated request.
type UserContext struct {
	UserID   string
	RoleName string
	Email    string
}

func (u UserContext) HasRole(role string) bool {
	return u.RoleName == role
}

func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}
