package models

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
	RoleSuperuser = "superuser"
)

// AllowedRoles lists every role a stored user may carry.
var AllowedRoles = []string{RoleUser, RoleModerator, RoleAdmin, RoleSuperuser}

func IsAllowedRole(role string) bool {
	for _, r := range AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID          int64   `csv:"id" db:"id" json:"id"`
	Username    string  `csv:"username" db:"username" json:"username"`
	Email       string  `csv:"email" db:"email" json:"email"`
	Role        string  `csv:"role" db:"role" json:"role"`
	Bio         *string `csv:"bio" db:"bio" json:"bio"`
	FirstName   *string `csv:"first_name" db:"first_name" json:"first_name"`
	LastName    *string `csv:"last_name" db:"last_name" json:"last_name"`
	IsSuperuser bool    `csv:"is_superuser" db:"is_superuser" json:"-"`
	IsStaff     bool    `csv:"is_staff" db:"is_staff" json:"-"`
	IsActive    bool    `csv:"is_active" db:"is_active" json:"-"`
}

// ApplyRoleFlags derives the staff/superuser/active flags from Role.
func (u *User) ApplyRoleFlags() {
	u.IsStaff = u.Role == RoleAdmin || u.Role == RoleSuperuser
	u.IsSuperuser = u.Role == RoleSuperuser
	u.IsActive = true
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsStaff || u.IsSuperuser
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}
