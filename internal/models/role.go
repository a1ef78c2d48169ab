package models

// Role is the closed set of account roles.
type Role string

const (
	RoleManager Role = "manager"
	RoleDriver  Role = "driver"
)

func (r Role) Valid() bool {
	switch r {
	case RoleManager, RoleDriver:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }
