package domain

import "time"

// Role enumerates access levels within the utility.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleTechnician Role = "technician"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// StaffRoles lists roles an admin may assign through staff creation.
var StaffRoles = []Role{RoleTechnician, RoleSupervisor, RoleAdmin}

// IsStaff reports whether the role belongs to utility personnel.
func (r Role) IsStaff() bool {
	return r == RoleTechnician || r == RoleSupervisor || r == RoleAdmin
}

// IsValidStaffRole reports whether the role may be assigned via staff creation.
func IsValidStaffRole(r Role) bool {
	for _, role := range StaffRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User is the single identity model for customers and staff alike.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Phone        string
	Address      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
