package model

import "time"

// Employee roles and work statuses.  The role is a capability flag,
// not a hierarchy: admin checks are a boolean predicate over the
// profile (see EmployeeProfile.IsAdmin).
const (
    RoleEmployee = "EMPLOYEE"
    RoleAdmin    = "ADMIN"

    WorkActive   = "ACTIVE"
    WorkInactive = "INACTIVE"
)

// EmployeeProfile carries the organizational data attached to a user
// account.  The employee code doubles as the login name; profiles are
// deactivated (WorkStatus INACTIVE) rather than deleted so historical
// bookings keep their references.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – owning user account.
//  EmployeeCode – organizational employee code, unique.
//  FirstName    – given name.
//  LastName     – family name.
//  Division     – division the employee belongs to.
//  Department   – department within the division.
//  Position     – job title.
//  Role         – EMPLOYEE or ADMIN.
//  WorkStatus   – ACTIVE or INACTIVE.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type EmployeeProfile struct {
    ID           uint64    // employee_profiles.id
    UserID       uint64    // employee_profiles.user_id
    EmployeeCode string    // employee_profiles.employee_code
    FirstName    string    // employee_profiles.first_name
    LastName     string    // employee_profiles.last_name
    Division     string    // employee_profiles.division
    Department   string    // employee_profiles.department
    Position     string    // employee_profiles.position
    Role         string    // employee_profiles.role
    WorkStatus   string    // employee_profiles.work_status
    CreatedAt    time.Time // employee_profiles.created_at
    UpdatedAt    time.Time // employee_profiles.updated_at
}

// IsAdmin reports whether the profile may use the admin API.
func (p EmployeeProfile) IsAdmin() bool { return p.Role == RoleAdmin }

// FullName joins first and last name for display; falls back to the
// employee code when both are empty.
func (p EmployeeProfile) FullName() string {
    name := p.FirstName
    if p.LastName != "" {
        if name != "" {
            name += " "
        }
        name += p.LastName
    }
    if name == "" {
        return p.EmployeeCode
    }
    return name
}
