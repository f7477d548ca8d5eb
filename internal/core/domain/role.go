package domain

import (
	"errors"
	"fmt"
)

// Role is a named category of user determining its default capabilities.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleCoordinator Role = "coordinator"
	RoleVolunteer   Role = "volunteer"
	RoleHost        Role = "host"
	RoleDriver      Role = "driver"
	RoleViewer      Role = "viewer"
)

var ErrUnknownRole = errors.New("unknown role")

var allRoles = []Role{
	RoleAdmin,
	RoleCoordinator,
	RoleVolunteer,
	RoleHost,
	RoleDriver,
	RoleViewer,
}

var roleDisplayNames = map[Role]string{
	RoleAdmin:       "Administrator",
	RoleCoordinator: "Coordinator",
	RoleVolunteer:   "Volunteer",
	RoleHost:        "Host",
	RoleDriver:      "Driver",
	RoleViewer:      "Viewer",
}

// rolePermissions is the default role -> permission table. It is built once at
// package init and never written afterwards.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: allPermissions,
	RoleCoordinator: {
		PermViewHosts,
		PermViewRecipients,
		PermViewDrivers,
		PermEditData,
		PermViewMeetings,
		PermViewAnalytics,
		PermViewReports,
		PermViewProjects,
		PermViewCommittee,
		PermSendMessages,
		PermModerateMessages,
	},
	RoleVolunteer: {
		PermViewHosts,
		PermViewRecipients,
		PermViewDrivers,
		PermViewMeetings,
		PermViewProjects,
		PermSendMessages,
	},
	RoleHost: {
		PermViewDrivers,
		PermViewMeetings,
		PermSendMessages,
	},
	RoleDriver: {
		PermViewHosts,
		PermViewRecipients,
		PermViewMeetings,
		PermSendMessages,
	},
	RoleViewer: {
		PermViewAnalytics,
		PermViewReports,
	},
}

// Roles returns a copy of the role enumeration.
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// Valid reports whether r belongs to the enumeration.
func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// DisplayName returns the human-readable label, or "Unknown" for values
// outside the enumeration.
func (r Role) DisplayName() string {
	if name, ok := roleDisplayNames[r]; ok {
		return name
	}
	return "Unknown"
}

// ParseRole converts a raw string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// DefaultPermissionsForRole returns the default permission set for role. An
// unknown role yields an empty, non-nil slice. The result is a fresh copy the
// caller may modify.
func DefaultPermissionsForRole(role Role) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}
