package domain

import (
	"errors"
	"fmt"
)

// Permission is a fine-grained capability gating a specific action or view.
type Permission string

const (
	// Data permissions
	PermViewHosts      Permission = "view_hosts"
	PermViewRecipients Permission = "view_recipients"
	PermViewDrivers    Permission = "view_drivers"
	PermEditData       Permission = "edit_data"
	PermDeleteData     Permission = "delete_data"

	// Feature permissions
	PermViewMeetings  Permission = "view_meetings"
	PermViewAnalytics Permission = "view_analytics"
	PermViewReports   Permission = "view_reports"
	PermViewProjects  Permission = "view_projects"
	PermViewCommittee Permission = "view_committee"

	// Admin permissions
	PermManageUsers Permission = "manage_users"
	PermSystemAdmin Permission = "system_admin"

	// Communication permissions
	PermSendMessages     Permission = "send_messages"
	PermModerateMessages Permission = "moderate_messages"
)

var ErrUnknownPermission = errors.New("unknown permission")

// allPermissions is the closed permission enumeration, in declaration order.
var allPermissions = []Permission{
	PermViewHosts,
	PermViewRecipients,
	PermViewDrivers,
	PermEditData,
	PermDeleteData,
	PermViewMeetings,
	PermViewAnalytics,
	PermViewReports,
	PermViewProjects,
	PermViewCommittee,
	PermManageUsers,
	PermSystemAdmin,
	PermSendMessages,
	PermModerateMessages,
}

var knownPermissions = func() map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(allPermissions))
	for _, p := range allPermissions {
		m[p] = struct{}{}
	}
	return m
}()

// AllPermissions returns a copy of the full permission enumeration.
func AllPermissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// Valid reports whether p belongs to the enumeration.
func (p Permission) Valid() bool {
	_, ok := knownPermissions[p]
	return ok
}

// ParsePermission converts a raw string into a Permission.
func ParsePermission(s string) (Permission, error) {
	p := Permission(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPermission, s)
	}
	return p, nil
}

// ParsePermissions converts a list of raw strings, failing on the first
// unknown value. Duplicates are collapsed, first occurrence wins.
func ParsePermissions(raw []string) ([]Permission, error) {
	out := make([]Permission, 0, len(raw))
	seen := make(map[Permission]struct{}, len(raw))
	for _, s := range raw {
		p, err := ParsePermission(s)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

// PermissionStrings is the inverse of ParsePermissions, used by storage and
// metrics code that deals in plain strings.
func PermissionStrings(ps []Permission) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}
