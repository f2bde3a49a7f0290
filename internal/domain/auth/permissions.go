package auth

import "context"

const (
	PermOnboardingSelf    = "onboarding.self"
	PermOnboardingReview  = "onboarding.review"
	PermOnboardingPromote = "onboarding.promote"
	PermOnboardingHire    = "onboarding.hire"
	PermLeaveRead         = "leave.read"
	PermLeaveRequest      = "leave.request"
	PermLeaveManagerAct   = "leave.manager_decide"
	PermLeaveHRAct        = "leave.hr_decide"
	PermAttendanceRead    = "attendance.read"
	PermAuditRead         = "audit.read"
)

var DefaultPermissions = []string{
	PermOnboardingSelf,
	PermOnboardingReview,
	PermOnboardingPromote,
	PermOnboardingHire,
	PermLeaveRead,
	PermLeaveRequest,
	PermLeaveManagerAct,
	PermLeaveHRAct,
	PermAttendanceRead,
	PermAuditRead,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermOnboardingSelf,
		PermLeaveRead,
		PermLeaveRequest,
		PermAttendanceRead,
	},
	RoleManager: {
		PermLeaveRead,
		PermLeaveRequest,
		PermLeaveManagerAct,
		PermAttendanceRead,
	},
	RoleHR: {
		PermOnboardingReview,
		PermOnboardingPromote,
		PermOnboardingHire,
		PermLeaveRead,
		PermLeaveHRAct,
		PermAttendanceRead,
		PermAuditRead,
	},
}

// StaticPermissions answers permission checks from RolePermissions.
type StaticPermissions struct {
	grants map[string]map[string]struct{}
}

func NewStaticPermissions() *StaticPermissions {
	grants := make(map[string]map[string]struct{}, len(RolePermissions))
	for role, perms := range RolePermissions {
		set := make(map[string]struct{}, len(perms))
		for _, perm := range perms {
			set[perm] = struct{}{}
		}
		grants[role] = set
	}
	return &StaticPermissions{grants: grants}
}

func (p *StaticPermissions) HasPermission(_ context.Context, roleName, permission string) (bool, error) {
	_, ok := p.grants[roleName][permission]
	return ok, nil
}
