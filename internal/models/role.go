package models

// Role is the persisted authorization level of a user.
type Role string

const (
	RoleCitizen       Role = "citizen"
	RoleCouncilMember Role = "council_member"
	RoleCityAdmin     Role = "city_admin"
	RoleSuperAdmin    Role = "super_admin"
)

// RoleNone is the floor of operations open to anonymous callers.
const RoleNone Role = ""

var roleRank = map[Role]int{
	RoleCitizen:       1,
	RoleCouncilMember: 2,
	RoleCityAdmin:     3,
	RoleSuperAdmin:    4,
}

// Rank orders roles citizen < council_member < city_admin < super_admin.
// Unknown roles rank below every floor.
func (r Role) Rank() int {
	if rank, ok := roleRank[r]; ok {
		return rank
	}
	return -1
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r satisfies the given floor. RoleNone as a floor is
// satisfied by every role, including unknown ones.
func (r Role) AtLeast(floor Role) bool {
	if floor == RoleNone {
		return true
	}
	rank := r.Rank()
	return rank > 0 && rank >= floor.Rank()
}

// RequiresMunicipality is true for every role below super admin.
func (r Role) RequiresMunicipality() bool {
	return r != RoleSuperAdmin
}

func (r Role) String() string {
	return string(r)
}
