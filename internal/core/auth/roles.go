package auth

// Role is the capability set attached to a session. Anything unknown
// degrades to RoleUser.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func ParseRole(s string) Role {
	if s == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

type Capability string

const (
	CapViewCatalog   Capability = "catalog:view"
	CapViewDashboard Capability = "dashboard:view"
	CapEditProfile   Capability = "profile:edit"
	CapCreateProduct Capability = "product:create"
	CapManageUsers   Capability = "users:manage"
)

// capabilities is the single source of truth for what each role may do;
// both the navigation filter and mutating API boundaries consult it.
var capabilities = map[Role][]Capability{
	RoleUser: {
		CapViewCatalog,
		CapViewDashboard,
		CapEditProfile,
	},
	RoleAdmin: {
		CapViewCatalog,
		CapViewDashboard,
		CapEditProfile,
		CapCreateProduct,
		CapManageUsers,
	},
}

func (r Role) Can(c Capability) bool {
	for _, have := range capabilities[r] {
		if have == c {
			return true
		}
	}
	return false
}

func (r Role) Capabilities() []Capability {
	caps := capabilities[r]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}
