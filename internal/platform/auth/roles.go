package auth

// Role is the enumerated role carried in the token.
type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Capability names one action a route can be gated on.
type Capability string

const (
	CapOrderCreate   Capability = "order:create"
	CapOrderRead     Capability = "order:read"
	CapOrderManage   Capability = "order:manage"
	CapOrderFulfil   Capability = "order:fulfil"
	CapPaymentCreate Capability = "payment:create"
	CapPaymentVerify Capability = "payment:verify"
	CapPaymentRead   Capability = "payment:read"
)

var buyerCapabilities = []Capability{
	CapOrderCreate,
	CapOrderRead,
	CapOrderManage,
	CapPaymentCreate,
	CapPaymentVerify,
	CapPaymentRead,
}

var roleCapabilities = map[Role]map[Capability]bool{
	RoleUser:   set(buyerCapabilities...),
	RoleSeller: set(CapOrderFulfil),
	RoleAdmin:  set(append(buyerCapabilities, CapOrderFulfil)...),
}

func set(caps ...Capability) map[Capability]bool {
	m := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		m[c] = true
	}
	return m
}

func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := roleCapabilities[r]
	return r, ok
}

// Can reports whether r grants c.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}
