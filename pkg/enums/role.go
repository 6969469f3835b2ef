package enums

// Role identifies what an authenticated user may do.
type Role string

const (
	// RoleCustomer shops: cart, checkout, pay.
	RoleCustomer Role = "customer"
	// RoleMaster is full-privilege staff.
	RoleMaster Role = "master"
	// RoleSecond is fulfillment staff; it may only ship fully paid orders.
	RoleSecond Role = "second"
)

var roles = []Role{RoleCustomer, RoleMaster, RoleSecond}

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool { return oneOf(r, roles) }

// IsStaff reports whether the role belongs to shop staff.
func (r Role) IsStaff() bool {
	return r == RoleMaster || r == RoleSecond
}

func ParseRole(value string) (Role, error) {
	return parseOneOf("role", value, roles)
}
