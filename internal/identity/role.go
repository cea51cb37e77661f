package identity

import "fmt"

// Role is the closed set of principal roles the platform knows about.
// Authorization points switch over it exhaustively; an unknown role never
// makes it past ParseRole.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleRespondent Role = "respondent"
	RoleModerator  Role = "moderator"
)

// ParseRole validates a raw role string
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleCustomer, RoleRespondent, RoleModerator:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Principal is an authenticated caller as supplied by the identity
// collaborator
type Principal struct {
	UserID int64
	Role   Role
}
