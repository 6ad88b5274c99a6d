package actor

type Role string

const (
	RoleUser  Role = "USER"
	RoleAgent Role = "AGENT"
	RoleAdmin Role = "ADMIN"
	// RoleSystem is used by the scheduler; never accepted from a client.
	RoleSystem Role = "SYSTEM"
)

// Actor is the caller of an operation. Identity is resolved upstream; the
// core only compares ids and checks the admin role.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Is reports whether the actor is the given user.
func (a Actor) Is(userID string) bool { return a.UserID != "" && a.UserID == userID }

func System() Actor { return Actor{UserID: "system", Role: RoleSystem} }
