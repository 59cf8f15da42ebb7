package domain

// ActorKind distinguishes human-initiated actions from automated ones.
type ActorKind string

const (
	ActorUser   ActorKind = "USER"
	ActorSystem ActorKind = "SYSTEM"
)

// Actor identifies who performed an operation. Automated sweeps use the System
// variant rather than a magic user identifier.
type Actor struct {
	Kind ActorKind `json:"kind"`
	ID   string    `json:"id"` // empty for the System variant
}

// UserActor builds an actor for a human operator or channel user.
func UserActor(id string) Actor {
	return Actor{Kind: ActorUser, ID: id}
}

// SystemActor is the distinguished identity used by scheduled maintenance.
func SystemActor() Actor {
	return Actor{Kind: ActorSystem}
}

// Ref returns the string stored in audit columns for this actor.
func (a Actor) Ref() string {
	if a.Kind == ActorSystem {
		return "system"
	}
	return a.ID
}
