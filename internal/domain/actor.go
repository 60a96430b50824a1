package domain

// Actor is the resolved identity behind a request.
// A nil AccountID means the request is anonymous (guest contribution).
// Every core operation receives the Actor explicitly; nothing reads a
// "current user" from ambient state.
type Actor struct {
	AccountID *string
}

// Anonymous returns the guest Actor.
func Anonymous() Actor {
	return Actor{}
}

// AccountActor returns an Actor identified by id.
func AccountActor(id string) Actor {
	return Actor{AccountID: &id}
}

// IsAnonymous reports whether the actor has no resolved account.
func (a Actor) IsAnonymous() bool {
	return a.AccountID == nil || *a.AccountID == ""
}

// ID returns the account id, or "" for anonymous actors.
func (a Actor) ID() string {
	if a.IsAnonymous() {
		return ""
	}
	return *a.AccountID
}
