package domain

// Identity is the caller of an operation: either Authenticated(user) or Anonymous.
// Read paths that personalize output take an Identity instead of checking for a
// user ad hoc.
type Identity struct {
	user *User
}

// Anonymous returns the identity of an unauthenticated caller.
func Anonymous() Identity {
	return Identity{}
}

// Authenticated returns the identity of a resolved user. A nil user yields Anonymous.
func Authenticated(user *User) Identity {
	return Identity{user: user}
}

// User returns the authenticated user, or false for Anonymous.
func (i Identity) User() (*User, bool) {
	return i.user, i.user != nil
}

// IsAuthenticated reports whether the identity carries a user.
func (i Identity) IsAuthenticated() bool {
	return i.user != nil
}

// UserID returns the user id, or "" for Anonymous.
func (i Identity) UserID() string {
	if i.user == nil {
		return ""
	}
	return i.user.ID
}

// Is reports whether the identity is the given user.
func (i Identity) Is(userID string) bool {
	return i.user != nil && userID != "" && i.user.ID == userID
}
