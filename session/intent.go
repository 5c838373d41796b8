package session

// Intent is a requested state transition: either [LoginIntent] or [LogoutIntent].
type Intent interface {
	isIntent()
}

// LoginIntent replaces the current identity.
type LoginIntent struct {
	Token    string
	Identity Identity
}

// LogoutIntent clears the current identity.
type LogoutIntent struct{}

func (LoginIntent) isIntent()  {}
func (LogoutIntent) isIntent() {}

// Reduce folds intent into s and returns the next state. It has no side effects.
func Reduce(s State, intent Intent) State {
	switch in := intent.(type) {
	case LoginIntent:
		return AuthenticatedState(in.Token, in.Identity)
	case LogoutIntent:
		return AnonymousState()
	default:
		return s
	}
}
