package session

import "testing"

func TestReduceIsPure(t *testing.T) {
	start := AnonymousState()

	in := Reduce(start, LoginIntent{Token: "tok", Identity: Identity{Username: "alice"}})
	if start.Authenticated() {
		t.Fatal("reduce mutated its input")
	}
	if !in.Authenticated() || in.Username() != "alice" || in.Token() != "tok" {
		t.Fatalf("unexpected state after login: %+v", in)
	}

	out := Reduce(in, LogoutIntent{})
	if out.Status() != Anonymous || out.Token() != "" {
		t.Fatalf("expected anonymous after logout, got %+v", out)
	}
	if !in.Authenticated() {
		t.Fatal("reduce mutated the authenticated input")
	}
}

func TestReduceUnknownIntentKeepsState(t *testing.T) {
	s := AuthenticatedState("tok", Identity{Username: "alice"})
	if got := Reduce(s, nil); !got.equal(s) {
		t.Fatalf("expected state unchanged, got %+v", got)
	}
}

func TestIdentityCopyIsDetached(t *testing.T) {
	s := AuthenticatedState("tok", Identity{Username: "alice"})
	id, _ := s.Identity()
	id.Username = "mallory"
	if s.Username() != "alice" {
		t.Fatal("identity copy leaked into state")
	}
}
