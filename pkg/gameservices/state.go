package gameservices

// AuthState is the position of a Session in the sign-in flow.
type AuthState int

const (
	// AuthStateStart is the state before the provider reports any activity.
	AuthStateStart AuthState = iota
	// AuthStateAutoAuthStarted means the provider is attempting a silent sign-in.
	AuthStateAutoAuthStarted
	// AuthStateAutoAuthFailed means the silent sign-in failed and the next Update launches the sign-in UI.
	AuthStateAutoAuthFailed
	// AuthStateAuthUILaunched means the sign-in UI was requested but the provider has not started it yet.
	AuthStateAuthUILaunched
	// AuthStateAuthUIStarted means the player is interacting with the sign-in UI.
	AuthStateAuthUIStarted
	// AuthStateAuthUIFailed means both sign-in paths failed. It is terminal.
	AuthStateAuthUIFailed
	// AuthStateAuthed means the player is signed in. It is terminal.
	AuthStateAuthed
)

func (s AuthState) String() string {
	switch s {
	case AuthStateStart:
		return "Start"
	case AuthStateAutoAuthStarted:
		return "AutoAuthStarted"
	case AuthStateAutoAuthFailed:
		return "AutoAuthFailed"
	case AuthStateAuthUILaunched:
		return "AuthUILaunched"
	case AuthStateAuthUIStarted:
		return "AuthUIStarted"
	case AuthStateAuthUIFailed:
		return "AuthUIFailed"
	case AuthStateAuthed:
		return "Authed"
	}
	return "Unknown"
}

// IsTerminal reports whether no event can move the session out of s.
func (s AuthState) IsTerminal() bool {
	return s == AuthStateAuthed || s == AuthStateAuthUIFailed
}

// authEvent is an input to the transition table.
type authEvent int

const (
	authEventStarted authEvent = iota
	authEventFinishedValid
	authEventFinishedInvalid
)

func (e authEvent) String() string {
	switch e {
	case authEventStarted:
		return "started"
	case authEventFinishedValid:
		return "finished(valid)"
	case authEventFinishedInvalid:
		return "finished(invalid)"
	}
	return "unknown"
}

type transitionKey struct {
	from  AuthState
	event authEvent
}

// transitions holds every callback-driven move. Pairs that are absent are
// out-of-contract and leave the state unchanged.
//
// A start event cannot tell silent from interactive sign-in by itself, so the
// current state decides: only AuthUILaunched leads to AuthUIStarted.
var transitions = map[transitionKey]AuthState{
	{AuthStateStart, authEventStarted}:           AuthStateAutoAuthStarted,
	{AuthStateAutoAuthStarted, authEventStarted}: AuthStateAutoAuthStarted,
	{AuthStateAutoAuthFailed, authEventStarted}:  AuthStateAutoAuthStarted,
	{AuthStateAuthUILaunched, authEventStarted}:  AuthStateAuthUIStarted,
	{AuthStateAuthUIStarted, authEventStarted}:   AuthStateAuthUIStarted,

	{AuthStateAutoAuthStarted, authEventFinishedValid}:   AuthStateAuthed,
	{AuthStateAutoAuthStarted, authEventFinishedInvalid}: AuthStateAutoAuthFailed,
	{AuthStateAuthUIStarted, authEventFinishedValid}:     AuthStateAuthed,
	{AuthStateAuthUIStarted, authEventFinishedInvalid}:   AuthStateAuthUIFailed,
}

// next returns the state reached from s on e, and false when the pair is not in
// the table.
func next(s AuthState, e authEvent) (AuthState, bool) {
	to, ok := transitions[transitionKey{s, e}]
	if !ok {
		return s, false
	}
	return to, true
}
