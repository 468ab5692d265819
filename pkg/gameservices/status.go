package gameservices

// AuthOperation identifies the kind of auth action a provider reports on.
type AuthOperation int

const (
	AuthOperationSignIn AuthOperation = iota
	AuthOperationSignOut
)

func (o AuthOperation) String() string {
	switch o {
	case AuthOperationSignIn:
		return "SignIn"
	case AuthOperationSignOut:
		return "SignOut"
	}
	return "Unknown"
}

// AuthStatus is the outcome of a finished auth action.
type AuthStatus int

const (
	AuthStatusValid AuthStatus = iota
	AuthStatusErrorInternal
	AuthStatusErrorNotAuthorized
	AuthStatusErrorVersionUpdateRequired
	AuthStatusErrorTimeout
	AuthStatusErrorCanceled
	AuthStatusErrorNetworkOperationFailed
)

func (s AuthStatus) String() string {
	switch s {
	case AuthStatusValid:
		return "Valid"
	case AuthStatusErrorInternal:
		return "ErrorInternal"
	case AuthStatusErrorNotAuthorized:
		return "ErrorNotAuthorized"
	case AuthStatusErrorVersionUpdateRequired:
		return "ErrorVersionUpdateRequired"
	case AuthStatusErrorTimeout:
		return "ErrorTimeout"
	case AuthStatusErrorCanceled:
		return "ErrorCanceled"
	case AuthStatusErrorNetworkOperationFailed:
		return "ErrorNetworkOperationFailed"
	}
	return "Unknown"
}

// IsSuccess reports whether s signals a signed-in player.
func (s AuthStatus) IsSuccess() bool {
	return s == AuthStatusValid
}
