package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cbodonnell/gameservices/pkg/log"
)

const (
	DefaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	DefaultSecureTokenURL     = "https://securetoken.googleapis.com/v1"
)

var _ AuthHandler = &FirebaseAuthHandler{}

// FirebaseAuthHandler implements AuthHandler using Firebase Auth REST API
type FirebaseAuthHandler struct {
	apiKey             string
	identityToolkitURL string
	secureTokenURL     string
	client             *http.Client
}

type NewFirebaseAuthHandlerOptions struct {
	APIKey string
	// IdentityToolkitURL defaults to DefaultIdentityToolkitURL.
	IdentityToolkitURL string
	// SecureTokenURL defaults to DefaultSecureTokenURL.
	SecureTokenURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// NewFirebaseAuthHandler creates a new instance of FirebaseAuthHandler
func NewFirebaseAuthHandler(opts NewFirebaseAuthHandlerOptions) *FirebaseAuthHandler {
	h := &FirebaseAuthHandler{
		apiKey:             opts.APIKey,
		identityToolkitURL: opts.IdentityToolkitURL,
		secureTokenURL:     opts.SecureTokenURL,
		client:             opts.HTTPClient,
	}
	if h.identityToolkitURL == "" {
		h.identityToolkitURL = DefaultIdentityToolkitURL
	}
	if h.secureTokenURL == "" {
		h.secureTokenURL = DefaultSecureTokenURL
	}
	if h.client == nil {
		h.client = http.DefaultClient
	}
	return h
}

// ErrorResponseBody is the response body for an error
// https://firebase.google.com/docs/reference/rest/auth#section-error-format
type ErrorResponseBody struct {
	Error struct {
		Code    int                  `json:"code"`
		Message ErrorResponseMessage `json:"message"`
		Errors  []struct {
			Message string `json:"message"`
			Domain  string `json:"domain"`
			Reason  string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

type ErrorResponseMessage string

const (
	ErrorEmailExists             ErrorResponseMessage = "EMAIL_EXISTS"
	ErrorOperationNotAllowed     ErrorResponseMessage = "OPERATION_NOT_ALLOWED"
	ErrorTooManyAttempts         ErrorResponseMessage = "TOO_MANY_ATTEMPTS_TRY_LATER"
	ErrorInvalidEmail            ErrorResponseMessage = "INVALID_EMAIL"
	ErrorInvalidLoginCredentials ErrorResponseMessage = "INVALID_LOGIN_CREDENTIALS"
	ErrorTokenExpired            ErrorResponseMessage = "TOKEN_EXPIRED"
	ErrorInvalidRefreshToken     ErrorResponseMessage = "INVALID_REFRESH_TOKEN"
	ErrorInvalidIDToken          ErrorResponseMessage = "INVALID_ID_TOKEN"
	ErrorUserNotFound            ErrorResponseMessage = "USER_NOT_FOUND"
	ErrorUserDisabled            ErrorResponseMessage = "USER_DISABLED"
	ErrorWeakPassword            ErrorResponseMessage = "WEAK_PASSWORD"
)

// clientMessages maps Firebase error messages to what the player is told.
// Anything else is reported as an internal error.
var clientMessages = map[ErrorResponseMessage]string{
	ErrorEmailExists:             "Email already exists",
	ErrorOperationNotAllowed:     "Operation not allowed",
	ErrorTooManyAttempts:         "Too many attempts, try again later",
	ErrorInvalidEmail:            "Invalid email",
	ErrorInvalidLoginCredentials: "Invalid credentials",
	ErrorTokenExpired:            "Token expired",
	ErrorInvalidRefreshToken:     "Invalid refresh token",
	ErrorInvalidIDToken:          "Invalid ID token",
	ErrorUserNotFound:            "User not found",
	ErrorUserDisabled:            "User disabled",
	ErrorWeakPassword:            "Password should be at least 6 characters",
}

// rejectedCredentials are the messages that mean the token or account itself
// is no good. They are answered with 401 so clients know to drop what they
// stored; other player messages are 400 and worth retrying.
var rejectedCredentials = map[ErrorResponseMessage]bool{
	ErrorTokenExpired:        true,
	ErrorInvalidRefreshToken: true,
	ErrorInvalidIDToken:      true,
	ErrorUserNotFound:        true,
	ErrorUserDisabled:        true,
}

// firebaseError is a non-200 reply from Firebase.
type firebaseError struct {
	status string
	body   *ErrorResponseBody
}

func (e *firebaseError) Error() string {
	return fmt.Sprintf("firebase error: status: %s, message: %s", e.status, e.body.Error.Message)
}

func (e *firebaseError) code() ErrorResponseMessage {
	// Some messages carry detail after the code, e.g. "WEAK_PASSWORD : Password should be ...".
	code, _, _ := strings.Cut(string(e.body.Error.Message), " ")
	return ErrorResponseMessage(code)
}

// clientMessage returns the message for the player, or false if the error is not theirs to fix.
func (e *firebaseError) clientMessage() (string, bool) {
	msg, ok := clientMessages[e.code()]
	return msg, ok
}

// post sends payload as JSON to url and decodes a 200 reply into out.
func (s *FirebaseAuthHandler) post(ctx context.Context, url string, payload interface{}, out interface{}) error {
	body := bytes.NewBuffer(nil)
	if err := json.NewEncoder(body).Encode(payload); err != nil {
		return fmt.Errorf("error encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"?key="+s.apiKey, body)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorResponse := &ErrorResponseBody{}
		if err := json.NewDecoder(resp.Body).Decode(errorResponse); err != nil {
			return fmt.Errorf("failed to decode error response with status %s: %w", resp.Status, err)
		}
		return &firebaseError{status: resp.Status, body: errorResponse}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}

// writeError reports err to the caller. Firebase errors the player can act on
// get a readable message, with 401 for rejected credentials and 400 otherwise.
// Everything else is a 500 with fallback.
func writeError(w http.ResponseWriter, err error, fallback string) {
	if fbErr, ok := err.(*firebaseError); ok {
		if msg, ok := fbErr.clientMessage(); ok {
			status := http.StatusBadRequest
			if rejectedCredentials[fbErr.code()] {
				status = http.StatusUnauthorized
			}
			http.Error(w, msg, status)
			return
		}
		log.Error("unhandled error response message: %s", fbErr.body.Error.Message)
	} else {
		log.Error("%s: %v", fallback, err)
	}
	http.Error(w, fallback, http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("error encoding response: %v", err)
	}
}

// RegisterRequestBody is the request body for the register endpoint
type RegisterRequestBody struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// RegisterResponseBody is the response body for the register endpoint
type RegisterResponseBody struct {
	IDToken      string `json:"idToken"`
	Email        string `json:"email"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
}

// HandleRegister handles requests to the register endpoint
// https://firebase.google.com/docs/reference/rest/auth#section-create-email-password
func (s *FirebaseAuthHandler) HandleRegister() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		email, password, ok := credentialsFromForm(w, r)
		if !ok {
			return
		}

		responsePayload := &RegisterResponseBody{}
		err := s.post(r.Context(), s.identityToolkitURL+"/accounts:signUp", &RegisterRequestBody{
			Email:             email,
			Password:          password,
			ReturnSecureToken: true,
		}, responsePayload)
		if err != nil {
			writeError(w, err, "Failed to register")
			return
		}

		writeJSON(w, responsePayload)
	}
}

// LoginRequestBody is the request body for the login endpoint
type LoginRequestBody struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// LoginResponseBody is the response body for the login endpoint
type LoginResponseBody struct {
	IDToken      string `json:"idToken"`
	Email        string `json:"email"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Registered   bool   `json:"registered"`
}

// HandleLogin handles requests to the login endpoint
// https://firebase.google.com/docs/reference/rest/auth#section-sign-in-email-password
func (s *FirebaseAuthHandler) HandleLogin() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		email, password, ok := credentialsFromForm(w, r)
		if !ok {
			return
		}

		responsePayload := &LoginResponseBody{}
		err := s.post(r.Context(), s.identityToolkitURL+"/accounts:signInWithPassword", &LoginRequestBody{
			Email:             email,
			Password:          password,
			ReturnSecureToken: true,
		}, responsePayload)
		if err != nil {
			writeError(w, err, "Failed to login")
			return
		}

		writeJSON(w, responsePayload)
	}
}

// RefreshRequestBody is the request body for the refresh endpoint
type RefreshRequestBody struct {
	GrantType    string `json:"grant_type"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponseBody is the response body for the refresh endpoint
type RefreshResponseBody struct {
	ExpiresIn    string `json:"expires_in"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	UserID       string `json:"user_id"`
	ProjectID    string `json:"project_id"`
}

// HandleRefresh handles requests to the refresh endpoint
// https://firebase.google.com/docs/reference/rest/auth#section-refresh-token
func (s *FirebaseAuthHandler) HandleRefresh() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		refreshToken := r.FormValue("refreshToken")
		if refreshToken == "" {
			http.Error(w, "Missing refresh token", http.StatusBadRequest)
			return
		}

		responsePayload := &RefreshResponseBody{}
		err := s.post(r.Context(), s.secureTokenURL+"/token", &RefreshRequestBody{
			GrantType:    "refresh_token",
			RefreshToken: refreshToken,
		}, responsePayload)
		if err != nil {
			writeError(w, err, "Failed to refresh")
			return
		}

		writeJSON(w, responsePayload)
	}
}

// DeleteRequestBody is the request body for the delete endpoint
type DeleteRequestBody struct {
	IDToken string `json:"idToken"`
}

// HandleDelete handles requests to the delete endpoint
// https://firebase.google.com/docs/reference/rest/auth#section-delete-account
func (s *FirebaseAuthHandler) HandleDelete() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		idToken := r.FormValue("idToken")
		if idToken == "" {
			http.Error(w, "Missing ID token", http.StatusBadRequest)
			return
		}

		err := s.post(r.Context(), s.identityToolkitURL+"/accounts:delete", &DeleteRequestBody{
			IDToken: idToken,
		}, nil)
		if err != nil {
			writeError(w, err, "Failed to delete")
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func credentialsFromForm(w http.ResponseWriter, r *http.Request) (email, password string, ok bool) {
	email = r.FormValue("email")
	password = r.FormValue("password")

	if email == "" {
		http.Error(w, "Missing email", http.StatusBadRequest)
		return "", "", false
	}
	if password == "" {
		http.Error(w, "Missing password", http.StatusBadRequest)
		return "", "", false
	}
	return email, password, true
}
