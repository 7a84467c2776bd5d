package goClient

import (
	"time"

	"github.com/MrEthical07/goClient/session"
)

// User defines a public type used by goClient APIs.
//
// User instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type User = session.User

// SessionInfo defines a public type used by goClient APIs.
//
// SessionInfo instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionInfo struct {
	User            *User
	IsAuthenticated bool

	// AccessTokenExpiry is decoded from the access token's exp claim; zero
	// when the token is absent or opaque.
	AccessTokenExpiry time.Time
}

// RegisterResult defines a public type used by goClient APIs.
//
// RegisterResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RegisterResult struct {
	User *User

	// AutoLoggedIn is true when the registration response carried a token
	// pair and the session was established. When false the caller must log
	// in explicitly.
	AutoLoggedIn bool
}

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the success shape shared by /login/ and /register/. Tokens
// are optional on /register/: their absence means registration succeeded
// without auto-login.
type authResponse struct {
	Access  string        `json:"access"`
	Refresh string        `json:"refresh"`
	User    *session.User `json:"user"`
}

type refreshPayload struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}
