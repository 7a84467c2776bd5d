package session

// User defines a public type used by goClient APIs.
//
// User instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Session defines a public type used by goClient APIs.
//
// Session instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *User

	// IsAuthenticated is derived: true iff both tokens are present.
	IsAuthenticated bool
}

func derive(accessToken, refreshToken string, user *User) Session {
	return Session{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		User:            user,
		IsAuthenticated: accessToken != "" && refreshToken != "",
	}
}
