package goClient

import "errors"

var (
	// ErrUnauthorized is an exported constant or variable used by the API client.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is an exported constant or variable used by the API client.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRegistrationRejected is an exported constant or variable used by the API client.
	ErrRegistrationRejected = errors.New("registration rejected")
	// ErrNoRefreshToken is an exported constant or variable used by the API client.
	ErrNoRefreshToken = errors.New("no refresh token available")
	// ErrRefreshInvalid is an exported constant or variable used by the API client.
	ErrRefreshInvalid = errors.New("refresh rejected by server")
	// ErrRefreshTimeout is an exported constant or variable used by the API client.
	ErrRefreshTimeout = errors.New("timed out waiting for token refresh")
	// ErrClientNotReady is an exported constant or variable used by the API client.
	ErrClientNotReady = errors.New("client not initialized")
	// ErrClientClosed is an exported constant or variable used by the API client.
	ErrClientClosed = errors.New("client closed")
)
