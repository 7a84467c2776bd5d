package session

import (
	"encoding/json"
	"errors"
)

// Record schema versions. The codec is append-only: new versions add fields but
// never reinterpret old ones.
const (
	schemaV1      = 1
	schemaCurrent = schemaV1
)

// ErrRecordCorrupt is an exported constant or variable used by the API client.
var ErrRecordCorrupt = errors.New("session record corrupt")

type record struct {
	SchemaVersion   int    `json:"v"`
	AccessToken     string `json:"accessToken,omitempty"`
	RefreshToken    string `json:"refreshToken,omitempty"`
	User            *User  `json:"user,omitempty"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

func encodeRecord(s Session) ([]byte, error) {
	return json.Marshal(record{
		SchemaVersion:   schemaCurrent,
		AccessToken:     s.AccessToken,
		RefreshToken:    s.RefreshToken,
		User:            s.User,
		IsAuthenticated: s.IsAuthenticated,
	})
}

func decodeRecord(data []byte) (Session, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return Session{}, errors.Join(ErrRecordCorrupt, err)
	}
	if r.SchemaVersion < schemaV1 || r.SchemaVersion > schemaCurrent {
		return Session{}, ErrRecordCorrupt
	}

	// IsAuthenticated is always re-derived; a stored flag that disagrees with
	// the token pair is not trusted.
	return derive(r.AccessToken, r.RefreshToken, r.User), nil
}
