package goClient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Artist defines a public type used by goClient APIs.
//
// Artist instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AvailabilityRequest defines a public type used by goClient APIs.
//
// AvailabilityRequest instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AvailabilityRequest struct {
	ArtistID string   `json:"artist_id"`
	Dates    []string `json:"dates"`
	Notes    string   `json:"notes,omitempty"`
}

// Availability defines a public type used by goClient APIs.
//
// Availability instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Availability struct {
	ID       string   `json:"id"`
	ArtistID string   `json:"artist_id"`
	Dates    []string `json:"dates"`
	Notes    string   `json:"notes,omitempty"`
}

// ListArtists describes the listartists operation and its observable behavior.
//
// ListArtists may return an error when input validation, dependency calls, or security checks fail.
// ListArtists does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) ListArtists(ctx context.Context) ([]Artist, error) {
	resp, err := c.Get(ctx, "/artists/", nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list artists failed: unexpected status %d", resp.StatusCode)
	}

	var artists []Artist
	if err := json.Unmarshal(resp.Body, &artists); err != nil {
		return nil, fmt.Errorf("list artists failed: malformed response: %w", err)
	}
	return artists, nil
}

// SubmitAvailability describes the submitavailability operation and its observable behavior.
//
// SubmitAvailability may return an error when input validation, dependency calls, or security checks fail.
// SubmitAvailability does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) SubmitAvailability(ctx context.Context, req AvailabilityRequest) (*Availability, error) {
	resp, err := c.Post(ctx, "/availability/", req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("submit availability failed: unexpected status %d", resp.StatusCode)
	}

	var out Availability
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("submit availability failed: malformed response: %w", err)
	}
	return &out, nil
}

// ListAvailability describes the listavailability operation and its observable behavior.
//
// ListAvailability may return an error when input validation, dependency calls, or security checks fail.
// ListAvailability does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) ListAvailability(ctx context.Context, artistID string) ([]Availability, error) {
	query := url.Values{}
	if artistID != "" {
		query.Set("artist_id", artistID)
	}

	resp, err := c.Get(ctx, "/availability/", query)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list availability failed: unexpected status %d", resp.StatusCode)
	}

	var out []Availability
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("list availability failed: malformed response: %w", err)
	}
	return out, nil
}
