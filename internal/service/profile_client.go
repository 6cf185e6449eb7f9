package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"ticketshop/internal/util"
)

// Profile is the slice of the user service's profile the saga cares about
type Profile struct {
	Username    string     `json:"username"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

// ProfileClient fetches buyer profiles for eligibility checks
type ProfileClient struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// NewProfileClient creates a new profile service client
func NewProfileClient(baseURL string, timeout time.Duration) *ProfileClient {
	return &ProfileClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// GetProfile retrieves a buyer's profile. Any failure, including a missing
// profile, is an error: eligibility cannot be established without one.
func (pc *ProfileClient) GetProfile(ctx context.Context, username string) (*Profile, error) {
	ctx, span := util.StartSpan(ctx, "ProfileClient.GetProfile")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, pc.timeout)
	defer cancel()

	endpoint := pc.baseURL + "/api/v1/profiles/" + url.PathEscape(username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := pc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("profile not found for %s", username)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile lookup returned status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	return &profile, nil
}
