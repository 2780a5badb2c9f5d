// Package infiniteflight reads sessions and ATIS from the Infinite Flight Live public API.
package infiniteflight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"vaops/internal/integration"
)

const DefaultBaseURL = "https://api.infiniteflight.com/public/v2"

// ErrNoATIS is returned when the airport has no active ATIS frequency in the session.
var ErrNoATIS = errors.New("no active ATIS")

// envelope is the {errorCode, result} wrapper of every v2 response. 0 means OK.
type envelope[T any] struct {
	ErrorCode int `json:"errorCode"`
	Result    T   `json:"result"`
}

type Session struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MaxUsers    int    `json:"maxUsers"`
	UserCount   int    `json:"userCount"`
	Type        int    `json:"type"`
	WorldType   int    `json:"worldType"`
	MinGrade    int    `json:"minimumGradeLevel"`
	MinAppVer   string `json:"minimumAppVersion"`
	Description string `json:"description"`
}

type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

func NewClient(baseURL, apiKey string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, hc: hc}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

func (c *Client) Sessions(ctx context.Context) ([]Session, error) {
	var env envelope[[]Session]
	if err := c.get(ctx, "/sessions", &env); err != nil {
		return nil, err
	}
	if env.ErrorCode != 0 {
		return nil, fmt.Errorf("%w: infinite flight error code %d", integration.ErrUpstream, env.ErrorCode)
	}
	return env.Result, nil
}

// ATIS returns the current ATIS text of icao in the given session.
func (c *Client) ATIS(ctx context.Context, sessionID, icao string) (string, error) {
	path := fmt.Sprintf("/sessions/%s/airport/%s/atis", url.PathEscape(sessionID), url.PathEscape(strings.ToUpper(icao)))

	var env envelope[string]
	if err := c.get(ctx, path, &env); err != nil {
		var se *integration.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return "", ErrNoATIS
		}
		return "", err
	}
	if env.ErrorCode != 0 || env.Result == "" {
		return "", ErrNoATIS
	}
	return env.Result, nil
}

// DefaultSession picks the busiest session, which is what pilots usually fly on.
func DefaultSession(sessions []Session) (Session, bool) {
	if len(sessions) == 0 {
		return Session{}, false
	}
	best := sessions[0]
	for _, s := range sessions[1:] {
		if s.UserCount > best.UserCount {
			best = s
		}
	}
	return best, true
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	return integration.GetJSON(ctx, c.hc, c.baseURL+path, headers, out)
}
