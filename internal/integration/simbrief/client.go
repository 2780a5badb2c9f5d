// Package simbrief fetches flight plans from SimBrief and builds dispatch links.
package simbrief

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"vaops/internal/integration"
)

const (
	DefaultFetcherURL  = "https://www.simbrief.com/api/xml.fetcher.php"
	DefaultDispatchURL = "https://www.simbrief.com/system/dispatch.php"
)

// ErrNoPlan is returned when the user has no OFP on file or the username is unknown.
var ErrNoPlan = errors.New("no simbrief flight plan")

// OFP is the summary of a SimBrief operational flight plan. Raw keeps the full document.
type OFP struct {
	RequestID    string          `json:"request_id"`
	Airline      string          `json:"airline"`
	FlightNumber string          `json:"flight_number"`
	Origin       string          `json:"origin"`
	Destination  string          `json:"destination"`
	Alternate    string          `json:"alternate"`
	AircraftType string          `json:"aircraft_type"`
	Registration string          `json:"registration"`
	Route        string          `json:"route"`
	CruiseFL     string          `json:"cruise_altitude"`
	BlockFuel    string          `json:"block_fuel"`
	Units        string          `json:"units"`
	EnrouteSecs  int             `json:"enroute_seconds"`
	Raw          json.RawMessage `json:"-"`
}

type fetcherDoc struct {
	Fetch struct {
		Status string `json:"status"`
	} `json:"fetch"`
	Params struct {
		RequestID string `json:"request_id"`
		Units     string `json:"units"`
	} `json:"params"`
	General struct {
		ICAOAirline     string `json:"icao_airline"`
		FlightNumber    string `json:"flight_number"`
		Route           string `json:"route"`
		InitialAltitude string `json:"initial_altitude"`
	} `json:"general"`
	Origin struct {
		ICAO string `json:"icao_code"`
	} `json:"origin"`
	Destination struct {
		ICAO string `json:"icao_code"`
	} `json:"destination"`
	Alternate struct {
		ICAO string `json:"icao_code"`
	} `json:"alternate"`
	Aircraft struct {
		ICAOCode string `json:"icaocode"`
		Reg      string `json:"reg"`
	} `json:"aircraft"`
	Fuel struct {
		PlanRamp string `json:"plan_ramp"`
	} `json:"fuel"`
	Times struct {
		EstTimeEnroute string `json:"est_time_enroute"`
	} `json:"times"`
}

type Client struct {
	fetcherURL  string
	dispatchURL string
	apiKey      string
	hc          *http.Client
}

func NewClient(fetcherURL, apiKey string, hc *http.Client) *Client {
	if fetcherURL == "" {
		fetcherURL = DefaultFetcherURL
	}
	return &Client{fetcherURL: fetcherURL, dispatchURL: DefaultDispatchURL, apiKey: apiKey, hc: hc}
}

// LatestOFP returns the most recent plan generated by username.
func (c *Client) LatestOFP(ctx context.Context, username string) (*OFP, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ErrNoPlan
	}
	q := url.Values{}
	q.Set("username", username)
	q.Set("json", "1")

	body, err := integration.Get(ctx, c.hc, c.fetcherURL+"?"+q.Encode(), nil)
	if err != nil {
		// the fetcher answers 400 with a status message for unknown users
		var se *integration.StatusError
		if errors.As(err, &se) && se.Code == http.StatusBadRequest {
			return nil, ErrNoPlan
		}
		return nil, err
	}
	return ParseOFP(body)
}

// ParseOFP extracts the summary fields from a fetcher JSON document.
func ParseOFP(body []byte) (*OFP, error) {
	var doc fetcherDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode ofp: %v", integration.ErrUpstream, err)
	}
	if doc.Fetch.Status != "" && !strings.EqualFold(doc.Fetch.Status, "success") {
		return nil, ErrNoPlan
	}

	secs, _ := strconv.Atoi(doc.Times.EstTimeEnroute)
	return &OFP{
		RequestID:    doc.Params.RequestID,
		Airline:      doc.General.ICAOAirline,
		FlightNumber: doc.General.FlightNumber,
		Origin:       doc.Origin.ICAO,
		Destination:  doc.Destination.ICAO,
		Alternate:    doc.Alternate.ICAO,
		AircraftType: doc.Aircraft.ICAOCode,
		Registration: doc.Aircraft.Reg,
		Route:        doc.General.Route,
		CruiseFL:     doc.General.InitialAltitude,
		BlockFuel:    doc.Fuel.PlanRamp,
		Units:        doc.Params.Units,
		EnrouteSecs:  secs,
		Raw:          json.RawMessage(body),
	}, nil
}

// DispatchRequest prefills the SimBrief dispatch form.
type DispatchRequest struct {
	Origin       string
	Destination  string
	AircraftType string
	Airline      string
	FlightNumber string
	Registration string
}

// DispatchURL returns a link that opens SimBrief's planner prefilled with req.
func (c *Client) DispatchURL(req DispatchRequest) string {
	q := url.Values{}
	q.Set("orig", strings.ToUpper(req.Origin))
	q.Set("dest", strings.ToUpper(req.Destination))
	if req.AircraftType != "" {
		q.Set("type", req.AircraftType)
	}
	airline, number := splitFlightNumber(req.FlightNumber)
	if req.Airline != "" {
		airline = req.Airline
	}
	if airline != "" {
		q.Set("airline", airline)
	}
	if number != "" {
		q.Set("fltnum", number)
	}
	if req.Registration != "" {
		q.Set("reg", req.Registration)
	}
	return c.dispatchURL + "?" + q.Encode()
}

// splitFlightNumber separates an airline prefix from the numeric part: "BAW123" -> ("BAW", "123").
func splitFlightNumber(fn string) (string, string) {
	fn = strings.ToUpper(strings.TrimSpace(fn))
	i := strings.IndexFunc(fn, func(r rune) bool { return r >= '0' && r <= '9' })
	if i <= 0 {
		return "", fn
	}
	return fn[:i], fn[i:]
}
