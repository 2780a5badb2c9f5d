// Package weather proxies the aviationweather.gov data API.
package weather

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"vaops/internal/integration"
)

const DefaultBaseURL = "https://aviationweather.gov/api/data"

// METAR is the subset of the decoded observation the panel shows.
type METAR struct {
	ICAO       string      `json:"icaoId"`
	RawOb      string      `json:"rawOb"`
	ReportTime string      `json:"reportTime"`
	Temp       *float64    `json:"temp"`
	Dewpoint   *float64    `json:"dewp"`
	WindDir    interface{} `json:"wdir"` // degrees or "VRB"
	WindSpeed  *int        `json:"wspd"`
	WindGust   *int        `json:"wgst"`
	Visibility interface{} `json:"visib"` // number or "10+"
	Altimeter  *float64    `json:"altim"`
	FlightCat  string      `json:"fltCat"`
	Name       string      `json:"name"`
	Latitude   float64     `json:"lat"`
	Longitude  float64     `json:"lon"`
	Elevation  *float64    `json:"elev"`
}

type Runway struct {
	ID        string `json:"id"`
	Dimension string `json:"dimension"`
	Surface   string `json:"surface"`
	Alignment string `json:"alignment"`
}

type Airport struct {
	ICAO      string   `json:"icaoId"`
	IATA      string   `json:"iataId"`
	Name      string   `json:"name"`
	State     string   `json:"state"`
	Country   string   `json:"country"`
	Latitude  float64  `json:"lat"`
	Longitude float64  `json:"lon"`
	Elevation float64  `json:"elev"`
	Runways   []Runway `json:"runways"`
}

type Client struct {
	baseURL string
	hc      *http.Client
}

func NewClient(baseURL string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), hc: hc}
}

// METARs returns the latest observation for each station in ids.
func (c *Client) METARs(ctx context.Context, ids []string) ([]METAR, error) {
	var out []METAR
	err := integration.GetJSON(ctx, c.hc, c.endpoint("metar", ids), nil, &out)
	return out, err
}

func (c *Client) Airports(ctx context.Context, ids []string) ([]Airport, error) {
	var out []Airport
	err := integration.GetJSON(ctx, c.hc, c.endpoint("airport", ids), nil, &out)
	return out, err
}

func (c *Client) endpoint(kind string, ids []string) string {
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("format", "json")
	return c.baseURL + "/" + kind + "?" + q.Encode()
}
