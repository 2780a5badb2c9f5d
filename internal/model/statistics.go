package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatisticsResponse aggregates approved flight activity in a time range plus the current review backlog
type StatisticsResponse struct {
	ApprovedFlights    int64             `json:"approved_flights"`
	ActivePilots       int64             `json:"active_pilots"`
	TotalHours         decimal.Decimal   `json:"total_hours"`
	TotalXP            int64             `json:"total_xp"`
	TotalMoney         int64             `json:"total_money"`
	AverageLandingRate int64             `json:"average_landing_rate"`
	TopAircraft        []AircraftRanking `json:"top_aircraft"`
	TopRoutes          []RouteRanking    `json:"top_routes"`
	Backlog            Backlog           `json:"backlog"`
	Fleet              map[string]int64  `json:"fleet"`
	TimeRangeStartDate time.Time         `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time         `json:"time_range_end_date"`
}

// FlightTotals is the aggregate row of approved PIREPs
type FlightTotals struct {
	Flights     int64
	Pilots      int64
	Hours       decimal.Decimal
	XP          int64
	Money       int64
	LandingRate float64
}

// AircraftRanking represents an aircraft type ranked by approved flights
type AircraftRanking struct {
	AircraftID uuid.UUID       `json:"aircraft_id"`
	ICAOType   string          `json:"icao_type"`
	Name       string          `json:"name"`
	Flights    int64           `json:"flights"`
	Hours      decimal.Decimal `json:"hours"`
}

// RouteRanking represents a city pair ranked by approved flights
type RouteRanking struct {
	DepartureICAO string `json:"departure_icao"`
	ArrivalICAO   string `json:"arrival_icao"`
	Flights       int64  `json:"flights"`
}

// Backlog counts the items waiting for an admin
type Backlog struct {
	PendingPireps        int64 `json:"pending_pireps"`
	PendingRegistrations int64 `json:"pending_registrations"`
	PendingCareers       int64 `json:"pending_careers"`
}
