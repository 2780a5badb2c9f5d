// Package catalog parses route-catalog CSV files.
//
// The header must contain flight_number, departure, arrival and duration; aircraft_family is
// optional. Column order is free and header names are case-insensitive. Duration is either whole
// minutes ("95") or hours and minutes ("1:35").
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Entry is one valid line of the file.
type Entry struct {
	Line            int
	FlightNumber    string
	Departure       string
	Arrival         string
	DurationMinutes int
	AircraftFamily  string
}

type LineError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type Result struct {
	Entries []Entry
	// Skipped counts rows with only empty fields and exact duplicates.
	Skipped int
	Errors  []LineError
}

var ErrBadHeader = errors.New("csv header must include flight_number, departure, arrival and duration")

var required = []string{"flight_number", "departure", "arrival", "duration"}

// Parse reads the whole file. Bad lines are reported in Result.Errors and do not stop parsing.
func Parse(r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrBadHeader
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, ErrBadHeader
		}
	}
	familyCol, hasFamily := cols["aircraft_family"]

	res := &Result{}
	seen := map[string]bool{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			line := 0
			if errors.As(err, &pe) {
				line = pe.Line
			}
			res.Errors = append(res.Errors, LineError{Line: line, Message: err.Error()})
			continue
		}
		line, _ := cr.FieldPos(0)
		if blank(rec) {
			res.Skipped++
			continue
		}

		get := func(name string) string {
			i := cols[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		e := Entry{
			Line:         line,
			FlightNumber: strings.ToUpper(get("flight_number")),
			Departure:    strings.ToUpper(get("departure")),
			Arrival:      strings.ToUpper(get("arrival")),
		}
		if hasFamily && familyCol < len(rec) {
			e.AircraftFamily = strings.TrimSpace(rec[familyCol])
		}

		if msg := validate(e); msg != "" {
			res.Errors = append(res.Errors, LineError{Line: line, Message: msg})
			continue
		}
		minutes, err := ParseDuration(get("duration"))
		if err != nil {
			res.Errors = append(res.Errors, LineError{Line: line, Message: err.Error()})
			continue
		}
		e.DurationMinutes = minutes

		key := e.FlightNumber + "|" + e.Departure + "|" + e.Arrival
		if seen[key] {
			res.Skipped++
			continue
		}
		seen[key] = true
		res.Entries = append(res.Entries, e)
	}
	return res, nil
}

func validate(e Entry) string {
	switch {
	case e.FlightNumber == "":
		return "flight_number is empty"
	case !isICAO(e.Departure):
		return fmt.Sprintf("departure %q is not an ICAO code", e.Departure)
	case !isICAO(e.Arrival):
		return fmt.Sprintf("arrival %q is not an ICAO code", e.Arrival)
	case e.Departure == e.Arrival:
		return "departure and arrival are the same airport"
	}
	return ""
}

// ParseDuration accepts "95" (minutes) or "1:35" (hours:minutes).
func ParseDuration(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("duration is empty")
	}

	var minutes int
	if h, m, ok := strings.Cut(s, ":"); ok {
		hours, err1 := strconv.Atoi(h)
		mins, err2 := strconv.Atoi(m)
		if err1 != nil || err2 != nil || hours < 0 || mins < 0 || mins > 59 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		minutes = hours*60 + mins
	} else {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		minutes = v
	}

	if minutes <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return minutes, nil
}

func isICAO(code string) bool {
	if len(code) != 4 {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
