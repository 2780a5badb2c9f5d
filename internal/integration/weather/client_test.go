package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"vaops/internal/integration"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMETARs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/metar", r.URL.Path)
		assert.Equal(t, "EGLL,LFPG", r.URL.Query().Get("ids"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(`[{"icaoId":"EGLL","rawOb":"EGLL 181050Z 24012KT 9999 SCT030 14/09 Q1012","temp":14,"wdir":240,"wspd":12,"visib":"6+","fltCat":"VFR"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	got, err := c.METARs(context.Background(), []string{"EGLL", "LFPG"})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "EGLL", got[0].ICAO)
	assert.Equal(t, "VFR", got[0].FlightCat)
	require.NotNil(t, got[0].WindSpeed)
	assert.Equal(t, 12, *got[0].WindSpeed)
}

func TestAirportsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, srv.Client()).Airports(context.Background(), []string{"EGLL"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, integration.ErrUpstream))
	var se *integration.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
}
