package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"vaops/internal/cache"
	"vaops/internal/integration/infiniteflight"
	"vaops/internal/integration/simbrief"
	"vaops/internal/integration/weather"
	"vaops/internal/metrics"
	"vaops/internal/model"
	"vaops/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	WeatherTTL = 5 * time.Minute
	ATISTTL    = 60 * time.Second
	OFPTTL     = 2 * time.Minute

	maxStationIDs = 20
)

type WeatherSource interface {
	METARs(ctx context.Context, ids []string) ([]weather.METAR, error)
	Airports(ctx context.Context, ids []string) ([]weather.Airport, error)
}

type LiveSource interface {
	Configured() bool
	Sessions(ctx context.Context) ([]infiniteflight.Session, error)
	ATIS(ctx context.Context, sessionID, icao string) (string, error)
}

type ATISResponse struct {
	ICAO      string `json:"icao"`
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	Available bool   `json:"available"`
}

// Briefing is everything a pilot wants to read before departing or arriving at one airport.
// Sections that failed upstream are left empty and listed in Warnings.
type Briefing struct {
	ICAO     string                    `json:"icao"`
	METAR    *weather.METAR            `json:"metar"`
	Airport  *weather.Airport          `json:"airport"`
	ATIS     *ATISResponse             `json:"atis"`
	Charts   []model.AeronauticalChart `json:"charts"`
	Notams   []NotamResponse           `json:"notams"`
	Warnings []string                  `json:"warnings,omitempty"`
}

type ProxyService interface {
	METARs(ctx context.Context, ids string) ([]weather.METAR, error)
	Airports(ctx context.Context, ids string) ([]weather.Airport, error)
	Sessions(ctx context.Context) ([]infiniteflight.Session, error)
	ATIS(ctx context.Context, icao, sessionID string) (*ATISResponse, error)
	LatestOFP(ctx context.Context, userID uuid.UUID) (*simbrief.OFP, error)
	Briefing(ctx context.Context, icao string) (*Briefing, error)
}

type proxyService struct {
	weather  WeatherSource
	live     LiveSource
	ofp      OFPSource
	cache    cache.Store
	profiles repository.ProfileRepository
	notams   NotamService
	log      *zap.Logger
}

func NewProxyService(
	wx WeatherSource,
	live LiveSource,
	ofp OFPSource,
	store cache.Store,
	profiles repository.ProfileRepository,
	notams NotamService,
	log *zap.Logger,
) ProxyService {
	return &proxyService{
		weather:  wx,
		live:     live,
		ofp:      ofp,
		cache:    store,
		profiles: profiles,
		notams:   notams,
		log:      log,
	}
}

// parseStationIDs normalizes a comma list into sorted unique ICAO codes.
func parseStationIDs(raw string) ([]string, error) {
	seen := map[string]bool{}
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		id := strings.ToUpper(strings.TrimSpace(part))
		if id == "" || seen[id] {
			continue
		}
		if len(id) < 3 || len(id) > 4 {
			return nil, validation("invalid station id %q", id)
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, validation("ids is required")
	}
	if len(ids) > maxStationIDs {
		return nil, validation("at most %d ids per request", maxStationIDs)
	}
	sort.Strings(ids)
	return ids, nil
}

// cached serves namespace/key from the cache or calls fetch and stores its JSON form.
// Cache failures only cost a refetch.
func cached[T any](ctx context.Context, s *proxyService, service, namespace, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var out T
	if raw, err := s.cache.Get(ctx, namespace, key); err == nil {
		if jsonErr := json.Unmarshal([]byte(raw), &out); jsonErr == nil {
			metrics.ExternalRequests.WithLabelValues(service, "cache_hit").Inc()
			return out, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("cache read failed", zap.String("namespace", namespace), zap.Error(err))
	}

	out, err := fetch(ctx)
	if err != nil {
		metrics.ExternalRequests.WithLabelValues(service, "error").Inc()
		return out, err
	}
	metrics.ExternalRequests.WithLabelValues(service, "ok").Inc()

	if raw, err := json.Marshal(out); err == nil {
		if err := s.cache.Set(ctx, namespace, key, raw, ttl); err != nil {
			s.log.Warn("cache write failed", zap.String("namespace", namespace), zap.Error(err))
		}
	}
	return out, nil
}

func (s *proxyService) METARs(ctx context.Context, raw string) ([]weather.METAR, error) {
	ids, err := parseStationIDs(raw)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, "weather", "metar", strings.Join(ids, ","), WeatherTTL, func(ctx context.Context) ([]weather.METAR, error) {
		return s.weather.METARs(ctx, ids)
	})
}

func (s *proxyService) Airports(ctx context.Context, raw string) ([]weather.Airport, error) {
	ids, err := parseStationIDs(raw)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, "weather", "airport", strings.Join(ids, ","), WeatherTTL, func(ctx context.Context) ([]weather.Airport, error) {
		return s.weather.Airports(ctx, ids)
	})
}

func (s *proxyService) Sessions(ctx context.Context) ([]infiniteflight.Session, error) {
	if !s.live.Configured() {
		return nil, ErrNotConfigured
	}
	return cached(ctx, s, "infiniteflight", "if", "sessions", ATISTTL, s.live.Sessions)
}

// ATIS resolves the busiest session when sessionID is empty. A missing ATIS is not an error.
func (s *proxyService) ATIS(ctx context.Context, icao, sessionID string) (*ATISResponse, error) {
	if !s.live.Configured() {
		return nil, ErrNotConfigured
	}
	icao = strings.ToUpper(strings.TrimSpace(icao))
	if len(icao) != 4 {
		return nil, validation("icao must be 4 characters")
	}

	if sessionID == "" {
		sessions, err := s.Sessions(ctx)
		if err != nil {
			return nil, err
		}
		def, ok := infiniteflight.DefaultSession(sessions)
		if !ok {
			return &ATISResponse{ICAO: icao}, nil
		}
		sessionID = def.ID
	}

	return cached(ctx, s, "infiniteflight", "atis", sessionID+":"+icao, ATISTTL, func(ctx context.Context) (*ATISResponse, error) {
		text, err := s.live.ATIS(ctx, sessionID, icao)
		if errors.Is(err, infiniteflight.ErrNoATIS) {
			return &ATISResponse{ICAO: icao, SessionID: sessionID}, nil
		}
		if err != nil {
			return nil, err
		}
		return &ATISResponse{ICAO: icao, SessionID: sessionID, Text: text, Available: true}, nil
	})
}

func (s *proxyService) LatestOFP(ctx context.Context, userID uuid.UUID) (*simbrief.OFP, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound("profile", err)
	}
	if profile.SimbriefUsername == "" {
		return nil, validation("set a simbrief username on your profile first")
	}
	ofp, err := cached(ctx, s, "simbrief", "ofp", strings.ToLower(profile.SimbriefUsername), OFPTTL, func(ctx context.Context) (*simbrief.OFP, error) {
		return s.ofp.LatestOFP(ctx, profile.SimbriefUsername)
	})
	if errors.Is(err, simbrief.ErrNoPlan) {
		return nil, fmt.Errorf("%w: no simbrief flight plan for %s", ErrNotFound, profile.SimbriefUsername)
	}
	return ofp, err
}

// Briefing fetches all sections concurrently. Only a failure to read local data fails the call.
func (s *proxyService) Briefing(ctx context.Context, icao string) (*Briefing, error) {
	icao = strings.ToUpper(strings.TrimSpace(icao))
	if len(icao) != 4 {
		return nil, validation("icao must be 4 characters")
	}

	b := &Briefing{ICAO: icao}
	var metarWarn, airportWarn, atisWarn string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		metars, err := s.METARs(gctx, icao)
		if err != nil {
			metarWarn = "metar unavailable"
			s.log.Warn("briefing metar failed", zap.String("icao", icao), zap.Error(err))
			return nil
		}
		if len(metars) > 0 {
			b.METAR = &metars[0]
		}
		return nil
	})
	g.Go(func() error {
		airports, err := s.Airports(gctx, icao)
		if err != nil {
			airportWarn = "airport info unavailable"
			s.log.Warn("briefing airport failed", zap.String("icao", icao), zap.Error(err))
			return nil
		}
		if len(airports) > 0 {
			b.Airport = &airports[0]
		}
		return nil
	})
	g.Go(func() error {
		if !s.live.Configured() {
			return nil
		}
		atis, err := s.ATIS(gctx, icao, "")
		if err != nil {
			atisWarn = "atis unavailable"
			s.log.Warn("briefing atis failed", zap.String("icao", icao), zap.Error(err))
			return nil
		}
		b.ATIS = atis
		return nil
	})
	g.Go(func() error {
		charts, err := s.notams.Charts(gctx, icao)
		if err != nil {
			return err
		}
		b.Charts = charts
		return nil
	})
	g.Go(func() error {
		notams, err := s.notams.List(gctx, NotamQuery{AirportICAO: icao, ActiveOnly: true})
		if err != nil {
			return err
		}
		b.Notams = notams
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, w := range []string{metarWarn, airportWarn, atisWarn} {
		if w != "" {
			b.Warnings = append(b.Warnings, w)
		}
	}
	if b.Charts == nil {
		b.Charts = []model.AeronauticalChart{}
	}
	if b.Notams == nil {
		b.Notams = []NotamResponse{}
	}
	return b, nil
}
