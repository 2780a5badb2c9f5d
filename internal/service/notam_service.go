package service

import (
	"bytes"
	"context"
	"html"
	"strings"
	"time"

	"vaops/internal/model"
	"vaops/internal/repository"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
)

// Raw HTML inside a NOTAM body is escaped: WithUnsafe is not set.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderMarkdown converts a NOTAM body to HTML, falling back to escaped text.
func RenderMarkdown(md string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return html.EscapeString(md)
	}
	return buf.String()
}

type NotamRequest struct {
	Title         string     `json:"title" binding:"required,max=255"`
	Body          string     `json:"body" binding:"required"`
	AirportICAO   string     `json:"airport_icao" binding:"omitempty,len=4"`
	Priority      string     `json:"priority" binding:"omitempty,oneof=low normal high"`
	EffectiveFrom *time.Time `json:"effective_from"`
	EffectiveTo   *time.Time `json:"effective_to"`
	IsActive      *bool      `json:"is_active"`
}

type NotamQuery struct {
	AirportICAO string
	ActiveOnly  bool
}

type NotamResponse struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Body          string     `json:"body"`
	BodyHTML      string     `json:"body_html"`
	AirportICAO   string     `json:"airport_icao"`
	Priority      string     `json:"priority"`
	EffectiveFrom time.Time  `json:"effective_from"`
	EffectiveTo   *time.Time `json:"effective_to"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
}

type ChartRequest struct {
	AirportICAO string `json:"airport_icao" binding:"required,len=4"`
	Name        string `json:"name" binding:"required"`
	ChartType   string `json:"chart_type" binding:"required,oneof=AIRPORT SID STAR APPROACH OTHER"`
	URL         string `json:"url" binding:"required,url"`
}

type NotamService interface {
	List(ctx context.Context, q NotamQuery) ([]NotamResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*NotamResponse, error)
	Create(ctx context.Context, adminID uuid.UUID, req NotamRequest) (*NotamResponse, error)
	Update(ctx context.Context, adminID, id uuid.UUID, req NotamRequest) (*NotamResponse, error)
	Delete(ctx context.Context, adminID, id uuid.UUID) error

	Charts(ctx context.Context, icao string) ([]model.AeronauticalChart, error)
	CreateChart(ctx context.Context, adminID uuid.UUID, req ChartRequest) (*model.AeronauticalChart, error)
	DeleteChart(ctx context.Context, adminID, id uuid.UUID) error
}

type notamService struct {
	notams repository.NotamRepository
	charts repository.ChartRepository
	audit  auditor
	now    func() time.Time
}

func NewNotamService(notams repository.NotamRepository, charts repository.ChartRepository, audits repository.AuditRepository, log *zap.Logger) NotamService {
	return &notamService{
		notams: notams,
		charts: charts,
		audit:  auditor{repo: audits, log: log},
		now:    time.Now,
	}
}

func toNotamResponse(n *model.Notam) NotamResponse {
	return NotamResponse{
		ID:            n.ID,
		Title:         n.Title,
		Body:          n.Body,
		BodyHTML:      RenderMarkdown(n.Body),
		AirportICAO:   n.AirportICAO,
		Priority:      n.Priority,
		EffectiveFrom: n.EffectiveFrom,
		EffectiveTo:   n.EffectiveTo,
		IsActive:      n.IsActive,
		CreatedAt:     n.CreatedAt,
	}
}

func (s *notamService) List(ctx context.Context, q NotamQuery) ([]NotamResponse, error) {
	filter := repository.NotamFilter{AirportICAO: strings.ToUpper(q.AirportICAO)}
	if q.ActiveOnly {
		now := s.now()
		filter.ActiveAt = &now
	}
	rows, err := s.notams.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	res := make([]NotamResponse, 0, len(rows))
	for i := range rows {
		res = append(res, toNotamResponse(&rows[i]))
	}
	return res, nil
}

func (s *notamService) Get(ctx context.Context, id uuid.UUID) (*NotamResponse, error) {
	n, err := s.notams.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("notam", err)
	}
	res := toNotamResponse(n)
	return &res, nil
}

func (s *notamService) apply(n *model.Notam, req NotamRequest) error {
	n.Title = req.Title
	n.Body = req.Body
	n.AirportICAO = strings.ToUpper(req.AirportICAO)
	n.Priority = req.Priority
	if n.Priority == "" {
		n.Priority = model.NotamNormal
	}
	if req.EffectiveFrom != nil {
		n.EffectiveFrom = *req.EffectiveFrom
	} else if n.EffectiveFrom.IsZero() {
		n.EffectiveFrom = s.now()
	}
	n.EffectiveTo = req.EffectiveTo
	if n.EffectiveTo != nil && !n.EffectiveTo.After(n.EffectiveFrom) {
		return validation("effective_to must be after effective_from")
	}
	n.IsActive = boolOr(req.IsActive, true)
	return nil
}

func (s *notamService) Create(ctx context.Context, adminID uuid.UUID, req NotamRequest) (*NotamResponse, error) {
	n := &model.Notam{CreatedBy: &adminID}
	if err := s.apply(n, req); err != nil {
		return nil, err
	}
	if err := s.notams.Create(ctx, n); err != nil {
		return nil, err
	}
	if err := s.audit.record(ctx, &adminID, model.ActionUpsertReference, n.ID.String(), n.Title, map[string]interface{}{"table": "notams"}); err != nil {
		return nil, err
	}
	res := toNotamResponse(n)
	return &res, nil
}

func (s *notamService) Update(ctx context.Context, adminID, id uuid.UUID, req NotamRequest) (*NotamResponse, error) {
	n, err := s.notams.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("notam", err)
	}
	if err := s.apply(n, req); err != nil {
		return nil, err
	}
	if err := s.notams.Update(ctx, n); err != nil {
		return nil, err
	}
	if err := s.audit.record(ctx, &adminID, model.ActionUpsertReference, n.ID.String(), n.Title, map[string]interface{}{"table": "notams"}); err != nil {
		return nil, err
	}
	res := toNotamResponse(n)
	return &res, nil
}

func (s *notamService) Delete(ctx context.Context, adminID, id uuid.UUID) error {
	if err := s.notams.Delete(ctx, id); err != nil {
		return notFound("notam", err)
	}
	return s.audit.record(ctx, &adminID, model.ActionDeleteReference, id.String(), "", map[string]interface{}{"table": "notams"})
}

func (s *notamService) Charts(ctx context.Context, icao string) ([]model.AeronauticalChart, error) {
	return s.charts.ListByAirport(ctx, strings.ToUpper(strings.TrimSpace(icao)))
}

func (s *notamService) CreateChart(ctx context.Context, adminID uuid.UUID, req ChartRequest) (*model.AeronauticalChart, error) {
	c := &model.AeronauticalChart{
		AirportICAO: strings.ToUpper(req.AirportICAO),
		Name:        req.Name,
		ChartType:   req.ChartType,
		URL:         req.URL,
	}
	if err := s.charts.Create(ctx, c); err != nil {
		return nil, err
	}
	if err := s.audit.record(ctx, &adminID, model.ActionUpsertReference, c.ID.String(), c.Name, map[string]interface{}{"table": "aeronautical_charts", "airport": c.AirportICAO}); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *notamService) DeleteChart(ctx context.Context, adminID, id uuid.UUID) error {
	if err := s.charts.Delete(ctx, id); err != nil {
		return notFound("chart", err)
	}
	return s.audit.record(ctx, &adminID, model.ActionDeleteReference, id.String(), "", map[string]interface{}{"table": "aeronautical_charts"})
}
