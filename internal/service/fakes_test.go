package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"vaops/internal/email"
	"vaops/internal/events"
	"vaops/internal/integration/simbrief"
	"vaops/internal/model"
	"vaops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// memDB is an in-memory stand-in for Postgres. Repositories hand out copies, so a
// service must call Update for a change to stick, just like with gorm.
type memDB struct {
	mu sync.Mutex

	profiles      map[uuid.UUID]model.Profile
	registrations map[uuid.UUID]model.RegistrationApproval
	careers       map[uuid.UUID]model.CareerRequest
	catalog       []model.RouteCatalog
	routes        map[uuid.UUID]model.Route
	legs          map[uuid.UUID]model.DispatchLeg
	pireps        map[uuid.UUID]model.Pirep
	fleet         map[uuid.UUID]model.FleetAircraft
	aircraft      map[uuid.UUID]model.Aircraft
	ratings       []model.TypeRating
	bases         map[uuid.UUID]model.Base
	hourRules     map[uuid.UUID]model.FlightHourMultiplier
	audits        []model.AuditLog
	notams        map[uuid.UUID]model.Notam
	charts        []model.AeronauticalChart
	wallet        []model.WalletTransaction
}

func newMemDB() *memDB {
	return &memDB{
		profiles:      map[uuid.UUID]model.Profile{},
		registrations: map[uuid.UUID]model.RegistrationApproval{},
		careers:       map[uuid.UUID]model.CareerRequest{},
		routes:        map[uuid.UUID]model.Route{},
		legs:          map[uuid.UUID]model.DispatchLeg{},
		pireps:        map[uuid.UUID]model.Pirep{},
		fleet:         map[uuid.UUID]model.FleetAircraft{},
		aircraft:      map[uuid.UUID]model.Aircraft{},
		bases:         map[uuid.UUID]model.Base{},
		hourRules:     map[uuid.UUID]model.FlightHourMultiplier{},
		notams:        map[uuid.UUID]model.Notam{},
	}
}

func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// --- tx ---

type fakeTx struct{}

func (fakeTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- profiles ---

type fakeProfiles struct{ db *memDB }

func (r fakeProfiles) Create(_ context.Context, p *model.Profile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	newID(&p.ID)
	for _, other := range r.db.profiles {
		if other.Email == p.Email || other.Username == p.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	r.db.profiles[p.ID] = *p
	return nil
}

func (r fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r fakeProfiles) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	return r.GetByID(ctx, id)
}

func (r fakeProfiles) find(match func(model.Profile) bool) (*model.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.profiles {
		if match(p) {
			p := p
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeProfiles) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	return r.find(func(p model.Profile) bool { return p.Email == email })
}

func (r fakeProfiles) GetByUsername(_ context.Context, username string) (*model.Profile, error) {
	return r.find(func(p model.Profile) bool { return p.Username == username })
}

func (r fakeProfiles) GetByDiscordID(_ context.Context, discordID string) (*model.Profile, error) {
	return r.find(func(p model.Profile) bool { return p.DiscordID != nil && *p.DiscordID == discordID })
}

func (r fakeProfiles) Update(_ context.Context, p *model.Profile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.profiles[p.ID] = *p
	return nil
}

func (r fakeProfiles) modify(id uuid.UUID, fn func(p *model.Profile)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	fn(&p)
	r.db.profiles[id] = p
	return nil
}

func (r fakeProfiles) SetApproved(_ context.Context, id uuid.UUID, approved bool) error {
	return r.modify(id, func(p *model.Profile) { p.IsApproved = approved })
}

func (r fakeProfiles) AddRole(_ context.Context, id uuid.UUID, role string) error {
	return r.modify(id, func(p *model.Profile) {
		if !p.HasRole(role) {
			p.Roles = append(p.Roles, model.UserRole{ID: uuid.New(), UserID: id, Role: role})
		}
	})
}

func (r fakeProfiles) CreditFlight(_ context.Context, id uuid.UUID, xp, money int64, hours decimal.Decimal) error {
	return r.modify(id, func(p *model.Profile) {
		p.XP += xp
		p.Money += money
		p.TotalHours = p.TotalHours.Add(hours)
		p.TotalFlights++
	})
}

func (r fakeProfiles) AdjustMoney(_ context.Context, id uuid.UUID, delta int64) error {
	return r.modify(id, func(p *model.Profile) { p.Money += delta })
}

func (r fakeProfiles) Leaderboard(_ context.Context, metric string, limit int) ([]model.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.Profile
	for _, p := range r.db.profiles {
		if p.IsApproved {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		switch metric {
		case repository.MetricHours:
			return out[i].TotalHours.GreaterThan(out[j].TotalHours)
		case repository.MetricFlights:
			return out[i].TotalFlights > out[j].TotalFlights
		}
		return out[i].XP > out[j].XP
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r fakeProfiles) List(_ context.Context, page, limit int) ([]model.Profile, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.Profile
	for _, p := range r.db.profiles {
		out = append(out, p)
	}
	return paginate(out, page, limit), int64(len(out)), nil
}

func paginate[T any](rows []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(rows) {
		return nil
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// --- audit ---

type fakeAudits struct{ db *memDB }

func (r fakeAudits) Log(_ context.Context, entry *model.AuditLog) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	newID(&entry.ID)
	entry.CreatedAt = time.Now()
	r.db.audits = append(r.db.audits, *entry)
	return nil
}

func (r fakeAudits) List(_ context.Context, filter repository.AuditFilter, page, limit int) ([]model.AuditLog, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.AuditLog
	for _, a := range r.db.audits {
		switch {
		case filter.Action != "" && a.Action != filter.Action,
			filter.EntityID != "" && a.EntityID != filter.EntityID,
			filter.ActorID != nil && (a.UserID == nil || *a.UserID != *filter.ActorID):
			continue
		}
		out = append(out, a)
	}
	return paginate(out, page, limit), int64(len(out)), nil
}

func (db *memDB) auditActions() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []string
	for _, a := range db.audits {
		out = append(out, a.Action)
	}
	return out
}

// --- registrations ---

type fakeRegistrations struct{ db *memDB }

func (r fakeRegistrations) Create(_ context.Context, req *model.RegistrationApproval) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	newID(&req.ID)
	req.CreatedAt = time.Now()
	r.db.registrations[req.ID] = *req
	return nil
}

func (r fakeRegistrations) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.RegistrationApproval, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	reg, ok := r.db.registrations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &reg, nil
}

func (r fakeRegistrations) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.RegistrationApproval, error) {
	reg, err := r.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if u, ok := r.db.profiles[reg.UserID]; ok {
		reg.User = &u
	}
	if reg.ReviewedBy != nil {
		if u, ok := r.db.profiles[*reg.ReviewedBy]; ok {
			reg.Reviewer = &u
		}
	}
	return reg, nil
}

func (r fakeRegistrations) List(_ context.Context, status string, page, limit int) ([]model.RegistrationApproval, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.RegistrationApproval
	for _, reg := range r.db.registrations {
		if status == "" || reg.Status == status {
			out = append(out, reg)
		}
	}
	return paginate(out, page, limit), int64(len(out)), nil
}

func (r fakeRegistrations) Update(_ context.Context, req *model.RegistrationApproval) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	req.User, req.Reviewer = nil, nil
	r.db.registrations[req.ID] = *req
	return nil
}

// --- career requests ---

type fakeCareers struct{ db *memDB }

func (r fakeCareers) Create(_ context.Context, req *model.CareerRequest) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	newID(&req.ID)
	req.CreatedAt = time.Now()
	r.db.careers[req.ID] = *req
	return nil
}

func (r fakeCareers) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.CareerRequest, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	req, ok := r.db.careers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &req, nil
}

func (r fakeCareers) FindPendingByUser(_ context.Context, userID uuid.UUID) (*model.CareerRequest, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, req := range r.db.careers {
		if req.UserID == userID && req.Status == model.StatusPending {
			return &req, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeCareers) List(_ context.Context, status string, page, limit int) ([]model.CareerRequest, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.CareerRequest
	for _, req := range r.db.careers {
		if status == "" || req.Status == status {
			out = append(out, req)
		}
	}
	return paginate(out, page, limit), int64(len(out)), nil
}

func (r fakeCareers) ListByUser(_ context.Context, userID uuid.UUID) ([]model.CareerRequest, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.CareerRequest
	for _, req := range r.db.careers {
		if req.UserID == userID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r fakeCareers) Update(_ context.Context, req *model.CareerRequest) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.careers[req.ID] = *req
	return nil
}

// --- catalog ---

type fakeCatalog struct{ db *memDB }

func (r fakeCatalog) ListActive(_ context.Context) ([]model.RouteCatalog, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.RouteCatalog
	for _, e := range r.db.catalog {
		if e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r fakeCatalog) List(ctx context.Context, departure string, page, limit int) ([]model.RouteCatalog, int64, error) {
	active, _ := r.ListActive(ctx)
	var out []model.RouteCatalog
	for _, e := range active {
		if departure == "" || e.DepartureICAO == departure {
			out = append(out, e)
		}
	}
	return paginate(out, page, limit), int64(len(out)), nil
}

func (r fakeCatalog) CreateBatch(_ context.Context, entries []model.RouteCatalog) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range entries {
		newID(&entries[i].ID)
		r.db.catalog = append(r.db.catalog, entries[i])
	}
	return nil
}

func (r fakeCatalog) DeactivateAll(_ context.Context) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for i := range r.db.catalog {
		if r.db.catalog[i].IsActive {
			r.db.catalog[i].IsActive = false
			n++
		}
	}
	return n, nil
}

// --- dispatch ---

type fakeDispatch struct{ db *memDB }

func (r fakeDispatch) CreateRoute(_ context.Context, route *model.Route) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	newID(&route.ID)
	r.db.routes[route.ID] = *route
	return nil
}

func (r fakeDispatch) CreateLegs(_ context.Context, legs []model.DispatchLeg) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range legs {
		newID(&legs[i].ID)
		stored := legs[i]
		stored.Route, stored.Aircraft = nil, nil
		r.db.legs[stored.ID] = stored
	}
	return nil
}

func (r fakeDispatch) withRelations(l model.DispatchLeg) model.DispatchLeg {
	if route, ok := r.db.routes[l.RouteID]; ok {
		l.Route = &route
	}
	if l.AircraftID != nil {
		if ac, ok := r.db.aircraft[*l.AircraftID]; ok {
			l.Aircraft = &ac
		}
	}
	return l
}

func (r fakeDispatch) FindLegByID(_ context.Context, id uuid.UUID) (*model.DispatchLeg, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l, ok := r.db.legs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	l = r.withRelations(l)
	return &l, nil
}

func (r fakeDispatch) FindLegByIDForUpdate(_ context.Context, id uuid.UUID) (*model.DispatchLeg, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l, ok := r.db.legs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (r fakeDispatch) sorted(match func(model.DispatchLeg) bool) []model.DispatchLeg {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.DispatchLeg
	for _, l := range r.db.legs {
		if match(l) {
			out = append(out, r.withRelations(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LegNumber < out[j].LegNumber })
	return out
}

func (r fakeDispatch) ListByUser(_ context.Context, userID uuid.UUID, status string) ([]model.DispatchLeg, error) {
	return r.sorted(func(l model.DispatchLeg) bool {
		return l.UserID == userID && (status == "" || l.Status == status)
	}), nil
}

func (r fakeDispatch) ListByGroup(_ context.Context, groupID uuid.UUID) ([]model.DispatchLeg, error) {
	return r.sorted(func(l model.DispatchLeg) bool { return l.DispatchGroupID == groupID }), nil
}

func (r fakeDispatch) CountOpenByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, l := range r.db.legs {
		if l.UserID == userID && l.IsOpen() {
			n++
		}
	}
	return n, nil
}

func (r fakeDispatch) UpdateLeg(_ context.Context, leg *model.DispatchLeg) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored := *leg
	stored.Route, stored.Aircraft = nil, nil
	r.db.legs[leg.ID] = stored
	return nil
}

// --- pireps ---

type fakePireps struct{ db *memDB }

func (r fakePireps) Create(_ context.Context, p *model.Pirep) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if p.DispatchLegID != nil {
		for _, other := range r.db.pireps {
			if other.DispatchLegID != nil && *other.DispatchLegID == *p.DispatchLegID && other.Status != model.StatusRejected {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	newID(&p.ID)
	p.CreatedAt = time.Now()
	r.db.pireps[p.ID] = *p
	return nil
}

func (r fakePireps) FindByID(_ context.Context, id uuid.UUID) (*model.Pirep, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.pireps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if u, ok := r.db.profiles[p.UserID]; ok {
		p.User = &u
	}
	if ac, ok := r.db.aircraft[p.AircraftID]; ok {
		p.Aircraft = &ac
	}
	return &p, nil
}

func (r fakePireps) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.Pirep, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.pireps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r fakePireps) FindByLeg(_ context.Context, legID uuid.UUID) (*model.Pirep, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.pireps {
		if p.DispatchLegID != nil && *p.DispatchLegID == legID && p.Status != model.StatusRejected {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakePireps) List(_ context.Context, filter repository.PirepFilter, page, limit int) ([]model.Pirep, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.Pirep
	for _, p := range r.db.pireps {
		if filter.UserID != nil && p.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Status == "" && len(filter.Statuses) > 0 && !contains(filter.Statuses, p.Status) {
			continue
		}
		if ac, ok := r.db.aircraft[p.AircraftID]; ok {
			p.Aircraft = &ac
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, page, limit), int64(len(out)), nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (r fakePireps) Summary(_ context.Context, userID uuid.UUID) (*repository.PirepSummary, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	sum := &repository.PirepSummary{Hours: decimal.Zero}
	for _, p := range r.db.pireps {
		if p.UserID != userID || p.Status != model.StatusApproved {
			continue
		}
		sum.Flights++
		sum.Hours = sum.Hours.Add(p.FlightHours)
		sum.XP += p.XPEarned
		sum.Money += p.MoneyEarned
	}
	return sum, nil
}

func (r fakePireps) Update(_ context.Context, p *model.Pirep) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored := *p
	stored.User, stored.Aircraft = nil, nil
	r.db.pireps[p.ID] = stored
	return nil
}

// --- fleet ---

type fakeFleet struct{ db *memDB }

func (r fakeFleet) Create(_ context.Context, a *model.FleetAircraft) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, other := range r.db.fleet {
		if other.Registration == a.Registration {
			return gorm.ErrDuplicatedKey
		}
	}
	newID(&a.ID)
	r.db.fleet[a.ID] = *a
	return nil
}

func (r fakeFleet) FindByID(_ context.Context, id uuid.UUID) (*model.FleetAircraft, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.fleet[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if ac, ok := r.db.aircraft[a.AircraftID]; ok {
		a.Aircraft = &ac
	}
	return &a, nil
}

func (r fakeFleet) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.FleetAircraft, error) {
	return r.FindByID(ctx, id)
}

func (r fakeFleet) FindIdleForUpdate(_ context.Context, aircraftID uuid.UUID, location string) (*model.FleetAircraft, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var best *model.FleetAircraft
	for _, a := range r.db.fleet {
		if a.AircraftID != aircraftID || a.Status != model.FleetIdle {
			continue
		}
		a := a
		if best == nil || (a.LocationICAO == location && best.LocationICAO != location) {
			best = &a
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

func (r fakeFleet) List(_ context.Context, status string) ([]model.FleetAircraft, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.FleetAircraft
	for _, a := range r.db.fleet {
		if status == "" || a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r fakeFleet) ListDueMaintenance(_ context.Context, now time.Time) ([]model.FleetAircraft, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.FleetAircraft
	for _, a := range r.db.fleet {
		if a.Status == model.FleetMaintenance && (a.MaintenanceUntil == nil || !now.Before(*a.MaintenanceUntil)) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r fakeFleet) Update(_ context.Context, a *model.FleetAircraft) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored := *a
	stored.Aircraft = nil
	r.db.fleet[a.ID] = stored
	return nil
}

// --- aircraft, ratings ---

type fakeAircraft struct{ db *memDB }

func (r fakeAircraft) Create(_ context.Context, a *model.Aircraft) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, other := range r.db.aircraft {
		if other.ICAOType == a.ICAOType {
			return gorm.ErrDuplicatedKey
		}
	}
	newID(&a.ID)
	r.db.aircraft[a.ID] = *a
	return nil
}

func (r fakeAircraft) FindByID(_ context.Context, id uuid.UUID) (*model.Aircraft, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.aircraft[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (r fakeAircraft) FindByICAOType(_ context.Context, icaoType string) (*model.Aircraft, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.aircraft {
		if a.ICAOType == icaoType {
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeAircraft) List(_ context.Context, activeOnly bool) ([]model.Aircraft, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.Aircraft
	for _, a := range r.db.aircraft {
		if !activeOnly || a.IsActive {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ICAOType < out[j].ICAOType })
	return out, nil
}

func (r fakeAircraft) Update(_ context.Context, a *model.Aircraft) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.aircraft[a.ID] = *a
	return nil
}

func (r fakeAircraft) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.aircraft[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.db.aircraft, id)
	return nil
}

type fakeRatings struct{ db *memDB }

func (r fakeRatings) Create(_ context.Context, t *model.TypeRating) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	newID(&t.ID)
	r.db.ratings = append(r.db.ratings, *t)
	return nil
}

func (r fakeRatings) Exists(_ context.Context, userID, aircraftID uuid.UUID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, t := range r.db.ratings {
		if t.UserID == userID && t.AircraftID == aircraftID {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeRatings) ListByUser(_ context.Context, userID uuid.UUID) ([]model.TypeRating, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.TypeRating
	for _, t := range r.db.ratings {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

// --- bases, hour rules ---

type fakeBases struct{ db *memDB }

func (r fakeBases) Create(_ context.Context, b *model.Base) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, other := range r.db.bases {
		if other.ICAO == b.ICAO {
			return gorm.ErrDuplicatedKey
		}
	}
	newID(&b.ID)
	r.db.bases[b.ID] = *b
	return nil
}

func (r fakeBases) FindByID(_ context.Context, id uuid.UUID) (*model.Base, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.bases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (r fakeBases) FindByICAO(_ context.Context, icao string) (*model.Base, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, b := range r.db.bases {
		if b.ICAO == icao {
			return &b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeBases) List(_ context.Context, activeOnly bool) ([]model.Base, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.Base
	for _, b := range r.db.bases {
		if !activeOnly || b.IsActive {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r fakeBases) Update(_ context.Context, b *model.Base) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.bases[b.ID] = *b
	return nil
}

func (r fakeBases) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.bases[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.db.bases, id)
	return nil
}

type fakeHourRules struct{ db *memDB }

func (r fakeHourRules) Create(_ context.Context, m *model.FlightHourMultiplier) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	newID(&m.ID)
	r.db.hourRules[m.ID] = *m
	return nil
}

func (r fakeHourRules) FindByID(_ context.Context, id uuid.UUID) (*model.FlightHourMultiplier, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.hourRules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (r fakeHourRules) ListActive(ctx context.Context) ([]model.FlightHourMultiplier, error) {
	all, _ := r.List(ctx)
	var out []model.FlightHourMultiplier
	for _, m := range all {
		if m.IsActive {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Multiplier.GreaterThan(out[j].Multiplier) })
	return out, nil
}

func (r fakeHourRules) List(_ context.Context) ([]model.FlightHourMultiplier, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.FlightHourMultiplier
	for _, m := range r.db.hourRules {
		out = append(out, m)
	}
	return out, nil
}

func (r fakeHourRules) Update(_ context.Context, m *model.FlightHourMultiplier) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.hourRules[m.ID] = *m
	return nil
}

func (r fakeHourRules) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.hourRules[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.db.hourRules, id)
	return nil
}

// --- side effects ---

type recordingNotifier struct {
	mu     sync.Mutex
	events []events.Event
}

func (n *recordingNotifier) Notify(_ context.Context, ev events.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, ev := range n.events {
		out = append(out, ev.Type)
	}
	return out
}

type recordingMailer struct {
	sent []email.Message
}

func (m *recordingMailer) Send(_ context.Context, msg email.Message) (email.Result, error) {
	m.sent = append(m.sent, msg)
	return email.Result{MessageID: "test", SentAt: time.Now()}, nil
}

type fakeOFP struct {
	ofp *simbrief.OFP
	err error
}

func (f fakeOFP) LatestOFP(_ context.Context, _ string) (*simbrief.OFP, error) {
	return f.ofp, f.err
}

func (f fakeOFP) DispatchURL(req simbrief.DispatchRequest) string {
	return "https://dispatch.test/?orig=" + req.Origin + "&dest=" + req.Destination
}

// --- seed helpers ---

func (db *memDB) addPilot(username, base string, approved bool) model.Profile {
	db.mu.Lock()
	defer db.mu.Unlock()
	p := model.Profile{
		ID:          uuid.New(),
		Username:    username,
		Email:       username + "@example.com",
		BaseAirport: base,
		IsApproved:  approved,
		TotalHours:  decimal.Zero,
		Roles:       []model.UserRole{{Role: model.RolePilot}},
	}
	db.profiles[p.ID] = p
	return p
}

func (db *memDB) addAircraft(icao, family, multiplier string, price int64) model.Aircraft {
	db.mu.Lock()
	defer db.mu.Unlock()
	a := model.Aircraft{
		ID:              uuid.New(),
		ICAOType:        icao,
		Name:            icao,
		Family:          family,
		Multiplier:      decimal.RequireFromString(multiplier),
		TypeRatingPrice: price,
		IsActive:        true,
	}
	db.aircraft[a.ID] = a
	return a
}

func (db *memDB) addBase(icao, multiplier string) model.Base {
	db.mu.Lock()
	defer db.mu.Unlock()
	b := model.Base{ID: uuid.New(), ICAO: icao, Name: icao, Multiplier: decimal.RequireFromString(multiplier), IsActive: true}
	db.bases[b.ID] = b
	return b
}

func (db *memDB) addRoute(flight, dep, arr string, minutes int, family string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.catalog = append(db.catalog, model.RouteCatalog{
		ID:              uuid.New(),
		FlightNumber:    flight,
		DepartureICAO:   dep,
		ArrivalICAO:     arr,
		DurationMinutes: minutes,
		AircraftFamily:  family,
		IsActive:        true,
	})
}

func (db *memDB) addAirframe(reg string, aircraftID uuid.UUID, location string, flights int) model.FleetAircraft {
	db.mu.Lock()
	defer db.mu.Unlock()
	a := model.FleetAircraft{
		ID:           uuid.New(),
		Registration: reg,
		AircraftID:   aircraftID,
		LocationICAO: location,
		Status:       model.FleetIdle,
		TotalFlights: flights,
		TotalHours:   decimal.Zero,
	}
	db.fleet[a.ID] = a
	return a
}

func (db *memDB) leg(id uuid.UUID) model.DispatchLeg {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.legs[id]
}

func (db *memDB) profile(id uuid.UUID) model.Profile {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.profiles[id]
}

func (db *memDB) airframe(id uuid.UUID) model.FleetAircraft {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.fleet[id]
}

// --- notams, charts ---

type fakeNotams struct{ db *memDB }

func (r fakeNotams) Create(_ context.Context, n *model.Notam) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	newID(&n.ID)
	r.db.notams[n.ID] = *n
	return nil
}

func (r fakeNotams) FindByID(_ context.Context, id uuid.UUID) (*model.Notam, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n, ok := r.db.notams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &n, nil
}

func (r fakeNotams) List(_ context.Context, filter repository.NotamFilter) ([]model.Notam, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.Notam
	for _, n := range r.db.notams {
		if filter.AirportICAO != "" && n.AirportICAO != filter.AirportICAO {
			continue
		}
		if at := filter.ActiveAt; at != nil {
			if !n.IsActive || n.EffectiveFrom.After(*at) || (n.EffectiveTo != nil && !n.EffectiveTo.After(*at)) {
				continue
			}
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EffectiveFrom.After(out[j].EffectiveFrom) })
	return out, nil
}

func (r fakeNotams) Update(_ context.Context, n *model.Notam) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.notams[n.ID] = *n
	return nil
}

func (r fakeNotams) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.notams[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.db.notams, id)
	return nil
}

type fakeCharts struct {
	db  *memDB
	err error
}

func (r fakeCharts) Create(_ context.Context, c *model.AeronauticalChart) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	newID(&c.ID)
	r.db.charts = append(r.db.charts, *c)
	return nil
}

func (r fakeCharts) ListByAirport(_ context.Context, icao string) ([]model.AeronauticalChart, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.AeronauticalChart
	for _, c := range r.db.charts {
		if c.AirportICAO == icao {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r fakeCharts) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, c := range r.db.charts {
		if c.ID == id {
			r.db.charts = append(r.db.charts[:i], r.db.charts[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// --- roles ---

type fakeRoles struct{ db *memDB }

func (r fakeRoles) ListByUser(_ context.Context, userID uuid.UUID) ([]model.UserRole, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[userID]
	if !ok {
		return nil, nil
	}
	out := append([]model.UserRole(nil), p.Roles...)
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out, nil
}

func (r fakeRoles) Grant(ctx context.Context, userID uuid.UUID, role string) error {
	return fakeProfiles{r.db}.AddRole(ctx, userID, role)
}

func (r fakeRoles) Revoke(_ context.Context, userID uuid.UUID, role string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[userID]
	if !ok {
		return false, nil
	}
	kept := p.Roles[:0:0]
	for _, g := range p.Roles {
		if g.Role != role {
			kept = append(kept, g)
		}
	}
	removed := len(kept) < len(p.Roles)
	p.Roles = kept
	r.db.profiles[userID] = p
	return removed, nil
}

func (r fakeRoles) CountHoldersForUpdate(_ context.Context, role string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, p := range r.db.profiles {
		if p.HasRole(role) {
			n++
		}
	}
	return n, nil
}

// --- wallet ---

type fakeWallet struct{ db *memDB }

func (r fakeWallet) Create(_ context.Context, entry *model.WalletTransaction) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	newID(&entry.ID)
	entry.CreatedAt = time.Now()
	r.db.wallet = append(r.db.wallet, *entry)
	return nil
}

func (r fakeWallet) ListByUser(_ context.Context, userID uuid.UUID, page, limit int) ([]model.WalletTransaction, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var mine []model.WalletTransaction
	for i := len(r.db.wallet) - 1; i >= 0; i-- {
		if r.db.wallet[i].UserID == userID {
			mine = append(mine, r.db.wallet[i])
		}
	}
	return paginate(mine, page, limit), int64(len(mine)), nil
}
