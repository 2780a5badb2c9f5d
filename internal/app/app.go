// Package app wires repositories, integrations and services together for the API server and the CLI.
package app

import (
	"context"
	"time"

	"vaops/internal/cache"
	"vaops/internal/config"
	"vaops/internal/email"
	"vaops/internal/events"
	"vaops/internal/integration"
	"vaops/internal/integration/discord"
	"vaops/internal/integration/infiniteflight"
	"vaops/internal/integration/simbrief"
	"vaops/internal/integration/weather"
	"vaops/internal/notify"
	"vaops/internal/repository"
	"vaops/internal/service"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Repositories struct {
	Profiles      repository.ProfileRepository
	Tokens        repository.RefreshTokenRepository
	Registrations repository.RegistrationRepository
	Careers       repository.CareerRepository
	Aircraft      repository.AircraftRepository
	TypeRatings   repository.TypeRatingRepository
	Bases         repository.BaseRepository
	HourRules     repository.HourRuleRepository
	Catalog       repository.RouteCatalogRepository
	Dispatch      repository.DispatchRepository
	Pireps        repository.PirepRepository
	Fleet         repository.FleetRepository
	Notams        repository.NotamRepository
	Charts        repository.ChartRepository
	Audits        repository.AuditRepository
	Statistics    repository.StatisticsRepository
	Roles         repository.RoleRepository
	Wallet        repository.WalletRepository
	Tx            repository.TransactionManager
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Profiles:      repository.NewProfileRepository(db),
		Tokens:        repository.NewRefreshTokenRepository(db),
		Registrations: repository.NewRegistrationRepository(db),
		Careers:       repository.NewCareerRepository(db),
		Aircraft:      repository.NewAircraftRepository(db),
		TypeRatings:   repository.NewTypeRatingRepository(db),
		Bases:         repository.NewBaseRepository(db),
		HourRules:     repository.NewHourRuleRepository(db),
		Catalog:       repository.NewRouteCatalogRepository(db),
		Dispatch:      repository.NewDispatchRepository(db),
		Pireps:        repository.NewPirepRepository(db),
		Fleet:         repository.NewFleetRepository(db),
		Notams:        repository.NewNotamRepository(db),
		Charts:        repository.NewChartRepository(db),
		Audits:        repository.NewAuditRepository(db),
		Statistics:    repository.NewStatisticsRepository(db),
		Roles:         repository.NewRoleRepository(db),
		Wallet:        repository.NewWalletRepository(db),
		Tx:            repository.NewTransactionManager(db),
	}
}

type Services struct {
	Auth         service.AuthService
	Registration service.RegistrationService
	Career       service.CareerService
	Dispatch     service.DispatchService
	Pirep        service.PirepService
	Fleet        service.FleetService
	Shop         service.ShopService
	Logbook      service.LogbookService
	Leaderboard  service.LeaderboardService
	Reference    service.ReferenceService
	Catalog      service.CatalogService
	Notam        service.NotamService
	Proxy        service.ProxyService
	Audit        service.AuditService
	Statistics   service.StatisticsService
	Roles        service.RoleService
	Wallet       service.WalletService
}

// Deps are the collaborators that differ between the server and the CLI.
type Deps struct {
	Store    cache.Store
	Notifier notify.Notifier
	Mailer   email.Sender
}

func NewServices(cfg *config.Config, repos Repositories, deps Deps, log *zap.Logger) Services {
	hc := integration.NewHTTPClient()
	ofp := simbrief.NewClient(simbrief.DefaultFetcherURL, cfg.SimBriefAPIKey, hc)
	wx := weather.NewClient(weather.DefaultBaseURL, hc)
	live := infiniteflight.NewClient(infiniteflight.DefaultBaseURL, cfg.IFAPIKey, hc)

	fleet := service.NewFleetService(repos.Fleet, repos.Aircraft, repos.Audits, repos.Tx, deps.Notifier, log)
	notams := service.NewNotamService(repos.Notams, repos.Charts, repos.Audits, log)

	return Services{
		Auth:         service.NewAuthService(repos.Profiles, repos.Tokens, repos.Registrations, repos.Bases, repos.Tx, []byte(cfg.JWTSecret), log),
		Registration: service.NewRegistrationService(repos.Registrations, repos.Profiles, repos.Audits, repos.Tx, deps.Mailer, deps.Notifier, log),
		Career: service.NewCareerService(repos.Careers, repos.Profiles, repos.Aircraft, repos.Catalog, repos.Dispatch,
			repos.Fleet, repos.Audits, repos.Tx, deps.Notifier, log),
		Dispatch: service.NewDispatchService(repos.Dispatch, repos.Profiles, repos.Tx, ofp, deps.Notifier, log),
		Pirep: service.NewPirepService(repos.Pireps, repos.Dispatch, repos.Profiles, repos.Aircraft, repos.Bases,
			repos.HourRules, fleet, repos.Audits, repos.Wallet, repos.Tx, deps.Notifier, log),
		Fleet:       fleet,
		Shop:        service.NewShopService(repos.Aircraft, repos.TypeRatings, repos.Profiles, repos.Audits, repos.Wallet, repos.Tx, log),
		Logbook:     service.NewLogbookService(repos.Pireps),
		Leaderboard: service.NewLeaderboardService(repos.Profiles),
		Reference:   service.NewReferenceService(repos.Aircraft, repos.Bases, repos.HourRules, repos.Audits, log),
		Catalog:     service.NewCatalogService(repos.Catalog, repos.Audits, repos.Tx, log),
		Notam:       notams,
		Proxy:       service.NewProxyService(wx, live, ofp, deps.Store, repos.Profiles, notams, log),
		Audit:       service.NewAuditService(repos.Audits),
		Statistics:  service.NewStatisticsService(repos.Statistics),
		Roles:       service.NewRoleService(repos.Roles, repos.Profiles, repos.Audits, repos.Tx, log),
		Wallet:      service.NewWalletService(repos.Wallet, repos.Profiles),
	}
}

// Infra holds the optional backends. Every field falls back to a no-op when its setting is empty.
type Infra struct {
	Store  cache.Store
	Events events.Publisher
	Mailer email.Sender
	// Webhook is nil when DISCORD_WEBHOOK_URL is unset.
	Webhook notify.WebhookSender

	closers []func()
}

func NewInfra(ctx context.Context, cfg *config.Config, log *zap.Logger) *Infra {
	in := &Infra{
		Store:  cache.Noop{},
		Events: events.Noop{},
		Mailer: email.NewNoopSender(log),
	}

	if cfg.RedisAddr != "" {
		rc := cache.New(cfg.RedisAddr, cfg.RedisPassword)
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rc.Ping(pctx)
		cancel()
		if err != nil {
			log.Warn("redis unavailable, caching and rate limits disabled", zap.Error(err))
			_ = rc.Close()
		} else {
			in.Store = rc
			in.closers = append(in.closers, func() { _ = rc.Close() })
		}
	}

	if cfg.NATSURL != "" {
		nc, err := events.Connect(cfg.NATSURL, log)
		if err != nil {
			log.Warn("nats unavailable, events are not published", zap.Error(err))
		} else {
			in.Events = nc
			in.closers = append(in.closers, nc.Close)
		}
	}

	if cfg.ResendAPIKey != "" {
		in.Mailer = email.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom, log)
	}

	if wh := discord.NewWebhook(cfg.DiscordWebhookURL, integration.NewHTTPClient()); wh != nil {
		in.Webhook = wh
	}
	return in
}

func (in *Infra) Close() {
	for i := len(in.closers) - 1; i >= 0; i-- {
		in.closers[i]()
	}
}
