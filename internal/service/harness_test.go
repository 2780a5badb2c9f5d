package service

import (
	"math/rand"
	"testing"
	"time"

	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type harness struct {
	db       *memDB
	notifier *recordingNotifier
	mailer   *recordingMailer

	careers       CareerService
	dispatch      DispatchService
	pireps        PirepService
	fleet         FleetService
	shop          ShopService
	registrations RegistrationService
	catalog       CatalogService
	logbook       LogbookService
	leaderboard   LeaderboardService
	reference     ReferenceService
	notams        NotamService
	wallet        WalletService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := newMemDB()
	log := zap.NewNop()
	notifier := &recordingNotifier{}
	mailer := &recordingMailer{}

	profiles := fakeProfiles{db}
	audits := fakeAudits{db}
	aircraft := fakeAircraft{db}
	dispatchRepo := fakeDispatch{db}
	tx := fakeTx{}

	fleet := NewFleetService(fakeFleet{db}, aircraft, audits, tx, notifier, log)
	fleet.(*fleetService).now = func() time.Time { return fixedNow }

	careers := NewCareerService(fakeCareers{db}, profiles, aircraft, fakeCatalog{db}, dispatchRepo, fakeFleet{db}, audits, tx, notifier, log)
	careers.(*careerService).rng = rand.New(rand.NewSource(1))
	careers.(*careerService).now = func() time.Time { return fixedNow }

	dispatch := NewDispatchService(dispatchRepo, profiles, tx, fakeOFP{}, notifier, log)
	dispatch.(*dispatchService).now = func() time.Time { return fixedNow }

	pireps := NewPirepService(fakePireps{db}, dispatchRepo, profiles, aircraft, fakeBases{db}, fakeHourRules{db}, fleet, audits, fakeWallet{db}, tx, notifier, log)
	pireps.(*pirepService).now = func() time.Time { return fixedNow }

	registrations := NewRegistrationService(fakeRegistrations{db}, profiles, audits, tx, mailer, notifier, log)
	registrations.(*registrationService).now = func() time.Time { return fixedNow }

	notams := NewNotamService(fakeNotams{db}, fakeCharts{db: db}, audits, log)
	notams.(*notamService).now = func() time.Time { return fixedNow }

	return &harness{
		db:            db,
		notifier:      notifier,
		mailer:        mailer,
		careers:       careers,
		dispatch:      dispatch,
		pireps:        pireps,
		fleet:         fleet,
		shop:          NewShopService(aircraft, fakeRatings{db}, profiles, audits, fakeWallet{db}, tx, log),
		registrations: registrations,
		catalog:       NewCatalogService(fakeCatalog{db}, audits, tx, log),
		logbook:       NewLogbookService(fakePireps{db}),
		leaderboard:   NewLeaderboardService(profiles),
		reference:     NewReferenceService(aircraft, fakeBases{db}, fakeHourRules{db}, audits, log),
		notams:        notams,
		wallet:        NewWalletService(fakeWallet{db}, profiles),
	}
}
