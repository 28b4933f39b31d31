package service

import (
	"testing"
	"time"

	"techtrain_backend/internal/catalog"
	"techtrain_backend/internal/repository"
	"techtrain_backend/pkg/database"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Manifests used across the progress and session tests.
const (
	netManifest = `{
		"id": "net101",
		"name": "Networking Basics",
		"tasks": [
			{"id": "t1", "points": 40, "required": true},
			{"id": "t2", "points": 30, "required": true},
			{"id": "t3", "points": 30, "required": true}
		]
	}`

	advManifest = `{
		"id": "adv200",
		"name": "Advanced Networking",
		"prerequisites": ["net101"],
		"tasks": [{"id": "a1", "points": 100, "required": true}]
	}`
)

type stubUnit struct {
	id string
}

func (u *stubUnit) ModuleID() string                { return u.id }
func (u *stubUnit) Objectives() []string            { return nil }
func (u *stubUnit) Tasks() []catalog.TaskDescriptor { return nil }
func (u *stubUnit) ValidateTask(taskID string, evidence map[string]string) error {
	return nil
}

type captureSink struct {
	snapshots []CompletionSnapshot
}

func (s *captureSink) Deliver(snapshot CompletionSnapshot) error {
	s.snapshots = append(s.snapshots, snapshot)
	return nil
}

type progressFixture struct {
	db         *gorm.DB
	reg        *catalog.Registry
	loader     *catalog.Loader
	progress   *ProgressService
	sessions   *SessionService
	milestones *MilestoneService
	sink       *captureSink

	clock time.Time
}

func (f *progressFixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func newProgressFixture(t *testing.T, manifests ...string) *progressFixture {
	t.Helper()

	db, err := database.InitDB(":memory:")
	require.NoError(t, err)

	reg := catalog.NewRegistry()
	loader := catalog.NewLoader(reg, "", zap.NewNop())
	for _, m := range manifests {
		d, err := loader.RegisterManifest([]byte(m))
		require.NoError(t, err)
		id := d.ID
		reg.Register(id, catalog.UnitClassName(id), func() (interface{}, error) {
			return &stubUnit{id: id}, nil
		})
	}

	progressRepo := repository.NewProgressRepository(db)
	milestones := NewMilestoneService(repository.NewMilestoneRepository(db), progressRepo, zap.NewNop())
	prereqs := NewPrerequisiteService(catalog.NewResolver(loader), progressRepo)
	sink := &captureSink{}

	f := &progressFixture{
		db:         db,
		reg:        reg,
		loader:     loader,
		milestones: milestones,
		sink:       sink,
		clock:      time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}

	f.progress = NewProgressService(db, progressRepo, loader, prereqs, milestones, sink, zap.NewNop())
	f.progress.now = func() time.Time { return f.clock }

	f.sessions = NewSessionService(repository.NewSessionRepository(db), f.progress, zap.NewNop())
	f.sessions.now = func() time.Time { return f.clock }

	return f
}

func score(v float64) *float64 {
	return &v
}
