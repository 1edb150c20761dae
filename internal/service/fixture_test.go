package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/modvault/modvault-backend/internal/domain"
	"github.com/modvault/modvault-backend/internal/migration"
	"github.com/modvault/modvault-backend/internal/publication"
	"github.com/modvault/modvault-backend/internal/realtime"
	"github.com/modvault/modvault-backend/internal/repository"
	"github.com/modvault/modvault-backend/internal/slug"
	"github.com/modvault/modvault-backend/pkg/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// --- Fakes ---

type recordingEvents struct {
	mu      sync.Mutex
	changes []realtime.Change
}

func (r *recordingEvents) Publish(_ context.Context, change realtime.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
}

func (r *recordingEvents) last() realtime.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.changes) == 0 {
		return realtime.Change{}
	}
	return r.changes[len(r.changes)-1]
}

func (r *recordingEvents) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes)
}

type recordingIndex struct {
	mu      sync.Mutex
	docs    map[string]SearchDocument
	removed []string
}

func newRecordingIndex() *recordingIndex {
	return &recordingIndex{docs: map[string]SearchDocument{}}
}

func (r *recordingIndex) Index(_ context.Context, doc SearchDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.DocID()] = doc
	return nil
}

func (r *recordingIndex) Remove(_ context.Context, ct domain.ContentType, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, DocID(ct, id))
	r.removed = append(r.removed, DocID(ct, id))
	return nil
}

func (r *recordingIndex) has(ct domain.ContentType, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.docs[DocID(ct, id)]
	return ok
}

// --- Fixture ---

type fixture struct {
	db     *gorm.DB
	now    time.Time
	deps   *ContentDeps
	store  *repository.PublicationStore
	apps   PackageService
	games  PackageService
	blogs  BlogService
	events *recordingEvents
	index  *recordingIndex

	appCategory  uint64
	gameCategory uint64
	blogCategory uint64
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migration.Run(db))

	now := time.Now().UTC().Truncate(time.Second)
	store := repository.NewPublicationStore(db)
	f := &fixture{
		db:     db,
		now:    now,
		store:  store,
		events: &recordingEvents{},
		index:  newRecordingIndex(),
	}
	f.deps = &ContentDeps{
		DB:           db,
		Slugs:        slug.NewResolver(store, 5),
		Machine:      publication.NewMachine(time.UTC).WithClock(func() time.Time { return now }),
		Categories:   repository.NewCategoryRepository(db),
		Associations: repository.NewAssociationRepository(db),
		Versions:     repository.NewVersionRepository(db),
		Events:       f.events,
		Index:        f.index,
		Media: storage.NewResolver(map[string]string{
			BucketAppIcons:    "https://cdn.test/app-icons",
			BucketGameIcons:   "https://cdn.test/game-icons",
			BucketScreenshots: "https://cdn.test/screenshots",
			BucketBlogCovers:  "https://cdn.test/blog-covers/",
		}),
	}
	f.apps = NewAppService(repository.NewAppRepository(db), f.deps)
	f.games = NewGameService(repository.NewGameRepository(db), f.deps)
	f.blogs = NewBlogService(repository.NewBlogRepository(db), f.deps)

	f.appCategory = categoryID(t, db, "tools")
	f.gameCategory = categoryID(t, db, "action")
	f.blogCategory = categoryID(t, db, "guides")
	return f
}

func categoryID(t *testing.T, db *gorm.DB, slugValue string) uint64 {
	t.Helper()
	var c domain.Category
	require.NoError(t, db.Where("slug = ?", slugValue).First(&c).Error)
	return c.ID
}

func strPtr(s string) *string { return &s }

func statusPtr(s domain.Status) *domain.Status { return &s }

func countAssociations(t *testing.T, db *gorm.DB, ct domain.ContentType, id string, kind domain.AssociationKind) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&domain.ContentAssociation{}).
		Where("content_type = ? AND content_id = ? AND kind = ?", ct, id, kind).
		Count(&n).Error)
	return n
}
