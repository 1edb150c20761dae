package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/modvault/modvault-backend/internal/common"
	"github.com/modvault/modvault-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.App{}, &domain.Game{}, &domain.Blog{},
		&domain.Category{}, &domain.ContentVersion{}, &domain.ContentAssociation{},
	))
	return db
}

func newApp(title, slug string, status domain.Status) *domain.App {
	return &domain.App{
		ContentBase:    domain.ContentBase{Title: title, Slug: slug, Status: status},
		PackageDetails: domain.PackageDetails{Developer: "Mod Team", Description: title + " unlocked"},
	}
}

func TestContentRepository_CreateAssignsID(t *testing.T) {
	repo := NewAppRepository(setupTestDB(t))
	ctx := context.Background()

	app := newApp("My App", "my-app", domain.StatusDraft)
	require.NoError(t, repo.Create(ctx, app))
	assert.Len(t, app.ID, 36)

	found, err := repo.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "my-app", found.Slug)
	assert.Equal(t, "Mod Team", found.Developer)
}

func TestContentRepository_NotFound(t *testing.T) {
	repo := NewAppRepository(setupTestDB(t))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestContentRepository_DuplicateSlugIsConflict(t *testing.T) {
	repo := NewAppRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newApp("My App", "my-app", domain.StatusDraft)))
	err := repo.Create(ctx, newApp("My App", "my-app", domain.StatusDraft))

	assert.ErrorIs(t, err, common.ErrSlugConflict)
}

func TestContentRepository_SlugUniquePerTable(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, NewAppRepository(db).Create(ctx, newApp("Shared", "shared", domain.StatusDraft)))
	game := &domain.Game{ContentBase: domain.ContentBase{Title: "Shared", Slug: "shared", Status: domain.StatusDraft}}
	assert.NoError(t, NewGameRepository(db).Create(ctx, game))
}

func TestContentRepository_FindBySlugLiveOnly(t *testing.T) {
	repo := NewAppRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newApp("Draft", "draft", domain.StatusDraft)))
	require.NoError(t, repo.Create(ctx, newApp("Live", "live", domain.StatusPublished)))

	_, err := repo.FindBySlug(ctx, "draft", true)
	assert.ErrorIs(t, err, common.ErrNotFound)

	found, err := repo.FindBySlug(ctx, "draft", false)
	require.NoError(t, err)
	assert.Equal(t, "Draft", found.Title)

	found, err = repo.FindBySlug(ctx, "live", true)
	require.NoError(t, err)
	assert.Equal(t, "Live", found.Title)
}

func TestContentRepository_List(t *testing.T) {
	repo := NewAppRepository(setupTestDB(t))
	ctx := context.Background()

	cat := uint64(3)
	for i, title := range []string{"Alpha", "Beta", "Gamma", "Delta"} {
		app := newApp(title, strings.ToLower(title), domain.StatusPublished)
		if i%2 == 0 {
			app.Status = domain.StatusDraft
			app.CategoryID = &cat
		}
		require.NoError(t, repo.Create(ctx, app))
	}

	live, total, err := repo.List(ctx, ListParams{LiveOnly: true, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, a := range live {
		assert.Equal(t, domain.StatusPublished, a.Status)
	}

	drafts, total, err := repo.List(ctx, ListParams{Status: domain.StatusDraft, CategoryID: &cat, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, drafts, 2)

	page, total, err := repo.List(ctx, ListParams{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, page, 1)

	found, total, err := repo.List(ctx, ListParams{Query: "gamma unlocked", Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Gamma", found[0].Title)
}

func TestContentRepository_UpdateClearsSchedule(t *testing.T) {
	repo := NewBlogRepository(setupTestDB(t))
	ctx := context.Background()

	at := time.Now().UTC().Add(time.Hour)
	blog := &domain.Blog{
		ContentBase: domain.ContentBase{Title: "Soon", Slug: "soon", Status: domain.StatusScheduled, ScheduledAt: &at},
		Content:     "# Soon",
	}
	require.NoError(t, repo.Create(ctx, blog))

	blog.Status = domain.StatusDraft
	blog.ScheduledAt = nil
	blog.Excerpt = ""
	require.NoError(t, repo.Update(ctx, blog))

	found, err := repo.FindByID(ctx, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, found.Status)
	assert.Nil(t, found.ScheduledAt)
	assert.False(t, found.CreatedAt.IsZero())
}

func TestContentRepository_WithTxRollback(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAppRepository(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := repo.WithTx(tx).Create(ctx, newApp("Rolled", "rolled", domain.StatusDraft)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.FindBySlug(ctx, "rolled", false)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"not found", gorm.ErrRecordNotFound, common.ErrNotFound},
		{"mysql slug", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'my-app' for key 'apps.idx_apps_slug'"}, common.ErrSlugConflict},
		{"mysql other", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1' for key 'PRIMARY'"}, common.ErrDuplicate},
		{"sqlite slug", errors.New("UNIQUE constraint failed: games.slug"), common.ErrSlugConflict},
		{"gorm duplicated", gorm.ErrDuplicatedKey, common.ErrDuplicate},
		{"anything else", errors.New("connection reset"), common.ErrRepository},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate("op", "apps", tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestPublicationStore_SlugExists(t *testing.T) {
	db := setupTestDB(t)
	store := NewPublicationStore(db)
	ctx := context.Background()

	app := newApp("My App", "my-app", domain.StatusDraft)
	require.NoError(t, NewAppRepository(db).Create(ctx, app))

	taken, err := store.SlugExists(ctx, "apps", "my-app", "")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = store.SlugExists(ctx, "apps", "my-app", app.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = store.SlugExists(ctx, "games", "my-app", "")
	require.NoError(t, err)
	assert.False(t, taken)

	_, err = store.SlugExists(ctx, "users; DROP TABLE apps", "x", "")
	assert.ErrorIs(t, err, common.ErrRepository)
}

func TestPublicationStore_PromoteDue(t *testing.T) {
	db := setupTestDB(t)
	store := NewPublicationStore(db)
	blogs := NewBlogRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	due := &domain.Blog{ContentBase: domain.ContentBase{Title: "Due", Slug: "due", Status: domain.StatusScheduled, ScheduledAt: &past}}
	exact := &domain.Blog{ContentBase: domain.ContentBase{Title: "Exact", Slug: "exact", Status: domain.StatusScheduled, ScheduledAt: &now}}
	later := &domain.Blog{ContentBase: domain.ContentBase{Title: "Later", Slug: "later", Status: domain.StatusScheduled, ScheduledAt: &future}}
	draft := &domain.Blog{ContentBase: domain.ContentBase{Title: "Draft", Slug: "draft", Status: domain.StatusDraft}}
	for _, b := range []*domain.Blog{due, exact, later, draft} {
		require.NoError(t, blogs.Create(ctx, b))
	}

	ids, err := store.PromoteDue(ctx, "blogs", now)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{due.ID, exact.ID}, ids)

	found, err := blogs.FindByID(ctx, due.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, found.Status)
	assert.Nil(t, found.ScheduledAt)

	found, err = blogs.FindByID(ctx, later.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, found.Status)

	ids, err = store.PromoteDue(ctx, "blogs", now)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPublicationStore_PromoteDueSkipsRescheduled(t *testing.T) {
	db := setupTestDB(t)
	store := NewPublicationStore(db)
	blogs := NewBlogRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	tomorrow := now.Add(24 * time.Hour)

	moved := &domain.Blog{ContentBase: domain.ContentBase{Title: "Moved", Slug: "moved", Status: domain.StatusScheduled, ScheduledAt: &past}}
	kept := &domain.Blog{ContentBase: domain.ContentBase{Title: "Kept", Slug: "kept", Status: domain.StatusScheduled, ScheduledAt: &past}}
	require.NoError(t, blogs.Create(ctx, moved))
	require.NoError(t, blogs.Create(ctx, kept))

	// 후보 조회 직후 에디터가 내일로 예약 변경
	rescheduled := false
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:reschedule", func(d *gorm.DB) {
		if rescheduled || d.Statement.Table != "blogs" {
			return
		}
		rescheduled = true
		d.Session(&gorm.Session{NewDB: true}).Table("blogs").
			Where("id = ?", moved.ID).
			Update("scheduled_at", tomorrow)
	}))
	ids, err := store.PromoteDue(ctx, "blogs", now)
	require.NoError(t, db.Callback().Query().Remove("test:reschedule"))
	require.NoError(t, err)
	require.True(t, rescheduled)

	assert.Equal(t, []string{kept.ID}, ids)

	found, err := blogs.FindByID(ctx, moved.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, found.Status)
	require.NotNil(t, found.ScheduledAt)
	assert.True(t, found.ScheduledAt.Equal(tomorrow))

	found, err = blogs.FindByID(ctx, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, found.Status)
}

func TestPublicationStore_LiveEntriesAndInconsistent(t *testing.T) {
	db := setupTestDB(t)
	store := NewPublicationStore(db)
	repo := NewAppRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newApp("Live", "live", domain.StatusPublished)))
	require.NoError(t, repo.Create(ctx, newApp("Hidden", "hidden", domain.StatusDraft)))

	broken := newApp("Broken", "broken", domain.StatusPublished)
	require.NoError(t, repo.Create(ctx, broken))
	require.NoError(t, db.Table("apps").Where("id = ?", broken.ID).Update("scheduled_at", time.Now().UTC()).Error)

	entries, err := store.LiveEntries(ctx, "apps")
	require.NoError(t, err)
	slugs := []string{}
	for _, e := range entries {
		slugs = append(slugs, e.Slug)
	}
	assert.ElementsMatch(t, []string{"live", "broken"}, slugs)

	rows, err := store.Inconsistent(ctx, "apps")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, broken.ID, rows[0].ID)

	_, err = store.LiveEntries(ctx, "categories")
	assert.ErrorIs(t, err, common.ErrRepository)
}

func TestVersionRepository(t *testing.T) {
	repo := NewVersionRepository(setupTestDB(t))
	ctx := context.Background()

	latest, err := repo.LatestVersion(ctx, domain.ContentTypeBlog, "b-1")
	require.NoError(t, err)
	assert.Equal(t, uint(0), latest)

	for n := uint(1); n <= 3; n++ {
		require.NoError(t, repo.Create(ctx, &domain.ContentVersion{
			ContentType: domain.ContentTypeBlog, RecordID: "b-1", VersionNumber: n, Title: "v",
		}))
	}

	latest, err = repo.LatestVersion(ctx, domain.ContentTypeBlog, "b-1")
	require.NoError(t, err)
	assert.Equal(t, uint(3), latest)

	err = repo.Create(ctx, &domain.ContentVersion{ContentType: domain.ContentTypeBlog, RecordID: "b-1", VersionNumber: 3})
	assert.ErrorIs(t, err, common.ErrDuplicate)

	versions, err := repo.FindByRecord(ctx, domain.ContentTypeBlog, "b-1")
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, uint(3), versions[0].VersionNumber)

	_, err = repo.FindByRecordAndVersion(ctx, domain.ContentTypeBlog, "b-1", 9)
	assert.ErrorIs(t, err, common.ErrVersionNotFound)

	require.NoError(t, repo.DeleteByRecord(ctx, domain.ContentTypeBlog, "b-1"))
	versions, err = repo.FindByRecord(ctx, domain.ContentTypeBlog, "b-1")
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestAssociationRepository_Replace(t *testing.T) {
	repo := NewAssociationRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Replace(ctx, domain.ContentTypeApp, "a-1", domain.KindModFeature, []string{"No ads", "Unlocked"}))
	require.NoError(t, repo.Replace(ctx, domain.ContentTypeApp, "a-1", domain.KindTag, []string{"tools"}))
	require.NoError(t, repo.Replace(ctx, domain.ContentTypeGame, "a-1", domain.KindModFeature, []string{"other owner"}))

	require.NoError(t, repo.Replace(ctx, domain.ContentTypeApp, "a-1", domain.KindModFeature, []string{"Premium", "No ads", "Dark mode"}))

	features, err := repo.List(ctx, domain.ContentTypeApp, "a-1", domain.KindModFeature)
	require.NoError(t, err)
	assert.Equal(t, []string{"Premium", "No ads", "Dark mode"}, features)

	all, err := repo.ListAll(ctx, domain.ContentTypeApp, "a-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tools"}, all[domain.KindTag])

	// empty replaces to zero rows
	require.NoError(t, repo.Replace(ctx, domain.ContentTypeApp, "a-1", domain.KindModFeature, []string{}))
	features, err = repo.List(ctx, domain.ContentTypeApp, "a-1", domain.KindModFeature)
	require.NoError(t, err)
	assert.Empty(t, features)

	other, err := repo.List(ctx, domain.ContentTypeGame, "a-1", domain.KindModFeature)
	require.NoError(t, err)
	assert.Equal(t, []string{"other owner"}, other)

	require.NoError(t, repo.DeleteAll(ctx, domain.ContentTypeApp, "a-1"))
	all, err = repo.ListAll(ctx, domain.ContentTypeApp, "a-1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCategoryRepository(t *testing.T) {
	repo := NewCategoryRepository(setupTestDB(t))
	ctx := context.Background()

	tools := &domain.Category{Name: "Tools", Slug: "tools", ContentType: domain.ContentTypeApp, OrderNum: 2}
	action := &domain.Category{Name: "Action", Slug: "action", ContentType: domain.ContentTypeGame}
	require.NoError(t, repo.Create(ctx, tools))
	require.NoError(t, repo.Create(ctx, action))

	found, err := repo.FindByID(ctx, tools.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tools", found.Name)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, common.ErrNotFound)

	apps, err := repo.List(ctx, domain.ContentTypeApp)
	require.NoError(t, err)
	require.Len(t, apps, 1)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	err = repo.Create(ctx, &domain.Category{Name: "Tools", Slug: "tools", ContentType: domain.ContentTypeApp})
	assert.ErrorIs(t, err, common.ErrSlugConflict)
}
