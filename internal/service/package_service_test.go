package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modvault/modvault-backend/internal/common"
	"github.com/modvault/modvault-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) createGame(t *testing.T, title string, status domain.Status) *domain.PackageResponse {
	t.Helper()
	resp, err := f.games.Create(context.Background(), &domain.CreatePackageRequest{
		Title:      title,
		Status:     status,
		CategoryID: &f.gameCategory,
		Size:       "1.2 GB",
		Developer:  "Krafton",
	})
	require.NoError(t, err)
	return resp
}

func TestPackageCreate_SlugAndAssociations(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	resp, err := f.apps.Create(ctx, &domain.CreatePackageRequest{
		Title:       "  Spotify Premium  ",
		CategoryID:  &f.appCategory,
		IconPath:    "spotify/icon.png",
		IconBgColor: "#1DB954",
		AssociationInput: domain.AssociationInput{
			ModFeatures: []string{"No ads", " ", "Unlimited skips"},
			Screenshots: []string{"spotify/1.png", "https://img.example.com/2.png"},
			Tags:        []string{"music"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Spotify Premium", resp.Title)
	assert.Equal(t, "spotify-premium", resp.Slug)
	assert.Equal(t, domain.StatusDraft, resp.Status)
	assert.Len(t, resp.ID, 36)
	assert.Equal(t, "https://cdn.test/app-icons/spotify/icon.png", resp.IconURL)
	assert.Equal(t, []string{"No ads", "Unlimited skips"}, resp.ModFeatures)
	assert.Equal(t, []string{"https://cdn.test/screenshots/spotify/1.png", "https://img.example.com/2.png"}, resp.Screenshots)

	loaded, err := f.apps.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ModFeatures, loaded.ModFeatures)
	assert.Equal(t, []string{"music"}, loaded.Tags)

	// draft is not indexed
	assert.False(t, f.index.has(domain.ContentTypeApp, resp.ID))
}

func TestPackageCreate_Validation(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   domain.CreatePackageRequest
		field string
	}{
		{"empty title", domain.CreatePackageRequest{Title: "   ", CategoryID: &f.appCategory}, "title"},
		{"symbols only", domain.CreatePackageRequest{Title: "!!!", CategoryID: &f.appCategory}, "title"},
		{"missing category", domain.CreatePackageRequest{Title: "My App"}, "category_id"},
		{"blog category", domain.CreatePackageRequest{Title: "My App", CategoryID: &f.blogCategory}, "category_id"},
		{"scheduled app", domain.CreatePackageRequest{Title: "My App", CategoryID: &f.appCategory, Status: domain.StatusScheduled}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.apps.Create(ctx, &tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrValidation)

			var verr *common.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	_, meta, err := f.apps.List(ctx, PackageQuery{})
	require.NoError(t, err)
	assert.Zero(t, meta.Total)
}

func TestPackageCreate_CollisionDisambiguates(t *testing.T) {
	f := setupFixture(t)

	first := f.createGame(t, "PUBG Mobile: New State!!", domain.StatusPublished)
	second := f.createGame(t, "PUBG Mobile: New State!!", domain.StatusPublished)

	assert.Equal(t, "pubg-mobile-new-state", first.Slug)
	assert.Regexp(t, `^pubg-mobile-new-state-[0-9a-f]{8}$`, second.Slug)
}

func TestPackageUpdate_EditPreservesSlug(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	f.createGame(t, "PUBG Mobile: New State!!", domain.StatusPublished)
	dup := f.createGame(t, "PUBG Mobile: New State!!", domain.StatusPublished)

	updated, err := f.games.Update(ctx, dup.ID, &domain.UpdatePackageRequest{
		Size:        strPtr("1.5 GB"),
		Description: strPtr("Battle royale"),
	})
	require.NoError(t, err)
	assert.Equal(t, dup.Slug, updated.Slug)
	assert.Equal(t, "1.5 GB", updated.Size)

	// same title sent again is not a change
	updated, err = f.games.Update(ctx, dup.ID, &domain.UpdatePackageRequest{Title: strPtr("PUBG Mobile: New State!!")})
	require.NoError(t, err)
	assert.Equal(t, dup.Slug, updated.Slug)
}

func TestPackageUpdate_TitleChangeRegeneratesSlug(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	foo := f.createGame(t, "Foo", domain.StatusDraft)
	other := f.createGame(t, "Bar", domain.StatusDraft)

	updated, err := f.games.Update(ctx, foo.ID, &domain.UpdatePackageRequest{Title: strPtr("Bar")})
	require.NoError(t, err)

	assert.NotEqual(t, "foo", updated.Slug)
	assert.NotEqual(t, other.Slug, updated.Slug)
	assert.Regexp(t, `^bar-[0-9a-f]{8}$`, updated.Slug)

	// free target slug is used as is
	updated, err = f.games.Update(ctx, foo.ID, &domain.UpdatePackageRequest{Title: strPtr("Baz Deluxe")})
	require.NoError(t, err)
	assert.Equal(t, "baz-deluxe", updated.Slug)
}

func TestPackageUpdate_EmptyAssociationsClear(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	app, err := f.apps.Create(ctx, &domain.CreatePackageRequest{
		Title:      "Lens",
		CategoryID: &f.appCategory,
		AssociationInput: domain.AssociationInput{
			Screenshots: []string{"a.png", "b.png"},
			Tags:        []string{"camera"},
		},
	})
	require.NoError(t, err)

	updated, err := f.apps.Update(ctx, app.ID, &domain.UpdatePackageRequest{
		AssociationInput: domain.AssociationInput{Screenshots: []string{}},
	})
	require.NoError(t, err)

	assert.Empty(t, updated.Screenshots)
	assert.Zero(t, countAssociations(t, f.db, domain.ContentTypeApp, app.ID, domain.KindScreenshot))
	// tags were not sent and stay
	assert.Equal(t, []string{"camera"}, updated.Tags)
}

func TestPackageUpdate_PublishesChangedFields(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	app, err := f.apps.Create(ctx, &domain.CreatePackageRequest{Title: "Lens", CategoryID: &f.appCategory, IconBgColor: "#000000"})
	require.NoError(t, err)

	_, err = f.apps.Update(ctx, app.ID, &domain.UpdatePackageRequest{IconBgColor: strPtr("#FFFFFF")})
	require.NoError(t, err)

	change := f.events.last()
	assert.Equal(t, "apps", change.Table)
	assert.Equal(t, app.ID, change.ID)
	assert.Equal(t, map[string]interface{}{"icon_bg_color": "#FFFFFF"}, change.Fields)

	// a no-op save publishes nothing
	before := f.events.count()
	_, err = f.apps.Update(ctx, app.ID, &domain.UpdatePackageRequest{IconBgColor: strPtr("#FFFFFF")})
	require.NoError(t, err)
	assert.Equal(t, before, f.events.count())
}

func TestPackageUpdate_RejectsInconsistentRecord(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	app, err := f.apps.Create(ctx, &domain.CreatePackageRequest{Title: "Lens", CategoryID: &f.appCategory})
	require.NoError(t, err)
	require.NoError(t, f.db.Exec("UPDATE apps SET scheduled_at = ? WHERE id = ?", f.now, app.ID).Error)

	_, err = f.apps.Update(ctx, app.ID, &domain.UpdatePackageRequest{Size: strPtr("10 MB")})
	assert.ErrorIs(t, err, common.ErrInconsistentState)

	// an explicit status repairs it
	updated, err := f.apps.Update(ctx, app.ID, &domain.UpdatePackageRequest{Status: statusPtr(domain.StatusDraft)})
	require.NoError(t, err)
	assert.Nil(t, updated.ScheduledAt)
}

func TestPackageUpdate_NotFound(t *testing.T) {
	f := setupFixture(t)
	_, err := f.apps.Update(context.Background(), "missing", &domain.UpdatePackageRequest{})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPackageChangeStatus_IndexesLiveRecords(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	game := f.createGame(t, "Asphalt 9", domain.StatusDraft)

	published, err := f.games.ChangeStatus(ctx, game.ID, &domain.ChangeStatusRequest{Status: domain.StatusPublished})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, published.Status)
	assert.True(t, f.index.has(domain.ContentTypeGame, game.ID))
	assert.Equal(t, map[string]interface{}{"status": "published"}, f.events.last().Fields)

	_, err = f.games.ChangeStatus(ctx, game.ID, &domain.ChangeStatusRequest{Status: domain.StatusDraft})
	require.NoError(t, err)
	assert.False(t, f.index.has(domain.ContentTypeGame, game.ID))

	_, err = f.games.ChangeStatus(ctx, game.ID, &domain.ChangeStatusRequest{Status: domain.StatusScheduled})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestPackageGetBySlug_LiveOnly(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	draft := f.createGame(t, "Hidden Game", domain.StatusDraft)
	live := f.createGame(t, "Visible Game", domain.StatusPublished)

	_, err := f.games.GetBySlug(ctx, draft.Slug)
	assert.ErrorIs(t, err, common.ErrNotFound)

	got, err := f.games.GetBySlug(ctx, live.Slug)
	require.NoError(t, err)
	assert.Equal(t, live.ID, got.ID)
}

func TestPackageList_AdminAndPublic(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	for _, title := range []string{"One", "Two", "Three"} {
		f.createGame(t, title, domain.StatusPublished)
	}
	f.createGame(t, "Draft", domain.StatusDraft)

	all, meta, err := f.games.List(ctx, PackageQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, int64(4), meta.Total)

	drafts, _, err := f.games.List(ctx, PackageQuery{Status: domain.StatusDraft})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Draft", drafts[0].Title)

	live, meta, err := f.games.ListLive(ctx, 0, 0, nil)
	require.NoError(t, err)
	assert.Len(t, live, 3)
	assert.Equal(t, 20, meta.Limit)

	_, _, err = f.games.List(ctx, PackageQuery{Status: domain.StatusScheduled})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestPackageDelete_RemovesAssociations(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	app, err := f.apps.Create(ctx, &domain.CreatePackageRequest{
		Title:            "Lens",
		Status:           domain.StatusPublished,
		CategoryID:       &f.appCategory,
		AssociationInput: domain.AssociationInput{Tags: []string{"camera"}},
	})
	require.NoError(t, err)
	require.True(t, f.index.has(domain.ContentTypeApp, app.ID))

	require.NoError(t, f.apps.Delete(ctx, app.ID))

	_, err = f.apps.Get(ctx, app.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Zero(t, countAssociations(t, f.db, domain.ContentTypeApp, app.ID, domain.KindTag))
	assert.False(t, f.index.has(domain.ContentTypeApp, app.ID))
	assert.Equal(t, map[string]interface{}{"deleted": true}, f.events.last().Fields)

	assert.ErrorIs(t, f.apps.Delete(ctx, app.ID), common.ErrNotFound)
}

func TestChangedFields(t *testing.T) {
	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	same := ts.In(time.FixedZone("KST", 9*3600))
	var none *time.Time

	before := map[string]interface{}{"title": "A", "scheduled_at": &ts, "status": "scheduled"}
	assert.Empty(t, changedFields(before, map[string]interface{}{"title": "A", "scheduled_at": &same, "status": "scheduled"}))

	changed := changedFields(before, map[string]interface{}{"title": "B", "scheduled_at": none, "status": "draft"})
	assert.Equal(t, "B", changed["title"])
	assert.Equal(t, "draft", changed["status"])
	assert.Contains(t, changed, "scheduled_at")
}
