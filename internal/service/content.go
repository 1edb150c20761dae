package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/modvault/modvault-backend/internal/common"
	"github.com/modvault/modvault-backend/internal/domain"
	"github.com/modvault/modvault-backend/internal/publication"
	"github.com/modvault/modvault-backend/internal/realtime"
	"github.com/modvault/modvault-backend/internal/repository"
	"github.com/modvault/modvault-backend/internal/slug"
	"github.com/modvault/modvault-backend/pkg/cache"
	pkglogger "github.com/modvault/modvault-backend/pkg/logger"
	"github.com/modvault/modvault-backend/pkg/storage"
	"gorm.io/gorm"
)

// 미디어 버킷
const (
	BucketAppIcons    = "app-icons"
	BucketGameIcons   = "game-icons"
	BucketScreenshots = "screenshots"
	BucketBlogCovers  = "blog-covers"
)

// ContentDeps collaborators shared by the app, game and blog services.
// Cache, Events and Index may be nil.
type ContentDeps struct {
	DB           *gorm.DB
	Slugs        *slug.Resolver
	Machine      *publication.Machine
	Categories   repository.CategoryRepository
	Associations repository.AssociationRepository
	Versions     repository.VersionRepository
	Cache        cache.Service
	Events       realtime.Publisher
	Index        Indexer
	Media        *storage.Resolver
}

func (d *ContentDeps) cache() cache.Service {
	if d.Cache == nil {
		return cache.NewService(nil)
	}
	return d.Cache
}

func (d *ContentDeps) media() *storage.Resolver {
	if d.Media == nil {
		return storage.NewResolver(nil)
	}
	return d.Media
}

// requireTitle trims the title and rejects an empty one before any repository call
func requireTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", common.NewValidationError("title", "is required")
	}
	return title, nil
}

// checkCategory the category must exist and belong to the same content type
func (d *ContentDeps) checkCategory(ctx context.Context, ct domain.ContentType, id *uint64, required bool) error {
	if id == nil {
		if required {
			return common.NewValidationError("category_id", "is required")
		}
		return nil
	}

	category, err := d.Categories.FindByID(ctx, *id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewValidationError("category_id", "category %d does not exist", *id)
		}
		return err
	}
	if category.ContentType != ct {
		return common.NewValidationError("category_id", "category %d belongs to %s, not %s", *id, category.ContentType, ct)
	}
	return nil
}

// replaceAssociations full replace of every kind the request carries (nil = keep)
func replaceAssociations(ctx context.Context, repo repository.AssociationRepository, ct domain.ContentType, id string, sets map[domain.AssociationKind][]string) error {
	for _, kind := range []domain.AssociationKind{domain.KindModFeature, domain.KindScreenshot, domain.KindTag} {
		items, ok := sets[kind]
		if !ok || items == nil {
			continue
		}
		if err := repo.Replace(ctx, ct, id, kind, cleanItems(items)); err != nil {
			return err
		}
	}
	return nil
}

// cleanItems trims payloads and drops empty ones, keeping order
func cleanItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// savedEvent describes a committed write for the post-commit hooks
type savedEvent struct {
	Type    domain.ContentType
	ID      string
	Slugs   []string // current and previous slug
	Fields  map[string]interface{}
	Doc     *SearchDocument // nil removes the record from the index
	Deleted bool
}

// committed runs cache invalidation, realtime publish and search indexing.
// Failures are logged and never reach the caller.
func (d *ContentDeps) committed(ctx context.Context, ev savedEvent) {
	table := ev.Type.Table()

	slugs := make([]string, 0, len(ev.Slugs))
	for _, s := range ev.Slugs {
		if s != "" {
			slugs = append(slugs, s)
		}
	}
	c := d.cache()
	if err := c.InvalidateContent(ctx, table, slugs...); err != nil {
		pkglogger.Warn("cache invalidate %s %s: %v", table, ev.ID, err)
	}
	if err := c.InvalidateLists(ctx, table); err != nil {
		pkglogger.Warn("cache invalidate lists %s: %v", table, err)
	}

	if d.Events != nil && (len(ev.Fields) > 0 || ev.Deleted) {
		fields := ev.Fields
		if ev.Deleted {
			fields = map[string]interface{}{"deleted": true}
		}
		d.Events.Publish(ctx, realtime.Change{Table: table, ID: ev.ID, Fields: fields, At: time.Now().UTC()})
	}

	if d.Index != nil {
		var err error
		if ev.Doc != nil {
			err = d.Index.Index(ctx, *ev.Doc)
		} else {
			err = d.Index.Remove(ctx, ev.Type, ev.ID)
		}
		if err != nil {
			pkglogger.Warn("search index %s %s: %v", table, ev.ID, err)
		}
	}
}

// changedFields keys of after whose values differ from before
func changedFields(before, after map[string]interface{}) map[string]interface{} {
	changed := make(map[string]interface{})
	for k, v := range after {
		if !sameValue(before[k], v) {
			changed[k] = v
		}
	}
	return changed
}

func sameValue(a, b interface{}) bool {
	ta, aok := a.(*time.Time)
	tb, bok := b.(*time.Time)
	if aok || bok {
		switch {
		case ta == nil || tb == nil:
			return ta == nil && tb == nil
		default:
			return ta.Equal(*tb)
		}
	}
	return a == b
}

func baseFields(b *domain.ContentBase) map[string]interface{} {
	return map[string]interface{}{
		"title":        b.Title,
		"slug":         b.Slug,
		"status":       string(b.Status),
		"scheduled_at": b.ScheduledAt,
	}
}

func pageMeta(page, limit int, total int64) *common.Meta {
	return &common.Meta{Page: page, Limit: limit, Total: total}
}
