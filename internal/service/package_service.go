package service

import (
	"context"
	"errors"
	"strings"

	"github.com/modvault/modvault-backend/internal/common"
	"github.com/modvault/modvault-backend/internal/domain"
	"github.com/modvault/modvault-backend/internal/publication"
	"github.com/modvault/modvault-backend/internal/repository"
	"github.com/modvault/modvault-backend/pkg/cache"
	pkglogger "github.com/modvault/modvault-backend/pkg/logger"
	"gorm.io/gorm"
)

// PackageQuery 관리자 목록 조건
type PackageQuery struct {
	Status     domain.Status
	CategoryID *uint64
	Query      string
	Page       int
	Limit      int
}

// PackageService business logic for apps and games
type PackageService interface {
	Type() domain.ContentType
	Create(ctx context.Context, req *domain.CreatePackageRequest) (*domain.PackageResponse, error)
	Update(ctx context.Context, id string, req *domain.UpdatePackageRequest) (*domain.PackageResponse, error)
	ChangeStatus(ctx context.Context, id string, req *domain.ChangeStatusRequest) (*domain.PackageResponse, error)
	Get(ctx context.Context, id string) (*domain.PackageResponse, error)
	GetBySlug(ctx context.Context, slug string) (*domain.PackageResponse, error)
	List(ctx context.Context, q PackageQuery) ([]*domain.PackageResponse, *common.Meta, error)
	ListLive(ctx context.Context, page, limit int, categoryID *uint64) ([]*domain.PackageResponse, *common.Meta, error)
	Delete(ctx context.Context, id string) error
}

// packageModel *App or *Game
type packageModel[T any] interface {
	*T
	domain.Record
	Details() *domain.PackageDetails
}

type packageService[T any, PT packageModel[T]] struct {
	repo       repository.ContentRepository[T]
	deps       *ContentDeps
	ct         domain.ContentType
	iconBucket string
}

// NewAppService creates the PackageService for apps
func NewAppService(repo repository.ContentRepository[domain.App], deps *ContentDeps) PackageService {
	return &packageService[domain.App, *domain.App]{repo: repo, deps: deps, ct: domain.ContentTypeApp, iconBucket: BucketAppIcons}
}

// NewGameService creates the PackageService for games
func NewGameService(repo repository.ContentRepository[domain.Game], deps *ContentDeps) PackageService {
	return &packageService[domain.Game, *domain.Game]{repo: repo, deps: deps, ct: domain.ContentTypeGame, iconBucket: BucketGameIcons}
}

func (s *packageService[T, PT]) Type() domain.ContentType {
	return s.ct
}

// Create validates, resolves a unique slug and inserts the record with its
// associations in one transaction
func (s *packageService[T, PT]) Create(ctx context.Context, req *domain.CreatePackageRequest) (*domain.PackageResponse, error) {
	title, err := requireTitle(req.Title)
	if err != nil {
		return nil, err
	}
	if req.CategoryID == nil {
		return nil, common.NewValidationError("category_id", "is required")
	}

	record := PT(new(T))
	base := record.Base()
	base.Title = title
	status := req.Status
	if status == "" {
		status = domain.StatusDraft
	}
	if err := s.deps.Machine.Apply(s.ct, base, status, domain.ScheduleInput{}); err != nil {
		return nil, err
	}

	*record.Details() = domain.PackageDetails{
		PackageName:    strings.TrimSpace(req.PackageName),
		Version:        req.Version,
		Size:           req.Size,
		Developer:      req.Developer,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		IconPath:       req.IconPath,
		IconBgColor:    req.IconBgColor,
		DownloadURL:    req.DownloadURL,
		SEOTitle:       req.SEOTitle,
		SEODescription: req.SEODescription,
		SEOKeywords:    req.SEOKeywords,
	}

	if err := s.deps.checkCategory(ctx, s.ct, req.CategoryID, true); err != nil {
		return nil, err
	}
	if base.Slug, err = s.deps.Slugs.Resolve(ctx, title, s.ct.Table(), ""); err != nil {
		return nil, err
	}

	sets := packageSets(req.AssociationInput)
	err = s.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, (*T)(record)); err != nil {
			return err
		}
		return replaceAssociations(ctx, s.deps.Associations.WithTx(tx), s.ct, base.ID, sets)
	})
	if err != nil {
		return nil, err
	}

	pkglogger.Info("%s created: %s (%s)", s.ct, base.ID, base.Slug)
	s.deps.committed(ctx, savedEvent{
		Type:   s.ct,
		ID:     base.ID,
		Slugs:  []string{base.Slug},
		Fields: s.fields(record),
		Doc:    s.document(record),
	})
	return s.respond(record, assocMap(sets)), nil
}

// Update patches the loaded record. The slug is regenerated only when the title
// differs from the stored one.
func (s *packageService[T, PT]) Update(ctx context.Context, id string, req *domain.UpdatePackageRequest) (*domain.PackageResponse, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	record := PT(found)
	base := record.Base()
	details := record.Details()

	if req.Status == nil {
		if err := publication.Check(s.ct.Table(), base); err != nil {
			return nil, err
		}
	}

	before := s.fields(record)
	oldSlug := base.Slug

	if req.Title != nil {
		title, err := requireTitle(*req.Title)
		if err != nil {
			return nil, err
		}
		if title != base.Title {
			if base.Slug, err = s.deps.Slugs.Resolve(ctx, title, s.ct.Table(), base.ID); err != nil {
				return nil, err
			}
		}
		base.Title = title
	}
	if req.CategoryID != nil {
		if err := s.deps.checkCategory(ctx, s.ct, req.CategoryID, true); err != nil {
			return nil, err
		}
		details.CategoryID = req.CategoryID
	}
	patchPackage(details, req)

	if req.Status != nil {
		if err := s.deps.Machine.Apply(s.ct, base, *req.Status, domain.ScheduleInput{}); err != nil {
			return nil, err
		}
	}

	sets := packageSets(req.AssociationInput)
	err = s.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, (*T)(record)); err != nil {
			return err
		}
		return replaceAssociations(ctx, s.deps.Associations.WithTx(tx), s.ct, base.ID, sets)
	})
	if err != nil {
		return nil, err
	}

	s.deps.committed(ctx, savedEvent{
		Type:   s.ct,
		ID:     base.ID,
		Slugs:  []string{base.Slug, oldSlug},
		Fields: changedFields(before, s.fields(record)),
		Doc:    s.document(record),
	})
	return s.load(ctx, record)
}

// ChangeStatus state machine transition only
func (s *packageService[T, PT]) ChangeStatus(ctx context.Context, id string, req *domain.ChangeStatusRequest) (*domain.PackageResponse, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	record := PT(found)
	base := record.Base()
	before := s.fields(record)

	if err := s.deps.Machine.Apply(s.ct, base, req.Status, req.ScheduleInput); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, (*T)(record)); err != nil {
		return nil, err
	}

	s.deps.committed(ctx, savedEvent{
		Type:   s.ct,
		ID:     base.ID,
		Slugs:  []string{base.Slug},
		Fields: changedFields(before, s.fields(record)),
		Doc:    s.document(record),
	})
	return s.load(ctx, record)
}

// Get any status (admin)
func (s *packageService[T, PT]) Get(ctx context.Context, id string) (*domain.PackageResponse, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, PT(found))
}

// GetBySlug live records only, served from the cache when possible
func (s *packageService[T, PT]) GetBySlug(ctx context.Context, slug string) (*domain.PackageResponse, error) {
	c := s.deps.cache()
	table := s.ct.Table()

	var cached domain.PackageResponse
	if err := c.GetContent(ctx, table, slug, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		pkglogger.Warn("cache get %s/%s: %v", table, slug, err)
	}

	found, err := s.repo.FindBySlug(ctx, slug, true)
	if err != nil {
		return nil, err
	}
	resp, err := s.load(ctx, PT(found))
	if err != nil {
		return nil, err
	}
	if err := c.SetContent(ctx, table, slug, resp); err != nil {
		pkglogger.Warn("cache set %s/%s: %v", table, slug, err)
	}
	return resp, nil
}

// List admin listing, any status unless filtered
func (s *packageService[T, PT]) List(ctx context.Context, q PackageQuery) ([]*domain.PackageResponse, *common.Meta, error) {
	if q.Status != "" && !s.ct.Allows(q.Status) {
		return nil, nil, common.NewValidationError("status", "%q is not a valid status for %s", q.Status, s.ct)
	}
	page, limit := common.Pagination(q.Page, q.Limit)

	records, total, err := s.repo.List(ctx, repository.ListParams{
		Status:     q.Status,
		CategoryID: q.CategoryID,
		Query:      q.Query,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, nil, err
	}
	return s.respondAll(records), pageMeta(page, limit, total), nil
}

type cachedPackagePage struct {
	Items []*domain.PackageResponse `json:"items"`
	Total int64                     `json:"total"`
}

// ListLive public listing; unfiltered pages are cached briefly
func (s *packageService[T, PT]) ListLive(ctx context.Context, page, limit int, categoryID *uint64) ([]*domain.PackageResponse, *common.Meta, error) {
	page, limit = common.Pagination(page, limit)
	c := s.deps.cache()
	table := s.ct.Table()

	if categoryID == nil {
		var cached cachedPackagePage
		if err := c.GetList(ctx, table, page, limit, &cached); err == nil {
			return cached.Items, pageMeta(page, limit, cached.Total), nil
		}
	}

	records, total, err := s.repo.List(ctx, repository.ListParams{
		LiveOnly:   true,
		CategoryID: categoryID,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, nil, err
	}
	items := s.respondAll(records)

	if categoryID == nil {
		if err := c.SetList(ctx, table, page, limit, cachedPackagePage{Items: items, Total: total}); err != nil {
			pkglogger.Warn("cache set list %s: %v", table, err)
		}
	}
	return items, pageMeta(page, limit, total), nil
}

// Delete removes the record with its associations in one transaction
func (s *packageService[T, PT]) Delete(ctx context.Context, id string) error {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	base := PT(found).Base()

	err = s.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.deps.Associations.WithTx(tx).DeleteAll(ctx, s.ct, id); err != nil {
			return err
		}
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	pkglogger.Info("%s deleted: %s (%s)", s.ct, id, base.Slug)
	s.deps.committed(ctx, savedEvent{Type: s.ct, ID: id, Slugs: []string{base.Slug}, Deleted: true})
	return nil
}

func (s *packageService[T, PT]) load(ctx context.Context, record PT) (*domain.PackageResponse, error) {
	sets, err := s.deps.Associations.ListAll(ctx, s.ct, record.Base().ID)
	if err != nil {
		return nil, err
	}
	return s.respond(record, sets), nil
}

func (s *packageService[T, PT]) respond(record PT, sets map[domain.AssociationKind][]string) *domain.PackageResponse {
	media := s.deps.media()
	details := record.Details()

	screenshots := make([]string, 0, len(sets[domain.KindScreenshot]))
	for _, p := range sets[domain.KindScreenshot] {
		screenshots = append(screenshots, media.Resolve(p, BucketScreenshots))
	}

	return &domain.PackageResponse{
		ContentBase:    *record.Base(),
		PackageDetails: *details,
		IconURL:        media.Resolve(details.IconPath, s.iconBucket),
		ModFeatures:    nonNil(sets[domain.KindModFeature]),
		Screenshots:    screenshots,
		Tags:           nonNil(sets[domain.KindTag]),
	}
}

func (s *packageService[T, PT]) respondAll(records []*T) []*domain.PackageResponse {
	out := make([]*domain.PackageResponse, len(records))
	for i, r := range records {
		out[i] = s.respond(PT(r), nil)
	}
	return out
}

// fields realtime payload candidates
func (s *packageService[T, PT]) fields(record PT) map[string]interface{} {
	f := baseFields(record.Base())
	d := record.Details()
	f["icon_path"] = d.IconPath
	f["icon_url"] = s.deps.media().Resolve(d.IconPath, s.iconBucket)
	f["icon_bg_color"] = d.IconBgColor
	f["version"] = d.Version
	f["size"] = d.Size
	f["download_url"] = d.DownloadURL
	return f
}

// document search document for live records, nil otherwise
func (s *packageService[T, PT]) document(record PT) *SearchDocument {
	base := record.Base()
	if !base.IsLive() {
		return nil
	}
	d := record.Details()
	doc := packageDocument(s.ct, base, d, s.deps.media().Resolve(d.IconPath, s.iconBucket))
	return &doc
}

func patchPackage(d *domain.PackageDetails, req *domain.UpdatePackageRequest) {
	setIf(&d.PackageName, req.PackageName)
	setIf(&d.Version, req.Version)
	setIf(&d.Size, req.Size)
	setIf(&d.Developer, req.Developer)
	setIf(&d.Description, req.Description)
	setIf(&d.IconPath, req.IconPath)
	setIf(&d.IconBgColor, req.IconBgColor)
	setIf(&d.DownloadURL, req.DownloadURL)
	setIf(&d.SEOTitle, req.SEOTitle)
	setIf(&d.SEODescription, req.SEODescription)
	setIf(&d.SEOKeywords, req.SEOKeywords)
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func packageSets(in domain.AssociationInput) map[domain.AssociationKind][]string {
	return map[domain.AssociationKind][]string{
		domain.KindModFeature: in.ModFeatures,
		domain.KindScreenshot: in.Screenshots,
		domain.KindTag:        in.Tags,
	}
}

// assocMap stored shape of the sets just written
func assocMap(sets map[domain.AssociationKind][]string) map[domain.AssociationKind][]string {
	out := make(map[domain.AssociationKind][]string, len(sets))
	for kind, items := range sets {
		if items != nil {
			out[kind] = cleanItems(items)
		}
	}
	return out
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
