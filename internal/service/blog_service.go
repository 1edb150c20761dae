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
	"github.com/modvault/modvault-backend/pkg/markdown"
	"gorm.io/gorm"
)

// BlogQuery 관리자 블로그 목록 조건
type BlogQuery struct {
	Status     domain.Status
	CategoryID *uint64
	Query      string
	Page       int
	Limit      int
}

// BlogService business logic for blog posts and their version trail
type BlogService interface {
	Create(ctx context.Context, req *domain.CreateBlogRequest, author string) (*domain.BlogResponse, error)
	Update(ctx context.Context, id string, req *domain.UpdateBlogRequest, author string) (*domain.BlogResponse, error)
	ChangeStatus(ctx context.Context, id string, req *domain.ChangeStatusRequest) (*domain.BlogResponse, error)
	Get(ctx context.Context, id string) (*domain.BlogResponse, error)
	GetBySlug(ctx context.Context, slug string) (*domain.BlogResponse, error)
	List(ctx context.Context, q BlogQuery) ([]*domain.BlogResponse, *common.Meta, error)
	ListLive(ctx context.Context, page, limit int, categoryID *uint64) ([]*domain.BlogResponse, *common.Meta, error)
	Delete(ctx context.Context, id string) error

	ListVersions(ctx context.Context, id string) ([]*domain.ContentVersion, error)
	GetVersion(ctx context.Context, id string, number uint) (*domain.ContentVersion, error)
	RestoreVersion(ctx context.Context, id string, number uint) (*domain.BlogResponse, error)

	// Promoted is the sweeper hook for blogs flipped to published
	Promoted(ctx context.Context, ct domain.ContentType, ids []string)
}

type blogService struct {
	repo repository.ContentRepository[domain.Blog]
	deps *ContentDeps
}

// NewBlogService creates a new BlogService
func NewBlogService(repo repository.ContentRepository[domain.Blog], deps *ContentDeps) BlogService {
	return &blogService{repo: repo, deps: deps}
}

const blogType = domain.ContentTypeBlog

// Create inserts the post, its tags and version 1 in one transaction
func (s *blogService) Create(ctx context.Context, req *domain.CreateBlogRequest, author string) (*domain.BlogResponse, error) {
	title, err := requireTitle(req.Title)
	if err != nil {
		return nil, err
	}

	blog := &domain.Blog{
		Content:        req.Content,
		Excerpt:        strings.TrimSpace(req.Excerpt),
		CoverPath:      req.CoverPath,
		CategoryID:     req.CategoryID,
		AuthorID:       author,
		SEOTitle:       req.SEOTitle,
		SEODescription: req.SEODescription,
		SEOKeywords:    req.SEOKeywords,
	}
	blog.Title = title
	fillExcerpt(blog)

	status := req.Status
	if status == "" {
		status = domain.StatusDraft
	}
	if err := rejectStraySchedule(status, req.ScheduleInput); err != nil {
		return nil, err
	}
	if err := s.deps.Machine.Apply(blogType, &blog.ContentBase, status, req.ScheduleInput); err != nil {
		return nil, err
	}

	if err := s.deps.checkCategory(ctx, blogType, req.CategoryID, false); err != nil {
		return nil, err
	}
	if blog.Slug, err = s.deps.Slugs.Resolve(ctx, title, blogType.Table(), ""); err != nil {
		return nil, err
	}

	err = s.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, blog); err != nil {
			return err
		}
		if req.Tags != nil {
			if err := s.deps.Associations.WithTx(tx).Replace(ctx, blogType, blog.ID, domain.KindTag, cleanItems(req.Tags)); err != nil {
				return err
			}
		}
		_, err := recordVersion(ctx, s.deps.Versions.WithTx(tx), blogType, blog.ID, blog.Snapshot(), author)
		return err
	})
	if err != nil {
		return nil, err
	}

	pkglogger.Info("blog created: %s (%s, %s)", blog.ID, blog.Slug, blog.Status)
	s.deps.committed(ctx, savedEvent{
		Type:   blogType,
		ID:     blog.ID,
		Slugs:  []string{blog.Slug},
		Fields: s.fields(blog),
		Doc:    s.document(blog),
	})
	return s.respond(blog, cleanItems(req.Tags)), nil
}

// rejectStraySchedule 예약 상태가 아닌 글의 일정은 버리지 않고 거절
func rejectStraySchedule(target domain.Status, in domain.ScheduleInput) error {
	if in.IsZero() || target == domain.StatusScheduled {
		return nil
	}
	return common.NewValidationError("scheduled_at", "a %s post cannot take a schedule; set status to %q", target, domain.StatusScheduled)
}

// Update patches the post; a version is appended only when title, content or excerpt changed
func (s *blogService) Update(ctx context.Context, id string, req *domain.UpdateBlogRequest, author string) (*domain.BlogResponse, error) {
	blog, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status == nil {
		if err := publication.Check(blogType.Table(), &blog.ContentBase); err != nil {
			return nil, err
		}
	}
	target := blog.Status
	if req.Status != nil {
		target = *req.Status
	}
	if err := rejectStraySchedule(target, req.ScheduleInput); err != nil {
		return nil, err
	}

	before := s.fields(blog)
	prev := blog.Snapshot()
	oldSlug := blog.Slug

	if req.Title != nil {
		title, err := requireTitle(*req.Title)
		if err != nil {
			return nil, err
		}
		if title != blog.Title {
			if blog.Slug, err = s.deps.Slugs.Resolve(ctx, title, blogType.Table(), blog.ID); err != nil {
				return nil, err
			}
		}
		blog.Title = title
	}
	if req.CategoryID != nil {
		if err := s.deps.checkCategory(ctx, blogType, req.CategoryID, false); err != nil {
			return nil, err
		}
		blog.CategoryID = req.CategoryID
	}
	setIf(&blog.Content, req.Content)
	if req.Excerpt != nil {
		blog.Excerpt = strings.TrimSpace(*req.Excerpt)
	}
	setIf(&blog.CoverPath, req.CoverPath)
	setIf(&blog.SEOTitle, req.SEOTitle)
	setIf(&blog.SEODescription, req.SEODescription)
	setIf(&blog.SEOKeywords, req.SEOKeywords)
	fillExcerpt(blog)

	// 상태 없이 일정만 보내면 현재 상태 기준으로 재예약
	switch {
	case req.Status != nil:
		err = s.deps.Machine.Apply(blogType, &blog.ContentBase, *req.Status, req.ScheduleInput)
	case !req.ScheduleInput.IsZero():
		err = s.deps.Machine.Apply(blogType, &blog.ContentBase, blog.Status, req.ScheduleInput)
	}
	if err != nil {
		return nil, err
	}

	next := blog.Snapshot()
	err = s.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, blog); err != nil {
			return err
		}
		if req.Tags != nil {
			if err := s.deps.Associations.WithTx(tx).Replace(ctx, blogType, blog.ID, domain.KindTag, cleanItems(req.Tags)); err != nil {
				return err
			}
		}
		if !next.Changed(prev) {
			return nil
		}
		_, err := recordVersion(ctx, s.deps.Versions.WithTx(tx), blogType, blog.ID, next, author)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.deps.committed(ctx, savedEvent{
		Type:   blogType,
		ID:     blog.ID,
		Slugs:  []string{blog.Slug, oldSlug},
		Fields: changedFields(before, s.fields(blog)),
		Doc:    s.document(blog),
	})
	return s.load(ctx, blog)
}

// ChangeStatus never records a version
func (s *blogService) ChangeStatus(ctx context.Context, id string, req *domain.ChangeStatusRequest) (*domain.BlogResponse, error) {
	blog, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := s.fields(blog)

	if err := s.deps.Machine.Apply(blogType, &blog.ContentBase, req.Status, req.ScheduleInput); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, blog); err != nil {
		return nil, err
	}

	pkglogger.Info("blog %s status -> %s", blog.ID, blog.Status)
	s.deps.committed(ctx, savedEvent{
		Type:   blogType,
		ID:     blog.ID,
		Slugs:  []string{blog.Slug},
		Fields: changedFields(before, s.fields(blog)),
		Doc:    s.document(blog),
	})
	return s.load(ctx, blog)
}

func (s *blogService) Get(ctx context.Context, id string) (*domain.BlogResponse, error) {
	blog, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, blog)
}

// GetBySlug published posts only
func (s *blogService) GetBySlug(ctx context.Context, slug string) (*domain.BlogResponse, error) {
	c := s.deps.cache()
	table := blogType.Table()

	var cached domain.BlogResponse
	if err := c.GetContent(ctx, table, slug, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		pkglogger.Warn("cache get %s/%s: %v", table, slug, err)
	}

	blog, err := s.repo.FindBySlug(ctx, slug, true)
	if err != nil {
		return nil, err
	}
	resp, err := s.load(ctx, blog)
	if err != nil {
		return nil, err
	}
	if err := c.SetContent(ctx, table, slug, resp); err != nil {
		pkglogger.Warn("cache set %s/%s: %v", table, slug, err)
	}
	return resp, nil
}

func (s *blogService) List(ctx context.Context, q BlogQuery) ([]*domain.BlogResponse, *common.Meta, error) {
	if q.Status != "" && !blogType.Allows(q.Status) {
		return nil, nil, common.NewValidationError("status", "%q is not a valid status for %s", q.Status, blogType)
	}
	page, limit := common.Pagination(q.Page, q.Limit)

	blogs, total, err := s.repo.List(ctx, repository.ListParams{
		Status:     q.Status,
		CategoryID: q.CategoryID,
		Query:      q.Query,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, nil, err
	}
	return s.respondAll(blogs), pageMeta(page, limit, total), nil
}

type cachedBlogPage struct {
	Items []*domain.BlogResponse `json:"items"`
	Total int64                  `json:"total"`
}

func (s *blogService) ListLive(ctx context.Context, page, limit int, categoryID *uint64) ([]*domain.BlogResponse, *common.Meta, error) {
	page, limit = common.Pagination(page, limit)
	c := s.deps.cache()
	table := blogType.Table()

	if categoryID == nil {
		var cached cachedBlogPage
		if err := c.GetList(ctx, table, page, limit, &cached); err == nil {
			return cached.Items, pageMeta(page, limit, cached.Total), nil
		}
	}

	blogs, total, err := s.repo.List(ctx, repository.ListParams{
		LiveOnly:   true,
		CategoryID: categoryID,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, nil, err
	}
	items := s.respondAll(blogs)

	if categoryID == nil {
		if err := c.SetList(ctx, table, page, limit, cachedBlogPage{Items: items, Total: total}); err != nil {
			pkglogger.Warn("cache set list %s: %v", table, err)
		}
	}
	return items, pageMeta(page, limit, total), nil
}

// Delete removes the post, its tags and its version trail in one transaction
func (s *blogService) Delete(ctx context.Context, id string) error {
	blog, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.deps.Associations.WithTx(tx).DeleteAll(ctx, blogType, id); err != nil {
			return err
		}
		if err := s.deps.Versions.WithTx(tx).DeleteByRecord(ctx, blogType, id); err != nil {
			return err
		}
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	pkglogger.Info("blog deleted: %s (%s)", id, blog.Slug)
	s.deps.committed(ctx, savedEvent{Type: blogType, ID: id, Slugs: []string{blog.Slug}, Deleted: true})
	return nil
}

// ListVersions newest first
func (s *blogService) ListVersions(ctx context.Context, id string) ([]*domain.ContentVersion, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.deps.Versions.FindByRecord(ctx, blogType, id)
}

func (s *blogService) GetVersion(ctx context.Context, id string, number uint) (*domain.ContentVersion, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.deps.Versions.FindByRecordAndVersion(ctx, blogType, id, number)
}

// RestoreVersion returns the post with the version's title, content and excerpt
// copied in. Nothing is written; saving the result appends a new version.
func (s *blogService) RestoreVersion(ctx context.Context, id string, number uint) (*domain.BlogResponse, error) {
	blog, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	version, err := s.deps.Versions.FindByRecordAndVersion(ctx, blogType, id, number)
	if err != nil {
		return nil, err
	}

	blog.Apply(version.Snapshot())
	return s.load(ctx, blog)
}

// Promoted refreshes caches, index and subscribers for swept posts
func (s *blogService) Promoted(ctx context.Context, ct domain.ContentType, ids []string) {
	if ct != blogType {
		return
	}
	for _, id := range ids {
		blog, err := s.repo.FindByID(ctx, id)
		if err != nil {
			pkglogger.Warn("promoted blog %s reload: %v", id, err)
			continue
		}
		s.deps.committed(ctx, savedEvent{
			Type:  blogType,
			ID:    blog.ID,
			Slugs: []string{blog.Slug},
			Fields: map[string]interface{}{
				"status":       string(blog.Status),
				"scheduled_at": blog.ScheduledAt,
			},
			Doc: s.document(blog),
		})
	}
}

func (s *blogService) load(ctx context.Context, blog *domain.Blog) (*domain.BlogResponse, error) {
	tags, err := s.deps.Associations.List(ctx, blogType, blog.ID, domain.KindTag)
	if err != nil {
		return nil, err
	}
	return s.respond(blog, tags), nil
}

func (s *blogService) respond(blog *domain.Blog, tags []string) *domain.BlogResponse {
	return &domain.BlogResponse{
		Blog:     *blog,
		CoverURL: s.deps.media().Resolve(blog.CoverPath, BucketBlogCovers),
		Tags:     nonNil(tags),
	}
}

func (s *blogService) respondAll(blogs []*domain.Blog) []*domain.BlogResponse {
	out := make([]*domain.BlogResponse, len(blogs))
	for i, b := range blogs {
		out[i] = s.respond(b, nil)
	}
	return out
}

func (s *blogService) fields(blog *domain.Blog) map[string]interface{} {
	f := baseFields(&blog.ContentBase)
	f["excerpt"] = blog.Excerpt
	f["cover_url"] = s.deps.media().Resolve(blog.CoverPath, BucketBlogCovers)
	return f
}

func (s *blogService) document(blog *domain.Blog) *SearchDocument {
	if !blog.IsLive() {
		return nil
	}
	doc := blogDocument(blog, s.deps.media())
	return &doc
}

// fillExcerpt derives an excerpt from the markdown body when none was given
func fillExcerpt(blog *domain.Blog) {
	if blog.Excerpt == "" && strings.TrimSpace(blog.Content) != "" {
		blog.Excerpt = markdown.Excerpt(blog.Content, markdown.DefaultExcerptLength)
	}
}
