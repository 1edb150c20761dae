package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/modvault/modvault-backend/internal/common"
	"github.com/modvault/modvault-backend/internal/domain"
	"github.com/modvault/modvault-backend/internal/repository"
	es "github.com/modvault/modvault-backend/pkg/elasticsearch"
	pkglogger "github.com/modvault/modvault-backend/pkg/logger"
	"github.com/modvault/modvault-backend/pkg/markdown"
	"github.com/modvault/modvault-backend/pkg/storage"
)

// DefaultIndex used when elasticsearch.index is empty
const DefaultIndex = "modvault-content"

// SearchDocument a live record as stored in the search index
type SearchDocument struct {
	Type      domain.ContentType `json:"type"`
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Slug      string             `json:"slug"`
	Summary   string             `json:"summary"`
	Body      string             `json:"body,omitempty"`
	Keywords  string             `json:"keywords,omitempty"`
	ImageURL  string             `json:"image_url,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// DocID index document ID, unique across content types
func (d SearchDocument) DocID() string {
	return DocID(d.Type, d.ID)
}

// DocID index document ID for (ct, id)
func DocID(ct domain.ContentType, id string) string {
	return fmt.Sprintf("%s_%s", ct, id)
}

// Indexer keeps the search index in step with live records
type Indexer interface {
	Index(ctx context.Context, doc SearchDocument) error
	Remove(ctx context.Context, ct domain.ContentType, id string) error
}

// SearchIndex Indexer over Elasticsearch
type SearchIndex struct {
	client *es.Client
	index  string
}

// NewSearchIndex creates a SearchIndex; index "" uses DefaultIndex
func NewSearchIndex(client *es.Client, index string) *SearchIndex {
	if index == "" {
		index = DefaultIndex
	}
	return &SearchIndex{client: client, index: index}
}

// Name index name
func (i *SearchIndex) Name() string {
	return i.index
}

// EnsureIndex creates the index with its mapping unless it exists
func (i *SearchIndex) EnsureIndex(ctx context.Context) error {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"type":       map[string]interface{}{"type": "keyword"},
				"id":         map[string]interface{}{"type": "keyword"},
				"slug":       map[string]interface{}{"type": "keyword"},
				"title":      map[string]interface{}{"type": "text"},
				"summary":    map[string]interface{}{"type": "text"},
				"body":       map[string]interface{}{"type": "text"},
				"keywords":   map[string]interface{}{"type": "text"},
				"image_url":  map[string]interface{}{"type": "keyword", "index": false},
				"updated_at": map[string]interface{}{"type": "date"},
			},
		},
	}
	if err := i.client.CreateIndex(ctx, i.index, mapping); err != nil {
		return fmt.Errorf("create %s index: %w", i.index, err)
	}
	return nil
}

func (i *SearchIndex) Index(ctx context.Context, doc SearchDocument) error {
	return i.client.IndexDocument(ctx, i.index, doc.DocID(), doc)
}

func (i *SearchIndex) Remove(ctx context.Context, ct domain.ContentType, id string) error {
	return i.client.DeleteDocument(ctx, i.index, DocID(ct, id))
}

// BulkIndex indexes docs in one request
func (i *SearchIndex) BulkIndex(ctx context.Context, docs []SearchDocument) error {
	batch := make(map[string]interface{}, len(docs))
	for _, doc := range docs {
		batch[doc.DocID()] = doc
	}
	return i.client.BulkIndex(ctx, i.index, batch)
}

func (i *SearchIndex) search(ctx context.Context, q string, page, limit int) ([]*domain.SearchHit, int64, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q,
				"fields": []string{"title^3", "keywords^2", "summary", "body"},
				"type":   "best_fields",
			},
		},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"updated_at": map[string]interface{}{"order": "desc"}},
		},
	}

	res, err := i.client.Search(ctx, i.index, query, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}

	hits := make([]*domain.SearchHit, 0, len(res.Hits))
	for _, h := range res.Hits {
		var doc SearchDocument
		if err := json.Unmarshal(h.Source, &doc); err != nil {
			pkglogger.Warn("search hit %s decode: %v", h.ID, err)
			continue
		}
		hits = append(hits, &domain.SearchHit{
			Type:     doc.Type,
			ID:       doc.ID,
			Title:    doc.Title,
			Slug:     doc.Slug,
			Summary:  doc.Summary,
			ImageURL: doc.ImageURL,
		})
	}
	return hits, res.Total, nil
}

// SearchService 통합 검색 (apps, games, blogs; 공개 레코드만)
type SearchService struct {
	index *SearchIndex // nil = SQL LIKE fallback
	apps  repository.ContentRepository[domain.App]
	games repository.ContentRepository[domain.Game]
	blogs repository.ContentRepository[domain.Blog]
	media *storage.Resolver
}

// NewSearchService creates a new SearchService; index may be nil
func NewSearchService(index *SearchIndex, apps repository.ContentRepository[domain.App], games repository.ContentRepository[domain.Game], blogs repository.ContentRepository[domain.Blog], media *storage.Resolver) *SearchService {
	if media == nil {
		media = storage.NewResolver(nil)
	}
	return &SearchService{index: index, apps: apps, games: games, blogs: blogs, media: media}
}

// Search empty q is a validation error
func (s *SearchService) Search(ctx context.Context, q string, page, limit int) ([]*domain.SearchHit, *common.Meta, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil, common.NewValidationError("q", "is required")
	}
	page, limit = common.Pagination(page, limit)

	if s.index != nil {
		hits, total, err := s.index.search(ctx, q, page, limit)
		if err == nil {
			return hits, pageMeta(page, limit, total), nil
		}
		pkglogger.Warn("elasticsearch search failed, falling back to SQL: %v", err)
	}

	hits, total, err := s.searchSQL(ctx, q, page, limit)
	if err != nil {
		return nil, nil, err
	}
	return hits, pageMeta(page, limit, total), nil
}

type rankedHit struct {
	hit       *domain.SearchHit
	createdAt time.Time
}

// searchSQL takes the first page*limit matches of each table, merges them
// newest first and cuts the requested page
func (s *SearchService) searchSQL(ctx context.Context, q string, page, limit int) ([]*domain.SearchHit, int64, error) {
	params := repository.ListParams{LiveOnly: true, Query: q, Page: 1, Limit: page * limit}
	var merged []rankedHit
	var total int64

	apps, n, err := s.apps.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total += n
	for _, a := range apps {
		merged = append(merged, rankedHit{packageHit(domain.ContentTypeApp, &a.ContentBase, &a.PackageDetails, s.media.Resolve(a.IconPath, BucketAppIcons)), a.CreatedAt})
	}

	games, n, err := s.games.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total += n
	for _, g := range games {
		merged = append(merged, rankedHit{packageHit(domain.ContentTypeGame, &g.ContentBase, &g.PackageDetails, s.media.Resolve(g.IconPath, BucketGameIcons)), g.CreatedAt})
	}

	blogs, n, err := s.blogs.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total += n
	for _, b := range blogs {
		summary := b.Excerpt
		if summary == "" {
			summary = markdown.Excerpt(b.Content, markdown.DefaultExcerptLength)
		}
		merged = append(merged, rankedHit{&domain.SearchHit{
			Type:     domain.ContentTypeBlog,
			ID:       b.ID,
			Title:    b.Title,
			Slug:     b.Slug,
			Summary:  summary,
			ImageURL: s.media.Resolve(b.CoverPath, BucketBlogCovers),
		}, b.CreatedAt})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].createdAt.After(merged[j].createdAt)
	})

	start := (page - 1) * limit
	if start >= len(merged) {
		return []*domain.SearchHit{}, total, nil
	}
	end := start + limit
	if end > len(merged) {
		end = len(merged)
	}

	hits := make([]*domain.SearchHit, 0, end-start)
	for _, r := range merged[start:end] {
		hits = append(hits, r.hit)
	}
	return hits, total, nil
}

func packageHit(ct domain.ContentType, base *domain.ContentBase, d *domain.PackageDetails, imageURL string) *domain.SearchHit {
	return &domain.SearchHit{
		Type:     ct,
		ID:       base.ID,
		Title:    base.Title,
		Slug:     base.Slug,
		Summary:  markdown.Excerpt(d.Description, markdown.DefaultExcerptLength),
		ImageURL: imageURL,
	}
}

// Reindex pushes every live record into the index, returning the count
func (s *SearchService) Reindex(ctx context.Context, pageSize int) (int, error) {
	if s.index == nil {
		return 0, fmt.Errorf("search index not configured")
	}
	if pageSize < 1 {
		pageSize = 100
	}

	count := 0
	for page := 1; ; page++ {
		params := repository.ListParams{LiveOnly: true, Page: page, Limit: pageSize}
		var docs []SearchDocument

		apps, _, err := s.apps.List(ctx, params)
		if err != nil {
			return count, err
		}
		for _, a := range apps {
			docs = append(docs, packageDocument(domain.ContentTypeApp, &a.ContentBase, &a.PackageDetails, s.media.Resolve(a.IconPath, BucketAppIcons)))
		}
		games, _, err := s.games.List(ctx, params)
		if err != nil {
			return count, err
		}
		for _, g := range games {
			docs = append(docs, packageDocument(domain.ContentTypeGame, &g.ContentBase, &g.PackageDetails, s.media.Resolve(g.IconPath, BucketGameIcons)))
		}
		blogs, _, err := s.blogs.List(ctx, params)
		if err != nil {
			return count, err
		}
		for _, b := range blogs {
			docs = append(docs, blogDocument(b, s.media))
		}

		if len(docs) == 0 {
			return count, nil
		}
		if err := s.index.BulkIndex(ctx, docs); err != nil {
			return count, err
		}
		count += len(docs)
	}
}

func packageDocument(ct domain.ContentType, base *domain.ContentBase, d *domain.PackageDetails, imageURL string) SearchDocument {
	return SearchDocument{
		Type:      ct,
		ID:        base.ID,
		Title:     base.Title,
		Slug:      base.Slug,
		Summary:   d.Description,
		Keywords:  d.SEOKeywords,
		ImageURL:  imageURL,
		UpdatedAt: base.UpdatedAt,
	}
}

func blogDocument(b *domain.Blog, media *storage.Resolver) SearchDocument {
	return SearchDocument{
		Type:      domain.ContentTypeBlog,
		ID:        b.ID,
		Title:     b.Title,
		Slug:      b.Slug,
		Summary:   b.Excerpt,
		Body:      markdown.PlainText(b.Content),
		Keywords:  b.SEOKeywords,
		ImageURL:  media.Resolve(b.CoverPath, BucketBlogCovers),
		UpdatedAt: b.UpdatedAt,
	}
}
