package service

import (
	"context"
	"encoding/xml"
	"errors"
	"strings"
	"time"

	"github.com/modvault/modvault-backend/internal/domain"
	"github.com/modvault/modvault-backend/internal/repository"
	"github.com/modvault/modvault-backend/pkg/cache"
	pkglogger "github.com/modvault/modvault-backend/pkg/logger"
)

// SitemapEntry one <url> element
type SitemapEntry struct {
	Loc     string `xml:"loc" json:"loc"`
	LastMod string `xml:"lastmod" json:"lastmod"`
}

type urlSet struct {
	XMLName xml.Name       `xml:"urlset"`
	Xmlns   string         `xml:"xmlns,attr"`
	URLs    []SitemapEntry `xml:"url"`
}

// LiveLister published slugs per content table
type LiveLister interface {
	LiveEntries(ctx context.Context, table string) ([]repository.LiveEntry, error)
}

// SitemapService lists every live record
type SitemapService struct {
	store LiveLister
	cache cache.Service
}

// NewSitemapService creates a new SitemapService; c may be nil
func NewSitemapService(store LiveLister, c cache.Service) *SitemapService {
	if c == nil {
		c = cache.NewService(nil)
	}
	return &SitemapService{store: store, cache: c}
}

// Entries <baseURL>/<apps|games|blog>/<slug> for every published record
func (s *SitemapService) Entries(ctx context.Context, baseURL string) ([]SitemapEntry, error) {
	var cached []SitemapEntry
	if err := s.cache.Get(ctx, cache.KeySitemap, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		pkglogger.Warn("cache get sitemap: %v", err)
	}

	base := strings.TrimRight(baseURL, "/")
	entries := []SitemapEntry{}
	for _, ct := range []domain.ContentType{domain.ContentTypeApp, domain.ContentTypeGame, domain.ContentTypeBlog} {
		live, err := s.store.LiveEntries(ctx, ct.Table())
		if err != nil {
			return nil, err
		}
		for _, e := range live {
			entries = append(entries, SitemapEntry{
				Loc:     base + "/" + ct.PathSegment() + "/" + e.Slug,
				LastMod: e.UpdatedAt.UTC().Format(time.RFC3339),
			})
		}
	}

	if err := s.cache.Set(ctx, cache.KeySitemap, entries, cache.TTLSitemap); err != nil {
		pkglogger.Warn("cache set sitemap: %v", err)
	}
	return entries, nil
}

// XML renders the sitemap document
func (s *SitemapService) XML(ctx context.Context, baseURL string) ([]byte, error) {
	entries, err := s.Entries(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	body, err := xml.MarshalIndent(urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9", URLs: entries}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
