package service

import (
	"context"
	"time"

	"github.com/modvault/modvault-backend/internal/domain"
	"github.com/modvault/modvault-backend/internal/publication"
	"github.com/modvault/modvault-backend/internal/repository"
	pkglogger "github.com/modvault/modvault-backend/pkg/logger"
)

// InconsistentLister rows whose status and scheduled_at disagree
type InconsistentLister interface {
	Inconsistent(ctx context.Context, table string) ([]domain.ContentBase, error)
}

// PublicationService scheduled-publish sweep and consistency audit
type PublicationService struct {
	sweeper *publication.Sweeper
	store   InconsistentLister
	now     func() time.Time
}

// NewPublicationService creates a new PublicationService
func NewPublicationService(sweeper *publication.Sweeper, store InconsistentLister) *PublicationService {
	return &PublicationService{sweeper: sweeper, store: store, now: time.Now}
}

// Sweep promotes everything due now
func (s *PublicationService) Sweep(ctx context.Context) (publication.Result, error) {
	return s.sweeper.Sweep(ctx, s.now())
}

// SweepTask scheduler adapter
func (s *PublicationService) SweepTask(ctx context.Context, now time.Time) error {
	_, err := s.sweeper.Sweep(ctx, now)
	return err
}

// Audit ids of inconsistent records per table; each one is logged and counted
func (s *PublicationService) Audit(ctx context.Context) (map[string][]string, error) {
	found := make(map[string][]string)
	for _, ct := range []domain.ContentType{domain.ContentTypeApp, domain.ContentTypeGame, domain.ContentTypeBlog} {
		table := ct.Table()
		rows, err := s.store.Inconsistent(ctx, table)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			if err := publication.Check(table, &rows[i]); err != nil {
				pkglogger.Warn("%v", err)
				found[table] = append(found[table], rows[i].ID)
			}
		}
	}
	return found, nil
}

// AuditTask scheduler adapter
func (s *PublicationService) AuditTask(ctx context.Context, _ time.Time) error {
	_, err := s.Audit(ctx)
	return err
}

var _ InconsistentLister = (*repository.PublicationStore)(nil)
