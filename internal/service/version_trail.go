package service

import (
	"context"

	"github.com/modvault/modvault-backend/internal/domain"
	"github.com/modvault/modvault-backend/internal/repository"
)

// recordVersion appends snapshot as latest+1 for the record. Run it with a
// transaction-bound repository so the number and the insert share one scope;
// the unique (content_type, record_id, version_number) index rejects a racing writer.
func recordVersion(ctx context.Context, repo repository.VersionRepository, ct domain.ContentType, recordID string, snap domain.Snapshot, author string) (*domain.ContentVersion, error) {
	latest, err := repo.LatestVersion(ctx, ct, recordID)
	if err != nil {
		return nil, err
	}

	version := &domain.ContentVersion{
		ContentType:   ct,
		RecordID:      recordID,
		VersionNumber: latest + 1,
		Title:         snap.Title,
		Content:       snap.Content,
		Excerpt:       snap.Excerpt,
		CreatedBy:     author,
	}
	if err := repo.Create(ctx, version); err != nil {
		return nil, err
	}
	versionsRecordedTotal.WithLabelValues(string(ct)).Inc()
	return version, nil
}
