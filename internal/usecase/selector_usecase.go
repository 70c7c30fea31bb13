package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/user/catalog-imager/internal/entity"
	"github.com/user/catalog-imager/internal/repository"
	"go.uber.org/zap"
)

// primaryOverfetch is how many source rows are read per wanted record, to
// leave room for records with several sources.
const primaryOverfetch = 3

// RecordSelector defines the interface for choosing the records of a run.
type RecordSelector interface {
	Select(ctx context.Context) ([]entity.Selection, error)
}

type recordSelectorUseCase struct {
	recordRepo    repository.RecordRepository
	maxEntries    int
	linkScanLimit int
	logger        *zap.Logger
}

// NewRecordSelector creates a new RecordSelector use case.
func NewRecordSelector(recordRepo repository.RecordRepository, maxEntries, linkScanLimit int, logger *zap.Logger) RecordSelector {
	return &recordSelectorUseCase{
		recordRepo:    recordRepo,
		maxEntries:    maxEntries,
		linkScanLimit: linkScanLimit,
		logger:        logger,
	}
}

// Select picks up to maxEntries distinct records with one URL each. Structured
// sources are preferred; the free-form links column tops the list up when
// they run short. The result is ordered by record identifier.
func (uc *recordSelectorUseCase) Select(ctx context.Context) ([]entity.Selection, error) {
	if uc.maxEntries <= 0 {
		return nil, nil
	}

	rows, err := uc.recordRepo.ListSourced(ctx, uc.maxEntries*primaryOverfetch)
	if err != nil {
		return nil, fmt.Errorf("failed to list sourced records: %w", err)
	}

	used := make(map[int64]struct{}, uc.maxEntries)
	picked := make([]entity.Selection, 0, uc.maxEntries)

	for _, row := range rows {
		if len(picked) >= uc.maxEntries {
			break
		}
		if _, ok := used[row.ID]; ok {
			continue
		}
		if strings.TrimSpace(row.URL) == "" {
			continue
		}
		picked = append(picked, entity.Selection{
			ID:        row.ID,
			Title:     row.Title,
			URL:       row.URL,
			Publisher: row.Publisher,
			Origin:    entity.OriginSources,
		})
		used[row.ID] = struct{}{}
	}

	if len(picked) < uc.maxEntries {
		picked = uc.fillFromLinks(ctx, picked, used)
	}

	sort.SliceStable(picked, func(i, j int) bool { return picked[i].ID < picked[j].ID })

	uc.logger.Info("Selected records",
		zap.Int("selected", len(picked)),
		zap.Int("max_entries", uc.maxEntries),
	)
	return picked, nil
}

// fillFromLinks tops picked up from the links column. A failing query only
// costs the extra records.
func (uc *recordSelectorUseCase) fillFromLinks(ctx context.Context, picked []entity.Selection, used map[int64]struct{}) []entity.Selection {
	rows, err := uc.recordRepo.ListLinked(ctx, uc.linkScanLimit)
	if err != nil {
		uc.logger.Warn("Failed to list linked records, continuing with sourced records only", zap.Error(err))
		return picked
	}

	for _, row := range rows {
		if len(picked) >= uc.maxEntries {
			break
		}
		if _, ok := used[row.ID]; ok {
			continue
		}
		link, ok := firstLinkInBlob(row.Links)
		if !ok {
			continue
		}
		picked = append(picked, entity.Selection{
			ID:     row.ID,
			Title:  row.Title,
			URL:    link,
			Origin: entity.OriginLinks,
		})
		used[row.ID] = struct{}{}
	}
	return picked
}
