package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/user/catalog-imager/internal/entity"
	"github.com/user/catalog-imager/internal/repository"
	"github.com/user/catalog-imager/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Pipeline defines the interface for one batch enrichment run.
type Pipeline interface {
	// Run processes the selected records in order and writes the mapping
	// artifact. Per-record failures are logged and skipped. The artifact is
	// written even when ctx is cancelled part way through.
	Run(ctx context.Context) (*entity.Mapping, error)
}

type pipelineUseCase struct {
	selector   RecordSelector
	resolver   ImageResolver
	downloader repository.ImageDownloader
	store      repository.FileStore
	journal    repository.RunJournal
	delay      time.Duration
	logger     *zap.Logger
}

// NewPipeline creates a new Pipeline use case. Consecutive page fetches are
// spaced at least delay apart. journal may be nil.
func NewPipeline(
	selector RecordSelector,
	resolver ImageResolver,
	downloader repository.ImageDownloader,
	store repository.FileStore,
	journal repository.RunJournal,
	delay time.Duration,
	logger *zap.Logger,
) Pipeline {
	return &pipelineUseCase{
		selector:   selector,
		resolver:   resolver,
		downloader: downloader,
		store:      store,
		journal:    journal,
		delay:      delay,
		logger:     logger,
	}
}

func (uc *pipelineUseCase) newLimiter() *rate.Limiter {
	if uc.delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(uc.delay), 1)
}

func (uc *pipelineUseCase) Run(ctx context.Context) (*entity.Mapping, error) {
	runID := uuid.NewString()
	log := uc.logger.With(zap.String("run_id", runID))
	startedAt := time.Now().UTC()

	selections, err := uc.selector.Select(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	if err := uc.store.Prepare(ctx); err != nil {
		return nil, err
	}

	log.Info("Starting run", zap.Int("records", len(selections)))

	limiter := uc.newLimiter()
	mapping := &entity.Mapping{Items: []entity.MappingEntry{}}
	used := make(map[int64]struct{}, len(selections))
	skipped := 0
	cancelled := false

	for i, sel := range selections {
		if _, ok := used[sel.ID]; ok {
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			cancelled = true
			break
		}

		log.Info(fmt.Sprintf("[%d/%d] E%d - fetching page", i+1, len(selections), sel.ID),
			zap.String("url", sel.URL),
		)

		outcome, entry := uc.processRecord(ctx, log, sel)
		if outcome.Status == entity.OutcomeCancelled {
			cancelled = true
			break
		}
		if outcome.Status != entity.OutcomeSaved {
			skipped++
			metrics.SkipsTotal.WithLabelValues(string(outcome.Status)).Inc()
			continue
		}
		mapping.Add(*entry)
		used[sel.ID] = struct{}{}
		metrics.ImagesSavedTotal.Inc()
	}

	if cancelled {
		log.Warn("Run interrupted, writing partial mapping", zap.Int("saved", mapping.TotalSaved))
	}

	// The artifact must land even if the run context was cancelled.
	writeCtx := context.WithoutCancel(ctx)
	if err := uc.store.WriteMapping(writeCtx, mapping); err != nil {
		return mapping, fmt.Errorf("failed to write mapping artifact: %w", err)
	}
	log.Info(fmt.Sprintf("Saved %d images", mapping.TotalSaved), zap.String("mapping", uc.store.MappingPath()))

	if uc.journal != nil {
		summary := &entity.RunSummary{
			RunID:       runID,
			StartedAt:   startedAt,
			FinishedAt:  time.Now().UTC(),
			Selected:    len(selections),
			Saved:       mapping.TotalSaved,
			Skipped:     skipped,
			Cancelled:   cancelled,
			MappingPath: uc.store.MappingPath(),
		}
		if err := uc.journal.Append(writeCtx, summary); err != nil {
			log.Warn("Failed to record run summary", zap.Error(err))
		}
	}

	return mapping, nil
}

// processRecord resolves, downloads and stores the image of one record.
func (uc *pipelineUseCase) processRecord(ctx context.Context, log *zap.Logger, sel entity.Selection) (entity.RecordOutcome, *entity.MappingEntry) {
	outcome := entity.RecordOutcome{EntryNumber: sel.ID, PageURL: sel.URL}
	fields := []zap.Field{zap.Int64("entry_number", sel.ID), zap.String("url", sel.URL)}

	res, err := uc.resolver.ResolvePage(ctx, sel.URL)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			outcome.Status = entity.OutcomeCancelled
		case repository.StatusCodeOf(err) != 0:
			outcome.Status = entity.OutcomeHTTPStatus
			outcome.HTTPStatusCode = repository.StatusCodeOf(err)
			log.Warn(fmt.Sprintf("Skipped (HTTP %d)", outcome.HTTPStatusCode), fields...)
		default:
			outcome.Status = entity.OutcomeFetchError
			outcome.Reason = err.Error()
			log.Warn("Skipped, page fetch failed", append(fields, zap.Error(err))...)
		}
		return outcome, nil
	}

	if !res.Found {
		outcome.Status = entity.OutcomeNoImage
		log.Info("No image found", fields...)
		return outcome, nil
	}

	name := ImageFilename(sel.ID, res.Host, res.ImageURL)
	fields = append(fields, zap.String("image_url", res.ImageURL), zap.String("strategy", res.Strategy))

	data, err := uc.downloader.Download(ctx, res.ImageURL)
	if err != nil {
		if ctx.Err() != nil {
			outcome.Status = entity.OutcomeCancelled
			return outcome, nil
		}
		outcome.Status = entity.OutcomeDownloadFailed
		outcome.HTTPStatusCode = repository.StatusCodeOf(err)
		outcome.Reason = err.Error()
		log.Warn("Download failed", append(fields, zap.Error(err))...)
		return outcome, nil
	}

	if err := uc.store.SaveImage(ctx, name, data); err != nil {
		outcome.Status = entity.OutcomeDownloadFailed
		outcome.Reason = err.Error()
		log.Error("Failed to write image", append(fields, zap.Error(err))...)
		return outcome, nil
	}

	outcome.Status = entity.OutcomeSaved
	log.Info("Saved "+name, fields...)
	return outcome, &entity.MappingEntry{
		EntryNumber: sel.ID,
		Title:       sel.Title,
		PageURL:     sel.URL,
		ImageURL:    res.ImageURL,
		File:        name,
		Publisher:   sel.Publisher,
	}
}
