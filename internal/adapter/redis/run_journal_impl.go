package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/user/catalog-imager/internal/entity"
)

const (
	runJournalKey = "imager:runs"
	runJournalCap = 50
)

// RunJournalImpl keeps the most recent run summaries in a capped Redis list,
// newest first.
type RunJournalImpl struct {
	client *redis.Client
}

// NewRunJournal creates a new instance of RunJournalImpl.
func NewRunJournal(client *redis.Client) *RunJournalImpl {
	return &RunJournalImpl{client: client}
}

// Append pushes summary to the head of the list and trims the tail.
func (r *RunJournalImpl) Append(ctx context.Context, summary *entity.RunSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode run summary: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, runJournalKey, raw)
	pipe.LTrim(ctx, runJournalKey, 0, runJournalCap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append run summary: %w", err)
	}
	return nil
}

// Recent returns up to n summaries, newest first. Undecodable entries are
// skipped.
func (r *RunJournalImpl) Recent(ctx context.Context, n int) ([]entity.RunSummary, error) {
	if n <= 0 {
		return nil, nil
	}
	items, err := r.client.LRange(ctx, runJournalKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read run summaries: %w", err)
	}

	out := make([]entity.RunSummary, 0, len(items))
	for _, item := range items {
		var s entity.RunSummary
		if err := json.Unmarshal([]byte(item), &s); err != nil {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
