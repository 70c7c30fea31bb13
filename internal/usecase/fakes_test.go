package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/user/catalog-imager/internal/entity"
	"github.com/user/catalog-imager/internal/repository"
)

type fakeRecordRepo struct {
	sourced   []entity.SourcedRow
	linked    []entity.LinkedRow
	linkedErr error

	sourcedLimit int
	linkedCalls  int
}

func (f *fakeRecordRepo) ListSourced(ctx context.Context, limit int) ([]entity.SourcedRow, error) {
	f.sourcedLimit = limit
	if limit < len(f.sourced) {
		return f.sourced[:limit], nil
	}
	return f.sourced, nil
}

func (f *fakeRecordRepo) ListLinked(ctx context.Context, limit int) ([]entity.LinkedRow, error) {
	f.linkedCalls++
	if f.linkedErr != nil {
		return nil, f.linkedErr
	}
	return f.linked, nil
}

type fakeFetcher struct {
	pages map[string]*entity.Page
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*entity.Page, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	if p, ok := f.pages[url]; ok {
		return p, nil
	}
	return nil, &repository.StatusError{StatusCode: 404, URL: url}
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]entity.Resolution
	puts    int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]entity.Resolution{}}
}

func (c *memCache) Get(ctx context.Context, pageURL string) (*entity.Resolution, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[pageURL]
	if !ok {
		return nil, false, nil
	}
	r.Cached = true
	return &r, true, nil
}

func (c *memCache) Put(ctx context.Context, res *entity.Resolution, expiry time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[res.PageURL] = *res
	c.puts++
	return nil
}

func (c *memCache) Forget(ctx context.Context, pageURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, pageURL)
	return nil
}

type memStore struct {
	images   map[string][]byte
	mapping  *entity.Mapping
	prepared bool
}

func newMemStore() *memStore {
	return &memStore{images: map[string][]byte{}}
}

func (s *memStore) Prepare(ctx context.Context) error {
	s.prepared = true
	return nil
}

func (s *memStore) SaveImage(ctx context.Context, name string, data []byte) error {
	s.images[name] = data
	return nil
}

func (s *memStore) WriteMapping(ctx context.Context, m *entity.Mapping) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	cp := *m
	s.mapping = &cp
	return nil
}

func (s *memStore) MappingPath() string { return "mem://MAPPING.json" }

type staticSelector []entity.Selection

func (s staticSelector) Select(ctx context.Context) ([]entity.Selection, error) {
	return s, nil
}

type funcResolver func(ctx context.Context, rawURL string) (*entity.Resolution, error)

func (f funcResolver) ResolvePage(ctx context.Context, rawURL string) (*entity.Resolution, error) {
	return f(ctx, rawURL)
}

func (f funcResolver) Invalidate(ctx context.Context, rawURL string) error {
	return nil
}

type bytesDownloader []byte

func (b bytesDownloader) Download(ctx context.Context, url string) ([]byte, error) {
	return b, nil
}

type memJournal struct {
	runs []entity.RunSummary
}

func (j *memJournal) Append(ctx context.Context, s *entity.RunSummary) error {
	j.runs = append(j.runs, *s)
	return nil
}

func (j *memJournal) Recent(ctx context.Context, n int) ([]entity.RunSummary, error) {
	if n > len(j.runs) {
		n = len(j.runs)
	}
	return j.runs[:n], nil
}
