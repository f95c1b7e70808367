package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-notifiarr/core"
)

func TestDispatchCacheKey_NormalizesFilter(t *testing.T) {
	a := DispatchCacheKey(core.DispatchFilter{InstanceName: " radarr main "})
	b := DispatchCacheKey(core.DispatchFilter{InstanceName: "radarr main", Page: 1, PerPage: DefaultDispatchesPerPage})
	if a != b {
		t.Fatalf("expected normalized keys to match: %q != %q", a, b)
	}
	if !strings.HasPrefix(a, dispatchCacheKeyPrefix+"::") {
		t.Fatalf("expected key prefix, got %q", a)
	}
	if strings.Contains(a, " ") {
		t.Fatalf("expected escaped instance segment, got %q", a)
	}
}

func TestCachedDispatchReader_ListMissFetchThenHit(t *testing.T) {
	ctx := context.Background()
	store := newTestDispatchStore(t)
	reader, err := NewCachedDispatchReader(store, newTestDispatchCacheService(t))
	if err != nil {
		t.Fatalf("new cached reader: %v", err)
	}
	if err := store.Record(ctx, core.DispatchRecord{Operation: core.OperationSend, InstanceName: "radarr"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	first, err := reader.List(ctx, core.DispatchFilter{InstanceName: "radarr"})
	if err != nil {
		t.Fatalf("first list: %v", err)
	}
	if first.Total != 1 {
		t.Fatalf("expected one dispatch, got %d", first.Total)
	}

	// Writing around the cache must not be visible until invalidation.
	if err := store.Record(ctx, core.DispatchRecord{Operation: core.OperationSend, InstanceName: "radarr"}); err != nil {
		t.Fatalf("direct record: %v", err)
	}
	cached, err := reader.List(ctx, core.DispatchFilter{InstanceName: "radarr"})
	if err != nil {
		t.Fatalf("cached list: %v", err)
	}
	if cached.Total != 1 {
		t.Fatalf("expected cache hit with stale total 1, got %d", cached.Total)
	}
}

func TestCachedDispatchReader_RecordInvalidatesInstanceAndUnfilteredPages(t *testing.T) {
	ctx := context.Background()
	store := newTestDispatchStore(t)
	reader, err := NewCachedDispatchReader(store, newTestDispatchCacheService(t))
	if err != nil {
		t.Fatalf("new cached reader: %v", err)
	}

	if _, err := reader.List(ctx, core.DispatchFilter{InstanceName: "radarr"}); err != nil {
		t.Fatalf("prime instance page: %v", err)
	}
	if _, err := reader.List(ctx, core.DispatchFilter{}); err != nil {
		t.Fatalf("prime unfiltered page: %v", err)
	}
	if _, err := reader.List(ctx, core.DispatchFilter{InstanceName: "other"}); err != nil {
		t.Fatalf("prime other page: %v", err)
	}

	if err := reader.Record(ctx, core.DispatchRecord{Operation: core.OperationTest, InstanceName: "radarr"}); err != nil {
		t.Fatalf("record through cache: %v", err)
	}

	instance, err := reader.List(ctx, core.DispatchFilter{InstanceName: "radarr"})
	if err != nil {
		t.Fatalf("list instance: %v", err)
	}
	if instance.Total != 1 {
		t.Fatalf("expected invalidated instance page, got total=%d", instance.Total)
	}
	all, err := reader.List(ctx, core.DispatchFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if all.Total != 1 {
		t.Fatalf("expected invalidated unfiltered page, got total=%d", all.Total)
	}
	other, err := reader.List(ctx, core.DispatchFilter{InstanceName: "other"})
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if other.Total != 0 {
		t.Fatalf("expected other instance to stay empty, got %d", other.Total)
	}
}

func TestCachedDispatchReader_RecordDuringFetchDoesNotLeaveStalePage(t *testing.T) {
	ctx := context.Background()
	store := newTestDispatchStore(t)
	service := &interleavingCacheService{CacheService: newTestDispatchCacheService(t)}
	reader, err := NewCachedDispatchReader(store, service)
	if err != nil {
		t.Fatalf("new cached reader: %v", err)
	}
	service.afterFetch = func(ctx context.Context) {
		if err := reader.Record(ctx, core.DispatchRecord{Operation: core.OperationSend, InstanceName: "radarr"}); err != nil {
			t.Fatalf("record during fetch: %v", err)
		}
	}

	if _, err := reader.List(ctx, core.DispatchFilter{InstanceName: "radarr"}); err != nil {
		t.Fatalf("first list: %v", err)
	}
	if service.fetches != 1 {
		t.Fatalf("expected one interleaved fetch, got %d", service.fetches)
	}

	page, err := reader.List(ctx, core.DispatchFilter{InstanceName: "radarr"})
	if err != nil {
		t.Fatalf("second list: %v", err)
	}
	stored, err := store.List(ctx, core.DispatchFilter{InstanceName: "radarr"})
	if err != nil {
		t.Fatalf("store list: %v", err)
	}
	if page.Total != stored.Total || page.Total != 1 {
		t.Fatalf("expected cached page to match store after record, cached=%d store=%d", page.Total, stored.Total)
	}
}

func TestCachedDispatchReader_RecordKeepsOtherInstancesCached(t *testing.T) {
	ctx := context.Background()
	store := newTestDispatchStore(t)
	reader, err := NewCachedDispatchReader(store, newTestDispatchCacheService(t))
	if err != nil {
		t.Fatalf("new cached reader: %v", err)
	}
	if _, err := reader.List(ctx, core.DispatchFilter{InstanceName: "radarr-4k"}); err != nil {
		t.Fatalf("prime: %v", err)
	}
	if err := store.Record(ctx, core.DispatchRecord{Operation: core.OperationSend, InstanceName: "radarr-4k"}); err != nil {
		t.Fatalf("direct record: %v", err)
	}
	if err := reader.Record(ctx, core.DispatchRecord{Operation: core.OperationSend, InstanceName: "radarr"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	page, err := reader.List(ctx, core.DispatchFilter{InstanceName: "radarr-4k"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("expected radarr-4k page to stay cached, got total=%d", page.Total)
	}
}

func TestCachedDispatchReader_ReturnsClonedMetadata(t *testing.T) {
	ctx := context.Background()
	store := newTestDispatchStore(t)
	reader, err := NewCachedDispatchReader(store, newTestDispatchCacheService(t))
	if err != nil {
		t.Fatalf("new cached reader: %v", err)
	}
	if err := reader.Record(ctx, core.DispatchRecord{
		Operation:    core.OperationSend,
		InstanceName: "radarr",
		Metadata:     map[string]any{"status_text": "Bad Request"},
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	first, err := reader.List(ctx, core.DispatchFilter{InstanceName: "radarr"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	first.Items[0].Metadata["status_text"] = "mutated"

	second, err := reader.List(ctx, core.DispatchFilter{InstanceName: "radarr"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if second.Items[0].Metadata["status_text"] != "Bad Request" {
		t.Fatalf("expected cached metadata to be isolated, got %v", second.Items[0].Metadata["status_text"])
	}
}

func TestNewCachedDispatchReader_RequiresDependencies(t *testing.T) {
	if _, err := NewCachedDispatchReader(nil, newTestDispatchCacheService(t)); err == nil {
		t.Fatalf("expected store error")
	}
	if _, err := NewCachedDispatchReader(&DispatchStore{}, nil); err == nil {
		t.Fatalf("expected cache error")
	}
}

func newTestDispatchStore(t *testing.T) *DispatchStore {
	t.Helper()
	db, err := OpenSQLite(fmt.Sprintf("file:notifiarr-cache-%d?mode=memory&cache=shared", time.Now().UnixNano()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.NewCreateTable().Model((*dispatchRecord)(nil)).IfNotExists().Exec(context.Background()); err != nil {
		t.Fatalf("create %s: %v", dispatchTableName, err)
	}
	store, err := NewDispatchStore(db)
	if err != nil {
		t.Fatalf("new dispatch store: %v", err)
	}
	return store
}

func newTestDispatchCacheService(t *testing.T) repositorycache.CacheService {
	t.Helper()
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return service
}

// interleavingCacheService runs afterFetch between the store read and the
// cache write of the first miss.
type interleavingCacheService struct {
	repositorycache.CacheService
	afterFetch func(ctx context.Context)
	fetches    int
}

func (s *interleavingCacheService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	fetch, ok := fetchFn.(repositorycache.FetchFn[core.DispatchPage])
	if !ok || s.afterFetch == nil || s.fetches > 0 {
		return s.CacheService.GetOrFetch(ctx, key, fetchFn)
	}
	wrapped := repositorycache.FetchFn[core.DispatchPage](func(ctx context.Context) (core.DispatchPage, error) {
		page, err := fetch(ctx)
		s.fetches++
		s.afterFetch(ctx)
		return page, err
	})
	return s.CacheService.GetOrFetch(ctx, key, wrapped)
}
