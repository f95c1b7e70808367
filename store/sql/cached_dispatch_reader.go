package sqlstore

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-notifiarr/core"
)

const dispatchCacheKeyPrefix = "go-notifiarr::dispatches::v1"

// CachedDispatchReader serves List from a go-repository-cache service and
// writes through to the underlying store. Recording a dispatch drops every
// cached page for that instance plus the unfiltered pages.
type CachedDispatchReader struct {
	store *DispatchStore
	cache repositorycache.CacheService

	// writes is bumped after every store write, before invalidation.
	writes atomic.Uint64
}

func NewCachedDispatchReader(
	store *DispatchStore,
	cacheService repositorycache.CacheService,
) (*CachedDispatchReader, error) {
	if store == nil {
		return nil, storeError("sqlstore: dispatch store is required")
	}
	if cacheService == nil {
		return nil, storeError("sqlstore: dispatch cache service is required")
	}
	return &CachedDispatchReader{
		store: store,
		cache: cacheService,
	}, nil
}

// DispatchCacheKey returns go-notifiarr::dispatches::v1::<instance>::<operation>::<page>::<per_page>
// with each segment URL-path escaped after filter normalization.
func DispatchCacheKey(filter core.DispatchFilter) string {
	filter = normalizeFilter(filter)
	segments := []string{
		url.PathEscape(filter.InstanceName),
		url.PathEscape(string(filter.Operation)),
		strconv.Itoa(filter.Page),
		strconv.Itoa(filter.PerPage),
	}
	return strings.Join(append([]string{dispatchCacheKeyPrefix}, segments...), "::")
}

func (r *CachedDispatchReader) List(ctx context.Context, filter core.DispatchFilter) (core.DispatchPage, error) {
	if r == nil || r.store == nil || r.cache == nil {
		return core.DispatchPage{}, storeError("sqlstore: cached dispatch reader is not configured")
	}
	filter = normalizeFilter(filter)
	cacheKey := DispatchCacheKey(filter)
	observed := r.writes.Load()

	page, err := repositorycache.GetOrFetch(ctx, r.cache, cacheKey, func(ctx context.Context) (core.DispatchPage, error) {
		return r.store.List(ctx, filter)
	})
	if err != nil {
		return core.DispatchPage{}, err
	}
	if r.writes.Load() != observed {
		// A write landed while the page was fetched; the cached copy may
		// predate it and the write's invalidation may have run first.
		if err := r.cache.Delete(ctx, cacheKey); err != nil {
			return core.DispatchPage{}, err
		}
		return r.store.List(ctx, filter)
	}
	return cloneDispatchPage(page), nil
}

func (r *CachedDispatchReader) Record(ctx context.Context, entry core.DispatchRecord) error {
	if r == nil || r.store == nil || r.cache == nil {
		return storeError("sqlstore: cached dispatch reader is not configured")
	}
	if err := r.store.Record(ctx, entry); err != nil {
		return err
	}
	return r.invalidate(ctx, strings.TrimSpace(entry.InstanceName))
}

func (r *CachedDispatchReader) invalidate(ctx context.Context, instance string) error {
	r.writes.Add(1)
	for _, prefix := range []string{dispatchInstancePrefix(instance), dispatchInstancePrefix("")} {
		if err := r.cache.DeleteByPrefix(ctx, prefix); err != nil {
			return err
		}
	}
	return nil
}

// dispatchInstancePrefix matches every cached page for one instance filter.
func dispatchInstancePrefix(instance string) string {
	return dispatchCacheKeyPrefix + "::" + url.PathEscape(instance) + "::"
}

func cloneDispatchPage(page core.DispatchPage) core.DispatchPage {
	cloned := page
	cloned.Items = make([]core.DispatchRecord, len(page.Items))
	for i, item := range page.Items {
		item.Metadata = copyAnyMap(item.Metadata)
		cloned.Items[i] = item
	}
	return cloned
}
