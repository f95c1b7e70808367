package sqlstore

import (
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

type RepositoryFactory struct {
	db *bun.DB

	dispatchStore  *DispatchStore
	cachedDispatch *CachedDispatchReader
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.Build(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.Build(db); err != nil {
		return nil, err
	}
	return factory, nil
}

// Build accepts a *bun.DB or any client exposing DB() *bun.DB, such as a
// go-persistence-bun client.
func (f *RepositoryFactory) Build(persistenceClient any) error {
	if f == nil {
		return storeError("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.dispatchStore != nil {
		return nil
	}
	store, err := NewDispatchStore(f.db)
	if err != nil {
		return err
	}
	f.dispatchStore = store
	return nil
}

// WithCache wraps the dispatch store in a CachedDispatchReader.
func (f *RepositoryFactory) WithCache(cacheService repositorycache.CacheService) error {
	if f == nil || f.dispatchStore == nil {
		return storeError("sqlstore: repository factory is not built")
	}
	reader, err := NewCachedDispatchReader(f.dispatchStore, cacheService)
	if err != nil {
		return err
	}
	f.cachedDispatch = reader
	return nil
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) DispatchStore() *DispatchStore {
	if f == nil {
		return nil
	}
	return f.dispatchStore
}

// DispatchLedger returns the cached reader when configured so ledger writes
// invalidate cached pages.
func (f *RepositoryFactory) DispatchLedger() DispatchLedgerReader {
	if f == nil {
		return nil
	}
	if f.cachedDispatch != nil {
		return f.cachedDispatch
	}
	if f.dispatchStore == nil {
		return nil
	}
	return f.dispatchStore
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, storeError("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, storeError("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, storeError(fmt.Sprintf("sqlstore: unsupported persistence client type %T", candidate))
	}
}
