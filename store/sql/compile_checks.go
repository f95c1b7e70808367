package sqlstore

import "github.com/goliatone/go-notifiarr/core"

// DispatchLedgerReader is satisfied by both the plain and cached stores.
type DispatchLedgerReader interface {
	core.DispatchLedger
	core.DispatchReader
}

var (
	_ DispatchLedgerReader = (*DispatchStore)(nil)
	_ DispatchLedgerReader = (*CachedDispatchReader)(nil)
)
