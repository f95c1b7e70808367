package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-notifiarr/core"
)

var (
	_ gocmd.Querier[TestEndpointMessage, core.ValidationResult] = (*TestEndpointQuery)(nil)
	_ gocmd.Querier[ListDispatchesMessage, core.DispatchPage]   = (*ListDispatchesQuery)(nil)
)
