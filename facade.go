package notifiarr

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	notifiarrcommand "github.com/goliatone/go-notifiarr/command"
	"github.com/goliatone/go-notifiarr/core"
	notifiarrquery "github.com/goliatone/go-notifiarr/query"
)

type Commands struct {
	SendNotification    *notifiarrcommand.SendNotificationCommand
	EnqueueNotification *notifiarrcommand.EnqueueNotificationCommand
}

type Queries struct {
	TestEndpoint   *notifiarrquery.TestEndpointQuery
	ListDispatches *notifiarrquery.ListDispatchesQuery
}

type Facade struct {
	notifier core.Notifier
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	dispatchReader core.DispatchReader
	enqueuer       notifiarrcommand.NotificationEnqueuer
}

func WithDispatchReader(reader core.DispatchReader) FacadeOption {
	return func(options *facadeOptions) {
		options.dispatchReader = reader
	}
}

// WithEnqueuer enables EnqueueNotification, typically with a
// gojob.EnqueuerAdapter.
func WithEnqueuer(enqueuer notifiarrcommand.NotificationEnqueuer) FacadeOption {
	return func(options *facadeOptions) {
		options.enqueuer = enqueuer
	}
}

func NewFacade(notifier core.Notifier, opts ...FacadeOption) (*Facade, error) {
	if notifier == nil {
		return nil, goerrors.New("notifiarr: notifier is required", goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(core.ErrorInternal)
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	reader := cfg.dispatchReader
	if reader == nil {
		reader = resolveDispatchReader(notifier)
	}

	facade := &Facade{notifier: notifier}
	facade.commands = Commands{
		SendNotification: notifiarrcommand.NewSendNotificationCommand(notifier),
	}
	if cfg.enqueuer != nil {
		facade.commands.EnqueueNotification = notifiarrcommand.NewEnqueueNotificationCommand(cfg.enqueuer)
	}
	facade.queries = Queries{
		TestEndpoint: notifiarrquery.NewTestEndpointQuery(notifier),
	}
	if reader != nil {
		facade.queries.ListDispatches = notifiarrquery.NewListDispatchesQuery(reader)
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Notifier() core.Notifier {
	if f == nil {
		return nil
	}
	return f.notifier
}

// resolveDispatchReader falls back to the dispatcher ledger when it can also
// list dispatches, as the sqlstore ledgers do.
func resolveDispatchReader(notifier core.Notifier) core.DispatchReader {
	if reader, ok := notifier.(core.DispatchReader); ok {
		return reader
	}
	provider, ok := notifier.(interface {
		Dependencies() core.DispatcherDependencies
	})
	if !ok {
		return nil
	}
	if reader, ok := provider.Dependencies().Ledger.(core.DispatchReader); ok {
		return reader
	}
	return nil
}
