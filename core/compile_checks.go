package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ Notifier    = (*Dispatcher)(nil)
	_ RelaySender = RelaySenderFunc(nil)
	_ error       = (*HTTPError)(nil)
	_ error       = (*Failure)(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
