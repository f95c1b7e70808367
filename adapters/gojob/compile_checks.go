package gojob

import (
	"github.com/goliatone/go-job/queue/worker"
	notifiarrcommand "github.com/goliatone/go-notifiarr/command"
)

var (
	_ notifiarrcommand.NotificationEnqueuer = (*EnqueuerAdapter)(nil)
	_ worker.Hook                           = (*LoggingHook)(nil)
)
