package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[SendNotificationMessage]    = (*SendNotificationCommand)(nil)
	_ gocmd.Commander[EnqueueNotificationMessage] = (*EnqueueNotificationCommand)(nil)
)
