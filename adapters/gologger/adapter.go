package gologger

import (
	"strings"

	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"
)

const DefaultLoggerName = "notifiarr"

// Resolve uses deterministic precedence provider > logger > nop. An empty name
// resolves the dispatcher logger.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultLoggerName
	}
	return glog.Resolve(name, provider, logger)
}

// Named returns the child logger used by a notifiarr component, e.g.
// "notifiarr.worker".
func Named(provider glog.LoggerProvider, component string) glog.Logger {
	name := DefaultLoggerName
	if component = strings.TrimSpace(component); component != "" {
		name += "." + component
	}
	if provider == nil {
		return glog.Nop()
	}
	return glog.Ensure(provider.GetLogger(name))
}

// ToJobProvider maps a glog provider to the go-job logger provider contract
// used by the delivery worker.
func ToJobProvider(provider glog.LoggerProvider) job.LoggerProvider {
	if provider == nil {
		return nil
	}
	return job.GoLoggerProvider(provider)
}

func ToJobLogger(logger glog.Logger) job.Logger {
	if logger == nil {
		return nil
	}
	return job.GoLogger(logger)
}
