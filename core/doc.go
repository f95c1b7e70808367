// Package core contains the relay dispatch contracts, the dispatcher and the
// failure classification shared by live sends and connectivity tests.
// Transport, storage and queue adapters depend on this package; core must not
// depend on them.
package core
