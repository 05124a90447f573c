// Package modstatus defines the moduleStatus event payload and status
// vocabulary shared by every subsystem and consumed by the Supervisor
// (§4.8).
package modstatus

import "time"

// Status is the health vocabulary a subsystem reports itself in.
type Status string

const (
	StatusInitializing Status = "initializing"
	StatusOperational  Status = "operational"
	StatusDegraded     Status = "degraded"
	StatusErrored      Status = "errored"
	StatusOnline       Status = "online"
	StatusOffline      Status = "offline"
	StatusUnresponsive Status = "unresponsive"
	StatusReconnected  Status = "reconnected"
)

// Event is the payload published on the moduleStatus topic.
type Event struct {
	Name      string
	Status    Status
	Data      interface{}
	Timestamp time.Time
	// OneShot marks a module that does not report on a steady cadence
	// (e.g. macros), exempting it from the Supervisor's unresponsive
	// timeout (§4.8).
	OneShot bool
}
