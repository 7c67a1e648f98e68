package ws

import "time"

// ConnInfo is the identity and correlation data captured at handshake time,
// carried for the life of the connection so disconnect and error events can
// be attributed without another lookup.
type ConnInfo struct {
	ConnID      string
	UserID      int
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
