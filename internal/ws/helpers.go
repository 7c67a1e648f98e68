package ws

import "github.com/google/uuid"

// newConnID labels one socket for the lifecycle events; it has no meaning
// beyond correlating connect/disconnect/error for the same connection.
func newConnID() string {
	return "conn-" + uuid.NewString()
}
