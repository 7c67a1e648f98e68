package observability

// EventEnvelope is the wire shape of websocket lifecycle events published
// to the events exchange.
type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Payload   interface{} `json:"payload"`
}

// EventHeaders builds the AMQP headers that let downstream consumers join
// an event back to its originating request and trace. Empty values are
// omitted rather than published blank.
func EventHeaders(requestID, traceID string) map[string]string {
	headers := make(map[string]string, 2)
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
