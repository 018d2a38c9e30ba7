package agent

// StreamEventType enumerates the event kinds a streaming query emits.
type StreamEventType string

const (
	EventStart StreamEventType = "start"
	EventChunk StreamEventType = "chunk"
	EventTool  StreamEventType = "tool"
	EventDone  StreamEventType = "done"
	EventError StreamEventType = "error"
)

// StreamEvent is one frame of a streaming query. A stream opens with
// exactly one start event naming the answering agent, its bound model
// and whether the swarm handles the query, carries zero or more chunk
// and tool events, and closes with exactly one done or error event.
type StreamEvent struct {
	Type      StreamEventType `json:"type"`
	Agent     string          `json:"agent,omitempty"`
	Model     string          `json:"model,omitempty"`
	SwarmMode bool            `json:"swarm_mode"`
	Content   string          `json:"content,omitempty"`
	Tool      string          `json:"tool,omitempty"`
	Handoffs  []string        `json:"handoffs,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Result is the envelope ProcessQuery always returns, errors included.
type Result struct {
	Response string   `json:"response"`
	Agent    string   `json:"agent"`
	Handoffs []string `json:"handoffs"`
	Status   string   `json:"status"`
}

const (
	StatusCompleted = "completed"
	StatusError     = "error"
)
