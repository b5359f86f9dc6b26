package types

// NodeStatus represents the lifecycle state of a node within a pass
type NodeStatus string

const (
	StatusIdle      NodeStatus = "idle"
	StatusRunning   NodeStatus = "running"
	StatusCompleted NodeStatus = "completed"
	StatusError     NodeStatus = "error"
)
