package logger

import "time"

// Standard field key constants for structured logging.
const (
	FieldComponent = "component"
	FieldGraphID   = "graph_id"
	FieldPassID    = "pass_id"
	FieldNodeID    = "node_id"
	FieldNodeType  = "node_type"
	FieldStatus    = "status"
	FieldInputs    = "inputs"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
)

// Fields builds a map from alternating key-value pairs.
//
//	log.Info("pass finished", logger.Fields("pass_id", id, "steps", 12))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for a failed node.
func ErrorFields(nodeID string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldNodeID: nodeID,
		FieldError:  err.Error(),
	}
}

// MergeWithDuration adds a duration field to an existing map.
func MergeWithDuration(fields map[string]interface{}, d time.Duration) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields[FieldDuration] = d.Milliseconds()
	return fields
}
