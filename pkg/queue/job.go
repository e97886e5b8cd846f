package queue

import (
	"encoding/json"
	"time"
)

// Job is the wire representation stored in Redis. Jobs live as JSON blobs
// inside ready lists, the delayed and retry sorted sets, and the dead-letter
// list; the blob itself is the list member, so no separate job hash exists.
type Job struct {
	ID          string          `json:"id"`
	Task        string          `json:"task"`
	Queue       string          `json:"queue"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Attempt     int             `json:"attempt"`
	MaxAttempts int             `json:"max_attempts"`
	UniqueKey   string          `json:"unique_key,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	EnqueuedAt  time.Time       `json:"enqueued_at"`
	LastError   string          `json:"last_error,omitempty"`
}

func (j *Job) encode() ([]byte, error) {
	return json.Marshal(j)
}

func decodeJob(raw []byte) (*Job, error) {
	var j Job
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, err
	}
	return &j, nil
}
