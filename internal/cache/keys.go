package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// JobStatusKey holds the status of an async profile job.
func JobStatusKey(jobID uuid.UUID) string {
	return fmt.Sprintf("job:%s", jobID)
}

// ReportKey holds the JSON-encoded report of a completed profile job.
func ReportKey(jobID uuid.UUID) string {
	return fmt.Sprintf("report:%s", jobID)
}

// ReplyKey holds a raw model reply, keyed by a hash of the prompt and model.
func ReplyKey(promptHash string) string {
	return fmt.Sprintf("ai:reply:%s", promptHash)
}

// RateLimitKey holds the per-key request counter.
func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
