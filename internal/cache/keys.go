package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func PageKey(urlHash string) string {
	return fmt.Sprintf("page:%s", urlHash)
}

func ResultKey(jobID uuid.UUID) string {
	return fmt.Sprintf("result:%s", jobID)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
