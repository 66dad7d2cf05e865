package usecase

import "time"

// timeNow is replaced in tests for deterministic timestamps
var timeNow = func() time.Time {
	return time.Now().UTC()
}
