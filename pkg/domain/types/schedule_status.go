package types

import "fmt"

// ScheduleStatus represents the registration state of an action schedule.
// A schedule stays IN_ACTIVE until the external scheduler has accepted it.
type ScheduleStatus string

const (
	ScheduleStatusInActive ScheduleStatus = "IN_ACTIVE"
	ScheduleStatusActive   ScheduleStatus = "ACTIVE"
)

// IsValid checks if the schedule status is valid
func (s ScheduleStatus) IsValid() bool {
	switch s {
	case ScheduleStatusInActive, ScheduleStatusActive:
		return true
	default:
		return false
	}
}

// String returns the string representation of the schedule status
func (s ScheduleStatus) String() string {
	return string(s)
}

// ParseScheduleStatus parses a string into a ScheduleStatus
func ParseScheduleStatus(s string) (ScheduleStatus, error) {
	status := ScheduleStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid schedule status: %s", s)
	}
	return status, nil
}
