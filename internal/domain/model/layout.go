//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// TimezoneLayout is the per-timezone shard of a task's schedule: the same
// task fired once per IANA zone, each at the zone's own local date with the
// task's configured hour. A task owns exactly one layout per supported zone
// and the set is regenerated wholesale whenever RunAt changes before the
// task starts.
type TimezoneLayout struct {
	ID        int64      `json:"id"                   db:"id"`
	TaskID    int64      `json:"task_id"              db:"task_id"`
	Timezone  string     `json:"timezone"             db:"timezone"`
	RunAt     time.Time  `json:"run_at"               db:"run_at"`
	StartedAt *time.Time `json:"started_at,omitempty" db:"started_at"`
	DoneAt    *time.Time `json:"done_at,omitempty"    db:"done_at"`
}

// RunFor returns how long the sub-task took, or zero while it is unfinished.
func (l *TimezoneLayout) RunFor() time.Duration {
	if l.StartedAt == nil || l.DoneAt == nil {
		return 0
	}
	return l.DoneAt.Sub(*l.StartedAt)
}
