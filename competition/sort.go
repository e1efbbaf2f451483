// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package competition

import (
	"slices"
	"strings"
	"time"

	"github.com/danielhkuo/inject-portal/models"
)

// SortJobsByScheduled orders jobs newest first by scheduled_time.
// Times that do not parse as RFC 3339 fall back to string comparison.
func SortJobsByScheduled(jobs []models.Job) {
	slices.SortStableFunc(jobs, func(a, b models.Job) int {
		ta, errA := time.Parse(time.RFC3339Nano, a.ScheduledTime)
		tb, errB := time.Parse(time.RFC3339Nano, b.ScheduledTime)
		if errA == nil && errB == nil {
			return tb.Compare(ta)
		}
		return strings.Compare(b.ScheduledTime, a.ScheduledTime)
	})
}

// ParseMembers splits a comma separated member list.
// Entries are trimmed and empty ones dropped.
func ParseMembers(s string) []string {
	members := []string{}
	for _, m := range strings.Split(s, ",") {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}
	return members
}
