/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package view

import (
    "sort"
    "time"

    "github.com/HamedShams/sprintdeck/internal/domain"
)

// ComputeTimeline positions the active sprint's issues on a date axis. today
// is passed in rather than read from the clock so the math is deterministic;
// comparisons are date-only.
func ComputeTimeline(sprint domain.Sprint, issues []domain.Issue, today time.Time) domain.Timeline {
    tl := domain.Timeline{}
    today = dateOnly(today)

    hasRange := sprint.StartDate != nil && sprint.EndDate != nil
    var start, end time.Time
    var span float64
    if hasRange {
        start = dateOnly(*sprint.StartDate)
        end = dateOnly(*sprint.EndDate)
        span = end.Sub(start).Hours()
        if span <= 0 { hasRange = false }
    }
    if hasRange {
        p := clampPercent(today.Sub(start).Hours() / span * 100)
        tl.SprintProgressPercent = &p
    }

    sorted := make([]domain.Issue, len(issues))
    copy(sorted, issues)
    sort.SliceStable(sorted, func(i, j int) bool {
        a, b := sorted[i].DueDate, sorted[j].DueDate
        if a == nil { return false } // nil due date sorts last
        if b == nil { return true }
        return a.Before(*b)
    })

    for _, iss := range sorted {
        if iss.DueDate == nil {
            tl.Entries = append(tl.Entries, domain.TimelineEntry{Key: iss.Key, NoDueDate: true})
            continue
        }
        due := dateOnly(*iss.DueDate)
        entry := domain.TimelineEntry{Key: iss.Key}
        entry.Overdue = due.Before(today)
        if hasRange {
            p := clampPercent(due.Sub(start).Hours() / span * 100)
            entry.Percent = &p
            if due.After(end) { entry.Overdue = true }
        }
        tl.Entries = append(tl.Entries, entry)
    }
    return tl
}

func clampPercent(v float64) float64 {
    if v < 0 { return 0 }
    if v > 100 { return 100 }
    return v
}

func dateOnly(t time.Time) time.Time {
    y, m, d := t.UTC().Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
