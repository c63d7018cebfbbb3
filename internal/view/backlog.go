/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package view

import (
    "sort"
    "strings"

    "github.com/HamedShams/sprintdeck/internal/domain"
)

// GroupForBacklog composes the backlog view. The sprint issue queries and the
// backlog query are separate fetches and can return the same issue under
// transitional states, so a global seen-key set guarantees each key lands in
// exactly one group.
//
// Order: active sprint first (always, even empty), then future sprints
// ascending by start date (dated before undated), then the backlog group,
// which is the only group omitted when empty. Closed sprints are never shown.
func GroupForBacklog(issues, backlogIssues []domain.Issue, sprints []domain.Sprint, activeSprint *domain.Sprint, criteria domain.FilterCriteria) []domain.SprintGroup {
    var groups []domain.SprintGroup
    seen := map[string]struct{}{}

    take := func(sprintID int64) []domain.Issue {
        items := make([]domain.Issue, 0)
        for _, iss := range issues {
            if iss.Sprint == nil || iss.Sprint.ID != sprintID { continue }
            if _, dup := seen[iss.Key]; dup { continue }
            seen[iss.Key] = struct{}{}
            items = append(items, iss)
        }
        return items
    }

    if activeSprint != nil {
        id := activeSprint.ID
        groups = append(groups, domain.SprintGroup{
            SprintName: activeSprint.Name,
            SprintID:   &id,
            StartDate:  activeSprint.StartDate,
            EndDate:    activeSprint.EndDate,
            Items:      take(id),
        })
    }

    future := make([]domain.Sprint, 0, len(sprints))
    for _, sp := range sprints {
        if sp.State != domain.SprintStateFuture { continue }
        if activeSprint != nil && sp.ID == activeSprint.ID { continue }
        future = append(future, sp)
    }
    sort.SliceStable(future, func(i, j int) bool {
        a, b := future[i].StartDate, future[j].StartDate
        if a == nil { return false }
        if b == nil { return true }
        return a.Before(*b)
    })
    for _, sp := range future {
        id := sp.ID
        groups = append(groups, domain.SprintGroup{
            SprintName: sp.Name,
            SprintID:   &id,
            StartDate:  sp.StartDate,
            EndDate:    sp.EndDate,
            Items:      take(id),
        })
    }

    query := strings.ToLower(strings.TrimSpace(criteria.SearchQuery))
    backlog := make([]domain.Issue, 0, len(backlogIssues))
    for _, iss := range backlogIssues {
        if IsEpic(iss) { continue }
        if iss.StatusCategory == "done" { continue }
        if iss.Sprint != nil { continue }
        if !MatchesAssignee(iss, criteria.Assignee) { continue }
        if query != "" && !matchesQuery(iss, query) { continue }
        if _, dup := seen[iss.Key]; dup { continue }
        seen[iss.Key] = struct{}{}
        backlog = append(backlog, iss)
    }
    if len(backlog) > 0 {
        groups = append(groups, domain.SprintGroup{SprintName: "Backlog", SprintID: nil, Items: backlog})
    }
    return groups
}
