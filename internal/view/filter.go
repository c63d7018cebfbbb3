/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package view

import (
    "strings"

    "github.com/HamedShams/sprintdeck/internal/domain"
)

// Filter applies the board/backlog issue filter: epics are dropped first, then
// a trimmed case-insensitive substring match over key and summary. Assignee
// filtering is normally pushed down to Jira as JQL; MatchesAssignee covers the
// collections where that is not possible.
func Filter(issues []domain.Issue, criteria domain.FilterCriteria) []domain.Issue {
    query := strings.ToLower(strings.TrimSpace(criteria.SearchQuery))
    out := make([]domain.Issue, 0, len(issues))
    for _, iss := range issues {
        if IsEpic(iss) { continue }
        if query != "" && !matchesQuery(iss, query) { continue }
        out = append(out, iss)
    }
    return out
}

func IsEpic(iss domain.Issue) bool {
    return strings.EqualFold(iss.Type, "epic")
}

func matchesQuery(iss domain.Issue, lowerQuery string) bool {
    return strings.Contains(strings.ToLower(iss.Key), lowerQuery) ||
        strings.Contains(strings.ToLower(iss.Summary), lowerQuery)
}

func MatchesAssignee(iss domain.Issue, selected string) bool {
    switch selected {
    case "", domain.AssigneeAll:
        return true
    case domain.AssigneeUnassigned:
        return iss.Assignee == ""
    default:
        return iss.Assignee == selected
    }
}
