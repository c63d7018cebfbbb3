/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package view

import "github.com/HamedShams/sprintdeck/internal/domain"

// GroupByStatus buckets issues by exact workflow status name. Group order is
// first-seen order of the input, which matches the order the upstream fetch
// returned; status names are case-sensitive because Jira's are canonical.
func GroupByStatus(issues []domain.Issue) []domain.StatusGroup {
    var groups []domain.StatusGroup
    index := map[string]int{}
    for _, iss := range issues {
        i, ok := index[iss.Status]
        if !ok {
            category := iss.StatusCategory
            if category == "" { category = "default" }
            groups = append(groups, domain.StatusGroup{Status: iss.Status, StatusCategory: category})
            i = len(groups) - 1
            index[iss.Status] = i
        }
        groups[i].Items = append(groups[i].Items, iss)
    }
    return groups
}
