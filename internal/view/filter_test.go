package view

import (
    "testing"

    "github.com/HamedShams/sprintdeck/internal/domain"
)

func TestFilter_ExcludesEpicsForAnyQuery(t *testing.T) {
    issues := []domain.Issue{
        {Key: "X-1", Type: "Epic", Summary: "a"},
        {Key: "X-2", Type: "EPIC", Summary: "bug in epic"},
        {Key: "X-3", Type: "Task", Summary: "fix bug"},
    }
    for _, q := range []string{"", "bug", "x-1", "epic"} {
        out := Filter(issues, domain.FilterCriteria{SearchQuery: q})
        for _, iss := range out {
            if iss.Type == "Epic" || iss.Type == "EPIC" {
                t.Fatalf("query %q: epic %s leaked into output", q, iss.Key)
            }
        }
    }
}

func TestFilter_SearchMatchesKeyOrSummary(t *testing.T) {
    issues := []domain.Issue{
        {Key: "X-1", Type: "Epic", Summary: "a"},
        {Key: "X-2", Type: "Task", Summary: "fix bug"},
        {Key: "BUG-9", Type: "Story", Summary: "polish login"},
    }
    out := Filter(issues, domain.FilterCriteria{SearchQuery: "bug"})
    if len(out) != 2 { t.Fatalf("expected 2 matches, got %d: %#v", len(out), out) }
    if out[0].Key != "X-2" || out[1].Key != "BUG-9" {
        t.Fatalf("unexpected matches: %#v", out)
    }
    // query is trimmed; whitespace-only means no filtering
    out = Filter(issues, domain.FilterCriteria{SearchQuery: "   "})
    if len(out) != 2 { t.Fatalf("expected epics-only exclusion for blank query, got %#v", out) }
}

func TestMatchesAssignee(t *testing.T) {
    assigned := domain.Issue{Key: "X-1", Assignee: "acc-1"}
    unassigned := domain.Issue{Key: "X-2"}
    if !MatchesAssignee(assigned, domain.AssigneeAll) || !MatchesAssignee(unassigned, domain.AssigneeAll) {
        t.Fatal("'all' must pass every issue")
    }
    if MatchesAssignee(assigned, domain.AssigneeUnassigned) { t.Fatal("'unassigned' must reject assigned issues") }
    if !MatchesAssignee(unassigned, domain.AssigneeUnassigned) { t.Fatal("'unassigned' must keep unassigned issues") }
    if !MatchesAssignee(assigned, "acc-1") || MatchesAssignee(assigned, "acc-2") {
        t.Fatal("account filter must compare accountId exactly")
    }
}
