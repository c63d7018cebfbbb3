package view

import (
    "testing"

    "github.com/HamedShams/sprintdeck/internal/domain"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestGroupByStatus_FirstSeenOrder(t *testing.T) {
    issues := []domain.Issue{
        {Key: "A-1", Status: "To Do", StatusCategory: "new"},
        {Key: "A-2", Status: "In Progress", StatusCategory: "indeterminate"},
        {Key: "A-3", Status: "To Do", StatusCategory: "new"},
    }
    groups := GroupByStatus(issues)
    require.Len(t, groups, 2)
    assert.Equal(t, "To Do", groups[0].Status)
    assert.Equal(t, "In Progress", groups[1].Status)
    assert.Len(t, groups[0].Items, 2)
    assert.Len(t, groups[1].Items, 1)
}

func TestGroupByStatus_CaseSensitiveStatusNames(t *testing.T) {
    issues := []domain.Issue{
        {Key: "A-1", Status: "Done"},
        {Key: "A-2", Status: "done"},
    }
    groups := GroupByStatus(issues)
    assert.Len(t, groups, 2, "status names are canonical and compared exactly")
}

func TestGroupByStatus_CategoryFromFirstMemberWithFallback(t *testing.T) {
    issues := []domain.Issue{
        {Key: "A-1", Status: "Weird"},
        {Key: "A-2", Status: "Weird", StatusCategory: "done"},
        {Key: "A-3", Status: "Done", StatusCategory: "done"},
    }
    groups := GroupByStatus(issues)
    require.Len(t, groups, 2)
    assert.Equal(t, "default", groups[0].StatusCategory, "missing category on first member falls back")
    assert.Equal(t, "done", groups[1].StatusCategory)
}

func TestGroupByStatus_EmptyInput(t *testing.T) {
    assert.Empty(t, GroupByStatus(nil))
}
