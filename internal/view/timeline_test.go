package view

import (
    "testing"
    "time"

    "github.com/HamedShams/sprintdeck/internal/domain"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func day(s string) time.Time {
    t, err := time.Parse("2006-01-02", s)
    if err != nil { panic(err) }
    return t
}

func TestComputeTimeline_SprintProgressClamped(t *testing.T) {
    sprint := domain.Sprint{StartDate: date("2024-01-01"), EndDate: date("2024-01-31")}

    tl := ComputeTimeline(sprint, nil, day("2024-01-16"))
    require.NotNil(t, tl.SprintProgressPercent)
    assert.InDelta(t, 50.0, *tl.SprintProgressPercent, 0.01)

    tl = ComputeTimeline(sprint, nil, day("2023-12-01"))
    assert.Equal(t, 0.0, *tl.SprintProgressPercent)

    tl = ComputeTimeline(sprint, nil, day("2024-03-01"))
    assert.Equal(t, 100.0, *tl.SprintProgressPercent)
}

func TestComputeTimeline_ProgressUndefinedWithoutDates(t *testing.T) {
    tl := ComputeTimeline(domain.Sprint{}, nil, day("2024-01-16"))
    assert.Nil(t, tl.SprintProgressPercent)

    tl = ComputeTimeline(domain.Sprint{StartDate: date("2024-01-01")}, nil, day("2024-01-16"))
    assert.Nil(t, tl.SprintProgressPercent)
}

func TestComputeTimeline_OverdueWhenDueAfterSprintEnd(t *testing.T) {
    sprint := domain.Sprint{StartDate: date("2024-01-01"), EndDate: date("2024-01-31")}
    issues := []domain.Issue{{Key: "X-1", DueDate: date("2024-02-05")}}
    // today is still before the due date; overdue comes from the sprint window
    tl := ComputeTimeline(sprint, issues, day("2024-01-10"))
    require.Len(t, tl.Entries, 1)
    assert.True(t, tl.Entries[0].Overdue)
    require.NotNil(t, tl.Entries[0].Percent)
    assert.Equal(t, 100.0, *tl.Entries[0].Percent)
}

func TestComputeTimeline_OverdueWhenDueBeforeToday(t *testing.T) {
    sprint := domain.Sprint{StartDate: date("2024-01-01"), EndDate: date("2024-01-31")}
    issues := []domain.Issue{
        {Key: "X-1", DueDate: date("2024-01-05")},
        {Key: "X-2", DueDate: date("2024-01-20")},
    }
    tl := ComputeTimeline(sprint, issues, day("2024-01-10"))
    require.Len(t, tl.Entries, 2)
    assert.True(t, tl.Entries[0].Overdue)
    assert.False(t, tl.Entries[1].Overdue)
}

func TestComputeTimeline_SortsByDueDateNilLast(t *testing.T) {
    sprint := domain.Sprint{StartDate: date("2024-01-01"), EndDate: date("2024-01-31")}
    issues := []domain.Issue{
        {Key: "NONE"},
        {Key: "LATE", DueDate: date("2024-01-25")},
        {Key: "EARLY", DueDate: date("2024-01-05")},
    }
    tl := ComputeTimeline(sprint, issues, day("2024-01-10"))
    require.Len(t, tl.Entries, 3)
    assert.Equal(t, "EARLY", tl.Entries[0].Key)
    assert.Equal(t, "LATE", tl.Entries[1].Key)
    assert.Equal(t, "NONE", tl.Entries[2].Key)
    assert.True(t, tl.Entries[2].NoDueDate)
}

func TestComputeTimeline_PercentPositionWithinSprint(t *testing.T) {
    sprint := domain.Sprint{StartDate: date("2024-01-01"), EndDate: date("2024-01-11")}
    issues := []domain.Issue{{Key: "X-1", DueDate: date("2024-01-06")}}
    tl := ComputeTimeline(sprint, issues, day("2024-01-02"))
    require.Len(t, tl.Entries, 1)
    require.NotNil(t, tl.Entries[0].Percent)
    assert.InDelta(t, 50.0, *tl.Entries[0].Percent, 0.01)
}

func TestComputeTimeline_NoPositionWithoutSprintDates(t *testing.T) {
    // a dated issue in an undated sprint is overdue-checkable against today
    // but has no axis position; that must not read as 0%
    issues := []domain.Issue{{Key: "X-1", DueDate: date("2024-01-05")}}
    tl := ComputeTimeline(domain.Sprint{}, issues, day("2024-01-10"))
    require.Len(t, tl.Entries, 1)
    assert.Nil(t, tl.Entries[0].Percent)
    assert.True(t, tl.Entries[0].Overdue)
    assert.False(t, tl.Entries[0].NoDueDate)
}
