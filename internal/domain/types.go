package domain

import "time"

// Board / sprint states as Jira reports them.
const (
    BoardTypeScrum  = "scrum"
    BoardTypeKanban = "kanban"

    SprintStateActive = "active"
    SprintStateFuture = "future"
    SprintStateClosed = "closed"
)

type Board struct {
    ID   int64  `json:"id"`
    Name string `json:"name"`
    Type string `json:"type"`
}

type BoardPage struct {
    Boards []Board `json:"boards"`
    Total  int     `json:"total"`
    IsLast bool    `json:"isLast"`
}

type Sprint struct {
    ID        int64      `json:"id"`
    Name      string     `json:"name"`
    State     string     `json:"state"`
    StartDate *time.Time `json:"startDate,omitempty"`
    EndDate   *time.Time `json:"endDate,omitempty"`
    Goal      string     `json:"goal,omitempty"`
}

// SprintRef is the single current sprint membership carried on an issue.
// Jira may report the membership as a list of historical sprints; the adapter
// normalizes that to the most relevant entry before it reaches this type.
type SprintRef struct {
    ID    int64  `json:"id"`
    Name  string `json:"name"`
    State string `json:"state,omitempty"`
}

type Issue struct {
    Key            string     `json:"key"`
    Summary        string     `json:"summary"`
    Type           string     `json:"type"`
    Status         string     `json:"status"`
    StatusCategory string     `json:"statusCategory,omitempty"` // new|indeterminate|done or empty
    Assignee       string     `json:"assignee,omitempty"`       // accountId
    AssigneeName   string     `json:"assigneeName,omitempty"`
    Priority       string     `json:"priority,omitempty"`
    DueDate        *time.Time `json:"dueDate,omitempty"`
    Sprint         *SprintRef `json:"sprint,omitempty"`
}

type Comment struct {
    ID         string    `json:"id"`
    Author     string    `json:"author"` // accountId
    AuthorName string    `json:"authorName,omitempty"`
    Body       string    `json:"body"`
    Created    time.Time `json:"created"`
    ParentID   string    `json:"parentId,omitempty"`
}

// CommentNode is a comment plus its reconstructed replies.
type CommentNode struct {
    Comment
    Replies []*CommentNode `json:"replies"`
}

// Assignee filter sentinels; any other value is an accountId.
const (
    AssigneeAll        = "all"
    AssigneeUnassigned = "unassigned"
)

type FilterCriteria struct {
    SearchQuery string `json:"searchQuery"`
    Assignee    string `json:"assignee"`
    Tab         string `json:"tab"`
}

// ViewMode is the grouping engine selected for a board view.
type ViewMode string

const (
    ViewBoard    ViewMode = "board"
    ViewBacklog  ViewMode = "backlog"
    ViewTimeline ViewMode = "timeline"
)

// SelectView dispatches tab + board type to a view mode. Kanban boards have no
// sprints, so they always take the board path regardless of the requested tab.
func SelectView(tab, boardType string) ViewMode {
    if boardType == BoardTypeKanban { return ViewBoard }
    switch tab {
    case string(ViewBacklog):
        return ViewBacklog
    case string(ViewTimeline):
        return ViewTimeline
    default:
        return ViewBoard
    }
}

// StatusGroup is one column of the board view.
type StatusGroup struct {
    Status         string  `json:"status"`
    StatusCategory string  `json:"statusCategory"`
    Items          []Issue `json:"items"`
}

// SprintGroup is one section of the backlog view. SprintID is nil for the
// trailing backlog group.
type SprintGroup struct {
    SprintName string     `json:"sprintName"`
    SprintID   *int64     `json:"sprintId"`
    StartDate  *time.Time `json:"startDate,omitempty"`
    EndDate    *time.Time `json:"endDate,omitempty"`
    Items      []Issue    `json:"items"`
}

// TimelineEntry positions one issue on the sprint's date axis. Percent is nil
// when the sprint carries no usable date range; a real 0 means the due date
// sits on the sprint start.
type TimelineEntry struct {
    Key       string   `json:"key"`
    Percent   *float64 `json:"percent,omitempty"`
    Overdue   bool     `json:"overdue"`
    NoDueDate bool     `json:"noDueDate"`
}

type Timeline struct {
    SprintProgressPercent *float64        `json:"sprintProgressPercent"`
    Entries               []TimelineEntry `json:"entries"`
}

// BoardViewState is the composed result of one fetch cycle. It is built once
// per refresh and replaced wholesale, never patched in place.
type BoardViewState struct {
    Board        Board          `json:"board"`
    Mode         ViewMode       `json:"mode"`
    Criteria     FilterCriteria `json:"criteria"`
    Sprints      []Sprint       `json:"sprints,omitempty"`
    ActiveSprint *Sprint        `json:"activeSprint,omitempty"`
    StatusGroups []StatusGroup  `json:"statusGroups,omitempty"`
    SprintGroups []SprintGroup  `json:"sprintGroups,omitempty"`
    Timeline     *Timeline      `json:"timeline,omitempty"`
    Generation   uint64         `json:"generation"`
    FetchedAt    time.Time      `json:"fetchedAt"`
}
