package domain

import "testing"

func TestSelectView(t *testing.T) {
    cases := []struct {
        tab, boardType string
        want           ViewMode
    }{
        {"board", BoardTypeScrum, ViewBoard},
        {"backlog", BoardTypeScrum, ViewBacklog},
        {"timeline", BoardTypeScrum, ViewTimeline},
        {"", BoardTypeScrum, ViewBoard},
        {"nonsense", BoardTypeScrum, ViewBoard},
        {"backlog", BoardTypeKanban, ViewBoard},
        {"timeline", BoardTypeKanban, ViewBoard},
        {"", BoardTypeKanban, ViewBoard},
    }
    for _, tc := range cases {
        if got := SelectView(tc.tab, tc.boardType); got != tc.want {
            t.Errorf("SelectView(%q, %q) = %q, want %q", tc.tab, tc.boardType, got, tc.want)
        }
    }
}
