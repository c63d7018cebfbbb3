package view

import (
    "strconv"
    "testing"

    "github.com/HamedShams/sprintdeck/internal/domain"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestBuildThread_NestsRepliesInFirstSeenOrder(t *testing.T) {
    comments := []domain.Comment{
        {ID: "1", Body: "root one"},
        {ID: "2", ParentID: "1", Body: "first reply"},
        {ID: "3", Body: "root two"},
        {ID: "4", ParentID: "1", Body: "second reply"},
        {ID: "5", ParentID: "2", Body: "nested"},
    }
    roots := BuildThread(comments)
    require.Len(t, roots, 2)
    assert.Equal(t, "1", roots[0].ID)
    assert.Equal(t, "3", roots[1].ID)
    require.Len(t, roots[0].Replies, 2)
    assert.Equal(t, "2", roots[0].Replies[0].ID)
    assert.Equal(t, "4", roots[0].Replies[1].ID)
    require.Len(t, roots[0].Replies[0].Replies, 1)
    assert.Equal(t, "5", roots[0].Replies[0].Replies[0].ID)
}

func TestBuildThread_OrphanParentBecomesRoot(t *testing.T) {
    comments := []domain.Comment{{ID: "2", ParentID: "999"}}
    roots := BuildThread(comments)
    require.Len(t, roots, 1, "comments with a missing parent are never dropped")
    assert.Equal(t, "2", roots[0].ID)
    assert.Empty(t, roots[0].Replies)
}

func TestBuildThread_StoresBeyondPresentationCap(t *testing.T) {
    // a chain deeper than MaxThreadDepth stays fully intact in the tree;
    // flattening at the cap is the renderer's business
    var comments []domain.Comment
    comments = append(comments, domain.Comment{ID: "c0"})
    for i := 1; i < MaxThreadDepth+3; i++ {
        comments = append(comments, domain.Comment{
            ID:       nodeID(i),
            ParentID: nodeID(i - 1),
        })
    }
    roots := BuildThread(comments)
    require.Len(t, roots, 1)
    depth := 0
    for n := roots[0]; len(n.Replies) > 0; n = n.Replies[0] { depth++ }
    assert.Equal(t, MaxThreadDepth+2, depth)
}

func nodeID(i int) string { return "c" + strconv.Itoa(i) }

func TestBuildThread_EmptyInput(t *testing.T) {
    assert.Empty(t, BuildThread(nil))
}
