package jira

import (
    "context"
    "net/http"
    "net/http/httptest"
    "sync/atomic"
    "testing"
    "time"

    "github.com/HamedShams/sprintdeck/internal/config"
    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
    cfg := config.Config{JiraBaseURL: baseURL, JiraPAT: "token", HTTPTimeout: 5 * time.Second}
    return NewClient(cfg, zerolog.Nop())
}

func TestMutationsAreNeverRetried(t *testing.T) {
    var hits atomic.Int64
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        hits.Add(1)
        w.WriteHeader(http.StatusBadGateway)
    }))
    defer srv.Close()
    c := testClient(srv.URL)

    // a 502 may mean Jira applied the sprint and the response was lost;
    // replaying the POST would create a duplicate
    _, err := c.CreateSprint(context.Background(), 1, "Sprint 9", "",
        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
    require.Error(t, err)
    assert.Equal(t, int64(1), hits.Load(), "create must hit the server exactly once")

    hits.Store(0)
    require.Error(t, c.DeleteSprint(context.Background(), 31))
    assert.Equal(t, int64(1), hits.Load(), "delete must hit the server exactly once")

    hits.Store(0)
    require.Error(t, c.CompleteSprint(context.Background(), 31))
    assert.Equal(t, int64(1), hits.Load(), "complete must hit the server exactly once")
}

func TestReadsRetryOn5xx(t *testing.T) {
    var hits atomic.Int64
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if hits.Add(1) < 3 {
            w.WriteHeader(http.StatusBadGateway)
            return
        }
        w.Header().Set("Content-Type", "application/json")
        _, _ = w.Write([]byte(`{"id":7,"name":"DEV board","type":"scrum"}`))
    }))
    defer srv.Close()
    c := testClient(srv.URL)

    board, err := c.GetBoard(context.Background(), 7)
    require.NoError(t, err)
    assert.Equal(t, int64(3), hits.Load())
    assert.Equal(t, "DEV board", board.Name)
}

func TestNormalizeSprintRef(t *testing.T) {
    single := map[string]any{"id": float64(5), "name": "Sprint 5", "state": "active"}
    ref := normalizeSprintRef(single)
    require.NotNil(t, ref)
    assert.Equal(t, int64(5), ref.ID)

    // active-or-future wins over a later closed entry
    mixed := []any{
        map[string]any{"id": float64(1), "name": "Sprint 1", "state": "closed"},
        map[string]any{"id": float64(2), "name": "Sprint 2", "state": "active"},
        map[string]any{"id": float64(3), "name": "Sprint 3", "state": "closed"},
    }
    ref = normalizeSprintRef(mixed)
    require.NotNil(t, ref)
    assert.Equal(t, int64(2), ref.ID)

    // all closed: the last entry is the fallback
    closed := []any{
        map[string]any{"id": float64(1), "name": "Sprint 1", "state": "closed"},
        map[string]any{"id": float64(2), "name": "Sprint 2", "state": "closed"},
    }
    ref = normalizeSprintRef(closed)
    require.NotNil(t, ref)
    assert.Equal(t, int64(2), ref.ID)

    assert.Nil(t, normalizeSprintRef(nil))
    assert.Nil(t, normalizeSprintRef([]any{}))
}
