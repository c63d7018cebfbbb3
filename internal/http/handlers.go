/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/HamedShams/sprintdeck/internal/config"
    "github.com/HamedShams/sprintdeck/internal/domain"
    "github.com/HamedShams/sprintdeck/internal/services"
    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog"
)

type viewService interface {
    Boards(ctx context.Context, offset, limit int, query string) (domain.BoardPage, error)
    BoardView(ctx context.Context, boardID int64, criteria domain.FilterCriteria) (*domain.BoardViewState, error)
    LatestView(boardID int64) *domain.BoardViewState
    IssueComments(ctx context.Context, key string) ([]*domain.CommentNode, error)
    SprintSummary(ctx context.Context, boardID, sprintID int64) (string, error)
    LastRefresh(ctx context.Context) (any, error)
}

type sprintService interface {
    Create(ctx context.Context, boardID int64, name, goal string, start, end *time.Time) (domain.Sprint, error)
    Update(ctx context.Context, sprintID int64, name, goal string, start, end *time.Time) (domain.Sprint, error)
    RequestDelete(sprint domain.Sprint) services.DeleteRequest
    ConfirmDelete(ctx context.Context, token string) error
    Complete(ctx context.Context, sprintID int64) error
}

type Handlers struct {
    cfg     config.Config
    log     zerolog.Logger
    svc     viewService
    sprints sprintService
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc viewService, sprints sprintService) *Handlers {
    return &Handlers{cfg: cfg, log: log, svc: svc, sprints: sprints}
}

func (h *Handlers) Healthz(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) Boards(c *gin.Context) {
    offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
    limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
    page, err := h.svc.Boards(c.Request.Context(), offset, limit, c.Query("query"))
    if err != nil {
        c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, page)
}

func (h *Handlers) BoardView(c *gin.Context) {
    boardID, err := strconv.ParseInt(c.Param("id"), 10, 64)
    if err != nil || boardID <= 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid board id"})
        return
    }
    criteria := domain.FilterCriteria{
        SearchQuery: c.Query("q"),
        Assignee:    c.DefaultQuery("assignee", domain.AssigneeAll),
        Tab:         c.DefaultQuery("tab", string(domain.ViewBoard)),
    }
    // cached=true serves the warmer-primed snapshot without touching Jira;
    // the snapshot carries the criteria it was built with
    if c.Query("cached") == "true" {
        if state := h.svc.LatestView(boardID); state != nil {
            c.JSON(http.StatusOK, state)
            return
        }
    }
    state, err := h.svc.BoardView(c.Request.Context(), boardID, criteria)
    if err != nil {
        c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, state)
}

func (h *Handlers) IssueComments(c *gin.Context) {
    key := c.Param("key")
    thread, err := h.svc.IssueComments(c.Request.Context(), key)
    if err != nil {
        c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"comments": thread})
}

type sprintBody struct {
    BoardID   int64  `json:"boardId"`
    Name      string `json:"name"`
    Goal      string `json:"goal"`
    StartDate string `json:"startDate"`
    EndDate   string `json:"endDate"`
}

func parseISO(s string) *time.Time {
    if s == "" { return nil }
    if t, err := time.Parse(time.RFC3339, s); err == nil { return &t }
    if t, err := time.Parse("2006-01-02", s); err == nil { return &t }
    return nil
}

func (h *Handlers) CreateSprint(c *gin.Context) {
    boardID, err := strconv.ParseInt(c.Param("id"), 10, 64)
    if err != nil || boardID <= 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid board id"})
        return
    }
    var body sprintBody
    if err := c.ShouldBindJSON(&body); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
        return
    }
    sp, err := h.sprints.Create(c.Request.Context(), boardID, body.Name, body.Goal, parseISO(body.StartDate), parseISO(body.EndDate))
    if err != nil {
        h.writeSprintError(c, err)
        return
    }
    c.JSON(http.StatusCreated, sp)
}

func (h *Handlers) UpdateSprint(c *gin.Context) {
    sprintID, err := strconv.ParseInt(c.Param("id"), 10, 64)
    if err != nil || sprintID <= 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sprint id"})
        return
    }
    var body sprintBody
    if err := c.ShouldBindJSON(&body); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
        return
    }
    sp, err := h.sprints.Update(c.Request.Context(), sprintID, body.Name, body.Goal, parseISO(body.StartDate), parseISO(body.EndDate))
    if err != nil {
        h.writeSprintError(c, err)
        return
    }
    c.JSON(http.StatusOK, sp)
}

func (h *Handlers) RequestDeleteSprint(c *gin.Context) {
    sprintID, err := strconv.ParseInt(c.Param("id"), 10, 64)
    if err != nil || sprintID <= 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sprint id"})
        return
    }
    var body struct {
        Name string `json:"name"`
    }
    _ = c.ShouldBindJSON(&body)
    req := h.sprints.RequestDelete(domain.Sprint{ID: sprintID, Name: body.Name})
    c.JSON(http.StatusOK, req)
}

func (h *Handlers) ConfirmDeleteSprint(c *gin.Context) {
    var body struct {
        Token string `json:"token"`
    }
    if err := c.ShouldBindJSON(&body); err != nil || body.Token == "" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "missing confirmation token"})
        return
    }
    if err := h.sprints.ConfirmDelete(c.Request.Context(), body.Token); err != nil {
        if errors.Is(err, services.ErrUnknownDeleteRequest) {
            c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
            return
        }
        h.writeSprintError(c, err)
        return
    }
    c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handlers) CompleteSprint(c *gin.Context) {
    sprintID, err := strconv.ParseInt(c.Param("id"), 10, 64)
    if err != nil || sprintID <= 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sprint id"})
        return
    }
    if err := h.sprints.Complete(c.Request.Context(), sprintID); err != nil {
        h.writeSprintError(c, err)
        return
    }
    c.JSON(http.StatusOK, gin.H{"completed": true})
}

func (h *Handlers) SprintSummary(c *gin.Context) {
    sprintID, err := strconv.ParseInt(c.Param("id"), 10, 64)
    if err != nil || sprintID <= 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sprint id"})
        return
    }
    boardID, err := strconv.ParseInt(c.Query("boardId"), 10, 64)
    if err != nil || boardID <= 0 {
        c.JSON(http.StatusBadRequest, gin.H{"error": "boardId query parameter required"})
        return
    }
    summary, err := h.svc.SprintSummary(c.Request.Context(), boardID, sprintID)
    if err != nil {
        c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (h *Handlers) LastRefresh(c *gin.Context) {
    lr, err := h.svc.LastRefresh(c.Request.Context())
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, lr)
}

// writeSprintError maps the error taxonomy: validation problems are warnings
// that never reached Jira, in-flight collisions are conflicts, the rest are
// upstream failures surfaced verbatim.
func (h *Handlers) writeSprintError(c *gin.Context, err error) {
    var ve *services.ValidationError
    if errors.As(err, &ve) {
        c.JSON(http.StatusBadRequest, gin.H{"warning": ve.Reason})
        return
    }
    if errors.Is(err, services.ErrOperationInFlight) {
        c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}
