/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "sync"
    "time"

    "github.com/HamedShams/sprintdeck/internal/config"
    "github.com/HamedShams/sprintdeck/internal/domain"
    "github.com/oklog/ulid/v2"
    "github.com/rs/zerolog"
)

type SprintWriter interface {
    CreateSprint(ctx context.Context, boardID int64, name, goal string, start, end time.Time) (domain.Sprint, error)
    UpdateSprint(ctx context.Context, sprintID int64, name, goal string, start, end *time.Time) (domain.Sprint, error)
    DeleteSprint(ctx context.Context, sprintID int64) error
    CompleteSprint(ctx context.Context, sprintID int64) error
}

type Notifier interface {
    SendMessage(ctx context.Context, chatID int64, text string) error
    SendMessagePlain(ctx context.Context, chatID int64, text string) error
}

// ValidationError is a pre-flight rejection: nothing was sent to Jira and no
// state changed. Surfaced to the user as a warning, not an error.
type ValidationError struct {
    Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

var (
    ErrOperationInFlight    = errors.New("sprint operation already in flight")
    ErrUnknownDeleteRequest = errors.New("unknown or expired delete request")
)

// DeleteRequest is the first half of the two-phase delete: it names the sprint
// so a caller can render a confirmation, and carries the token that
// ConfirmDelete requires. The destructive call never happens without it.
type DeleteRequest struct {
    Token      string    `json:"token"`
    SprintID   int64     `json:"sprintId"`
    SprintName string    `json:"sprintName"`
    RequestedAt time.Time `json:"requestedAt"`
}

// SprintController runs sprint mutations against Jira. Every successful
// mutation invokes the caller-supplied refresh callback so dependent issue
// collections are re-fetched; nothing is patched locally. Each operation kind
// carries an in-flight guard.
type SprintController struct {
    cfg       config.Config
    log       zerolog.Logger
    jira      SprintWriter
    tg        Notifier // optional, may be nil
    onSuccess func(ctx context.Context)

    mu       sync.Mutex
    inFlight map[string]bool
    pending  map[string]DeleteRequest
}

func NewSprintController(cfg config.Config, log zerolog.Logger, jira SprintWriter, tg Notifier, onSuccess func(ctx context.Context)) *SprintController {
    if onSuccess == nil { onSuccess = func(context.Context) {} }
    return &SprintController{
        cfg:       cfg,
        log:       log,
        jira:      jira,
        tg:        tg,
        onSuccess: onSuccess,
        inFlight:  map[string]bool{},
        pending:   map[string]DeleteRequest{},
    }
}

func (c *SprintController) begin(kind string) error {
    c.mu.Lock()
    defer c.mu.Unlock()
    if c.inFlight[kind] { return ErrOperationInFlight }
    c.inFlight[kind] = true
    return nil
}

func (c *SprintController) end(kind string) {
    c.mu.Lock()
    defer c.mu.Unlock()
    delete(c.inFlight, kind)
}

func validateCreate(name string, start, end *time.Time) error {
    if strings.TrimSpace(name) == "" { return &ValidationError{Reason: "sprint name is required"} }
    if start == nil { return &ValidationError{Reason: "sprint start date is required"} }
    if end == nil { return &ValidationError{Reason: "sprint end date is required"} }
    if !start.Before(*end) { return &ValidationError{Reason: "sprint start date must be before end date"} }
    return nil
}

func (c *SprintController) Create(ctx context.Context, boardID int64, name, goal string, start, end *time.Time) (domain.Sprint, error) {
    if err := validateCreate(name, start, end); err != nil { return domain.Sprint{}, err }
    if err := c.begin("create"); err != nil { return domain.Sprint{}, err }
    defer c.end("create")
    sp, err := c.jira.CreateSprint(ctx, boardID, strings.TrimSpace(name), goal, *start, *end)
    if err != nil {
        c.log.Error().Err(err).Int64("board", boardID).Msg("sprint: create failed")
        return domain.Sprint{}, err
    }
    c.log.Info().Int64("board", boardID).Int64("sprint", sp.ID).Str("name", sp.Name).Msg("sprint: created")
    c.onSuccess(ctx)
    c.notify(ctx, fmt.Sprintf("Sprint *%s* created", sp.Name))
    return sp, nil
}

func (c *SprintController) Update(ctx context.Context, sprintID int64, name, goal string, start, end *time.Time) (domain.Sprint, error) {
    if start != nil && end != nil && !start.Before(*end) {
        return domain.Sprint{}, &ValidationError{Reason: "sprint start date must be before end date"}
    }
    if err := c.begin("update"); err != nil { return domain.Sprint{}, err }
    defer c.end("update")
    sp, err := c.jira.UpdateSprint(ctx, sprintID, name, goal, start, end)
    if err != nil {
        c.log.Error().Err(err).Int64("sprint", sprintID).Msg("sprint: update failed")
        return domain.Sprint{}, err
    }
    c.onSuccess(ctx)
    return sp, nil
}

// RequestDelete registers intent to delete and returns the confirmation the
// caller must echo back. No network call happens here.
func (c *SprintController) RequestDelete(sprint domain.Sprint) DeleteRequest {
    req := DeleteRequest{
        Token:       ulid.Make().String(),
        SprintID:    sprint.ID,
        SprintName:  sprint.Name,
        RequestedAt: time.Now().UTC(),
    }
    c.mu.Lock()
    c.pending[req.Token] = req
    c.mu.Unlock()
    return req
}

func (c *SprintController) ConfirmDelete(ctx context.Context, token string) error {
    c.mu.Lock()
    req, ok := c.pending[token]
    if ok { delete(c.pending, token) }
    c.mu.Unlock()
    if !ok { return ErrUnknownDeleteRequest }
    if err := c.begin("delete"); err != nil { return err }
    defer c.end("delete")
    if err := c.jira.DeleteSprint(ctx, req.SprintID); err != nil {
        c.log.Error().Err(err).Int64("sprint", req.SprintID).Msg("sprint: delete failed")
        return err
    }
    c.log.Info().Int64("sprint", req.SprintID).Str("name", req.SprintName).Msg("sprint: deleted")
    c.onSuccess(ctx)
    c.notify(ctx, fmt.Sprintf("Sprint *%s* deleted", req.SprintName))
    return nil
}

func (c *SprintController) Complete(ctx context.Context, sprintID int64) error {
    if err := c.begin("complete"); err != nil { return err }
    defer c.end("complete")
    if err := c.jira.CompleteSprint(ctx, sprintID); err != nil {
        c.log.Error().Err(err).Int64("sprint", sprintID).Msg("sprint: complete failed")
        return err
    }
    c.log.Info().Int64("sprint", sprintID).Msg("sprint: completed")
    c.onSuccess(ctx)
    c.notify(ctx, fmt.Sprintf("Sprint %d completed", sprintID))
    return nil
}

func (c *SprintController) notify(ctx context.Context, text string) {
    if c.tg == nil { return }
    for _, chat := range c.cfg.TelegramChatIDs {
        if err := c.tg.SendMessage(ctx, chat, text); err == nil { continue }
        // Telegram rejects bad Markdown with 400; the plain rendition still
        // gets the word out
        if err := c.tg.SendMessagePlain(ctx, chat, strings.ReplaceAll(text, "*", "")); err != nil {
            c.log.Error().Err(err).Int64("chat", chat).Msg("sprint: notify failed")
        }
    }
}
