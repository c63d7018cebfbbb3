/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "time"

    "github.com/HamedShams/sprintdeck/internal/config"
    "github.com/HamedShams/sprintdeck/internal/domain"
    "github.com/HamedShams/sprintdeck/internal/repo"
    "github.com/HamedShams/sprintdeck/internal/view"
    "github.com/rs/zerolog"
)

type JiraClient interface {
    GetBoards(ctx context.Context, offset, limit int, query string) (domain.BoardPage, error)
    GetBoard(ctx context.Context, boardID int64) (domain.Board, error)
    GetSprintsForBoard(ctx context.Context, boardID int64) ([]domain.Sprint, error)
    GetBoardIssues(ctx context.Context, boardID int64, assignee string) ([]domain.Issue, error)
    GetSprintIssues(ctx context.Context, boardID, sprintID int64, assignee string) ([]domain.Issue, error)
    GetBacklogIssues(ctx context.Context, boardID int64, assignee string) ([]domain.Issue, error)
    GetIssueComments(ctx context.Context, key string) ([]domain.Comment, error)
}

type LLM interface {
    Enabled() bool
    SummarizeSprint(ctx context.Context, sprint domain.Sprint, groups []domain.StatusGroup) (string, error)
}

// Service composes board views from Jira fetches. Every BoardView call builds
// a fresh BoardViewState; the latest snapshot per board is kept for the warmer
// and for cached reads, and is only replaced, never patched.
type Service struct {
    cfg  config.Config
    log  zerolog.Logger
    repo *repo.Repository // optional audit log, may be nil
    jira JiraClient
    llm  LLM

    mu     sync.Mutex
    gens   map[int64]uint64
    latest map[int64]*domain.BoardViewState
}

func New(cfg config.Config, log zerolog.Logger, r *repo.Repository, jira JiraClient, llm LLM) *Service {
    return &Service{cfg: cfg, log: log, repo: r, jira: jira, llm: llm,
        gens: map[int64]uint64{}, latest: map[int64]*domain.BoardViewState{}}
}

func (s *Service) Boards(ctx context.Context, offset, limit int, query string) (domain.BoardPage, error) {
    return s.jira.GetBoards(ctx, offset, limit, query)
}

// nextGen bumps the board's refresh generation. A refresh whose generation is
// no longer current when it completes lost the race to a newer one and must
// not publish its snapshot.
func (s *Service) nextGen(boardID int64) uint64 {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.gens[boardID]++
    return s.gens[boardID]
}

// storeLatest publishes the snapshot unless a newer refresh of the board
// started after this one. The caller keeps its own result either way; the
// guard only protects the shared snapshot from being overwritten backwards.
func (s *Service) storeLatest(boardID int64, gen uint64, state *domain.BoardViewState) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.gens[boardID] != gen {
        s.log.Debug().Int64("board", boardID).Uint64("gen", gen).Msg("view: stale snapshot not published")
        return
    }
    s.latest[boardID] = state
}

// LatestView returns the most recently published snapshot for the board, nil
// when none has completed yet.
func (s *Service) LatestView(boardID int64) *domain.BoardViewState {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.latest[boardID]
}

// BoardView runs the fetch-and-group pipeline for one board and one set of
// filter criteria.
func (s *Service) BoardView(ctx context.Context, boardID int64, criteria domain.FilterCriteria) (*domain.BoardViewState, error) {
    gen := s.nextGen(boardID)

    board, err := s.jira.GetBoard(ctx, boardID)
    if err != nil { return nil, err }
    mode := domain.SelectView(criteria.Tab, board.Type)

    var auditID int64
    if s.repo != nil {
        if id, err := s.repo.StartRefresh(ctx, boardID, string(mode)); err == nil { auditID = id }
    }

    state := &domain.BoardViewState{Board: board, Mode: mode, Criteria: criteria, Generation: gen}
    var sprintCount, issueCount int
    switch mode {
    case domain.ViewBoard:
        issueCount, err = s.composeBoard(ctx, boardID, criteria, state)
    case domain.ViewBacklog:
        sprintCount, issueCount, err = s.composeBacklog(ctx, boardID, criteria, state)
    case domain.ViewTimeline:
        sprintCount, issueCount, err = s.composeTimeline(ctx, boardID, criteria, state)
    }

    if s.repo != nil && auditID != 0 {
        errStr := ""
        if err != nil { errStr = err.Error() }
        _ = s.repo.FinishRefresh(ctx, auditID, sprintCount, issueCount, err == nil, errStr)
    }
    if err != nil { return nil, err }

    state.FetchedAt = time.Now().UTC()
    s.storeLatest(boardID, gen, state)
    return state, nil
}

func (s *Service) composeBoard(ctx context.Context, boardID int64, criteria domain.FilterCriteria, state *domain.BoardViewState) (int, error) {
    issues, err := s.jira.GetBoardIssues(ctx, boardID, criteria.Assignee)
    if err != nil { return 0, err }
    filtered := view.Filter(issues, criteria)
    state.StatusGroups = view.GroupByStatus(filtered)
    return len(filtered), nil
}

func (s *Service) composeBacklog(ctx context.Context, boardID int64, criteria domain.FilterCriteria, state *domain.BoardViewState) (int, int, error) {
    sprints, err := s.jira.GetSprintsForBoard(ctx, boardID)
    if err != nil { return 0, 0, err }
    active := activeSprint(sprints)
    state.Sprints = sprints
    state.ActiveSprint = active

    // one sequential fetch per shown sprint; a failed sprint contributes zero
    // items instead of aborting the whole view
    var pool []domain.Issue
    for _, sp := range sprints {
        if sp.State != domain.SprintStateActive && sp.State != domain.SprintStateFuture { continue }
        items, err := s.jira.GetSprintIssues(ctx, boardID, sp.ID, criteria.Assignee)
        if err != nil {
            s.log.Error().Err(err).Int64("board", boardID).Int64("sprint", sp.ID).Msg("view: sprint issues fetch failed")
            continue
        }
        pool = append(pool, items...)
    }
    backlog, err := s.jira.GetBacklogIssues(ctx, boardID, criteria.Assignee)
    if err != nil {
        s.log.Error().Err(err).Int64("board", boardID).Msg("view: backlog fetch failed")
        backlog = nil
    }

    filtered := view.Filter(pool, criteria)
    state.SprintGroups = view.GroupForBacklog(filtered, backlog, sprints, active, criteria)
    total := 0
    for _, g := range state.SprintGroups { total += len(g.Items) }
    return len(sprints), total, nil
}

func (s *Service) composeTimeline(ctx context.Context, boardID int64, criteria domain.FilterCriteria, state *domain.BoardViewState) (int, int, error) {
    sprints, err := s.jira.GetSprintsForBoard(ctx, boardID)
    if err != nil { return 0, 0, err }
    active := activeSprint(sprints)
    state.Sprints = sprints
    state.ActiveSprint = active
    if active == nil {
        state.Timeline = &domain.Timeline{}
        return len(sprints), 0, nil
    }
    issues, err := s.jira.GetSprintIssues(ctx, boardID, active.ID, criteria.Assignee)
    if err != nil { return len(sprints), 0, err }
    filtered := view.Filter(issues, criteria)
    tl := view.ComputeTimeline(*active, filtered, time.Now())
    state.Timeline = &tl
    return len(sprints), len(filtered), nil
}

func activeSprint(sprints []domain.Sprint) *domain.Sprint {
    for i := range sprints {
        if sprints[i].State == domain.SprintStateActive { return &sprints[i] }
    }
    return nil
}

// IssueComments fetches and threads one issue's comments, independent of any
// board view.
func (s *Service) IssueComments(ctx context.Context, key string) ([]*domain.CommentNode, error) {
    comments, err := s.jira.GetIssueComments(ctx, key)
    if err != nil { return nil, err }
    return view.BuildThread(comments), nil
}

// SprintSummary builds an LLM progress summary for one sprint on a board.
func (s *Service) SprintSummary(ctx context.Context, boardID, sprintID int64) (string, error) {
    if s.llm == nil || !s.llm.Enabled() { return "", errors.New("summary: llm not configured") }
    sprints, err := s.jira.GetSprintsForBoard(ctx, boardID)
    if err != nil { return "", err }
    var target *domain.Sprint
    for i := range sprints {
        if sprints[i].ID == sprintID { target = &sprints[i]; break }
    }
    if target == nil { return "", fmt.Errorf("summary: sprint %d not on board %d", sprintID, boardID) }
    issues, err := s.jira.GetSprintIssues(ctx, boardID, sprintID, domain.AssigneeAll)
    if err != nil { return "", err }
    groups := view.GroupByStatus(view.Filter(issues, domain.FilterCriteria{}))
    return s.llm.SummarizeSprint(ctx, *target, groups)
}

// WarmBoards refreshes the configured boards' backlog views, re-priming the
// published snapshots; used by the cron warmer and after mutations.
func (s *Service) WarmBoards(ctx context.Context) error {
    var lastErr error
    for _, id := range s.cfg.WarmBoardIDs {
        criteria := domain.FilterCriteria{Assignee: domain.AssigneeAll, Tab: string(domain.ViewBacklog)}
        if _, err := s.BoardView(ctx, id, criteria); err != nil {
            s.log.Error().Err(err).Int64("board", id).Msg("warm: board refresh failed")
            lastErr = err
        }
    }
    return lastErr
}

func (s *Service) LastRefresh(ctx context.Context) (any, error) {
    if s.repo == nil { return nil, errors.New("audit log disabled") }
    return s.repo.LastRefresh(ctx)
}
