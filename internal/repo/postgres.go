/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package repo

import (
    "context"
    "errors"
    "time"

    "github.com/HamedShams/sprintdeck/internal/config"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/rs/zerolog"
)

type DB struct {
    Pool *pgxpool.Pool
    log  zerolog.Logger
}

func MustOpen(ctx context.Context, cfg config.Config, logger zerolog.Logger) *DB {
    pool, err := pgxpool.New(ctx, cfg.DBDSN)
    if err != nil { logger.Fatal().Err(err).Msg("db connect failed") }
    ctx2, cancel := context.WithTimeout(ctx, 10*time.Second)
    defer cancel()
    if err := pool.Ping(ctx2); err != nil { logger.Fatal().Err(err).Msg("db ping failed") }
    return &DB{Pool: pool, log: logger}
}

func (d *DB) Close() { d.Pool.Close() }

// Repository is an operational audit log of refresh runs; view data itself is
// never persisted here.
type Repository struct {
    db  *DB
    log zerolog.Logger
}

func NewRepository(d *DB, logger zerolog.Logger) *Repository { return &Repository{db: d, log: logger} }

func (r *Repository) TryAdvisoryLock(ctx context.Context, key int64) (bool, error) {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok)
    return ok, err
}

func (r *Repository) AdvisoryUnlock(ctx context.Context, key int64) error {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok)
    if !ok && err == nil { return errors.New("advisory unlock returned false") }
    return err
}

type RefreshRun struct {
    ID         int64      `json:"id"`
    BoardID    int64      `json:"board_id"`
    Tab        string     `json:"tab"`
    StartedAt  time.Time  `json:"started_at"`
    FinishedAt *time.Time `json:"finished_at"`
    Sprints    int        `json:"sprints"`
    Issues     int        `json:"issues"`
    Success    bool       `json:"success"`
    Error      string     `json:"error"`
}

func (r *Repository) StartRefresh(ctx context.Context, boardID int64, tab string) (int64, error) {
    const q = `INSERT INTO refresh_runs(board_id, tab, started_at, success) VALUES($1, $2, now(), false) RETURNING id`
    var id int64
    if err := r.db.Pool.QueryRow(ctx, q, boardID, tab).Scan(&id); err != nil { return 0, err }
    return id, nil
}

func (r *Repository) FinishRefresh(ctx context.Context, id int64, sprints, issues int, success bool, errStr string) error {
    const q = `UPDATE refresh_runs SET finished_at=now(), sprints=$2, issues=$3, success=$4, error=$5 WHERE id=$1`
    _, err := r.db.Pool.Exec(ctx, q, id, sprints, issues, success, errStr)
    return err
}

func (r *Repository) LastRefresh(ctx context.Context) (*RefreshRun, error) {
    const q = `SELECT id, board_id, tab, started_at, finished_at, coalesce(sprints,0), coalesce(issues,0),
        coalesce(success,false), coalesce(error,'') FROM refresh_runs ORDER BY id DESC LIMIT 1`
    row := r.db.Pool.QueryRow(ctx, q)
    rr := &RefreshRun{}
    if err := row.Scan(&rr.ID, &rr.BoardID, &rr.Tab, &rr.StartedAt, &rr.FinishedAt, &rr.Sprints, &rr.Issues, &rr.Success, &rr.Error); err != nil {
        return nil, err
    }
    return rr, nil
}
