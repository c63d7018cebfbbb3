/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "context"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/HamedShams/sprintdeck/internal/adapters/jira"
    "github.com/HamedShams/sprintdeck/internal/adapters/openai"
    "github.com/HamedShams/sprintdeck/internal/adapters/telegram"
    "github.com/HamedShams/sprintdeck/internal/config"
    "github.com/HamedShams/sprintdeck/internal/http"
    "github.com/HamedShams/sprintdeck/internal/jobs"
    "github.com/HamedShams/sprintdeck/internal/logger"
    "github.com/HamedShams/sprintdeck/internal/repo"
    "github.com/HamedShams/sprintdeck/internal/services"
)

func main() {
    cfg := config.Load()
    log := logger.New(cfg)
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    // DB is optional: without a DSN the service runs without the refresh audit log
    var repository *repo.Repository
    if cfg.DBDSN != "" {
        db := repo.MustOpen(ctx, cfg, log)
        defer db.Close()
        repository = repo.NewRepository(db, log)
    } else {
        log.Warn().Msg("DB_DSN not set; refresh audit log disabled")
    }

    // Adapters
    jc := jira.NewClient(cfg, log)
    llm := openai.NewClient(cfg, log)
    tg := telegram.NewClient(cfg, log)

    // Services
    svc := services.New(cfg, log, repository, jc, llm)
    sprints := services.NewSprintController(cfg, log, jc, tg, func(ctx context.Context) {
        // mutations invalidate whatever the client cached; the warmer re-primes
        // configured boards so the next view request is not cold
        if err := svc.WarmBoards(ctx); err != nil {
            log.Error().Err(err).Msg("post-mutation refresh failed")
        }
    })

    // HTTP server (Gin)
    h := http.NewHandlers(cfg, log, svc, sprints)
    router := http.NewRouter(cfg, log, h)

    // Cron warmer
    cron := jobs.NewCron(cfg, log, svc, repository)
    cron.Start()
    defer cron.Stop()

    // graceful shutdown
    errCh := make(chan error, 1)
    go func() { errCh <- router.Run(cfg.HTTPAddr) }()

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

    select {
    case <-sigCh:
        log.Info().Msg("shutting down...")
    case err := <-errCh:
        if err != nil { log.Error().Err(err).Msg("http server error") }
    }

    time.Sleep(500 * time.Millisecond)
}
