package jobs

import (
    "context"
    "time"

    "github.com/HamedShams/sprintdeck/internal/config"
    "github.com/HamedShams/sprintdeck/internal/repo"
    "github.com/robfig/cron/v3"
    "github.com/rs/zerolog"
)

type service interface {
    WarmBoards(ctx context.Context) error
}

// Cron periodically re-warms configured boards so cached reads after idle hit
// a freshly published snapshot instead of a cold Jira round trip.
type Cron struct {
    cfg  config.Config
    log  zerolog.Logger
    svc  service
    repo *repo.Repository // optional, locks skipped when nil
    c    *cron.Cron
}

func NewCron(cfg config.Config, log zerolog.Logger, svc service, r *repo.Repository) *Cron {
    loc, err := time.LoadLocation(cfg.TZ)
    if err != nil { loc = time.UTC }
    c := cron.New(cron.WithLocation(loc), cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)))
    cr := &Cron{cfg: cfg, log: log, svc: svc, repo: r, c: c}
    if cfg.WarmCron != "" {
        _, _ = c.AddFunc(cfg.WarmCron, cr.warm)
    }
    return cr
}

func (cr *Cron) Start() { cr.c.Start() }
func (cr *Cron) Stop()  { cr.c.Stop() }

func (cr *Cron) warm() {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
    defer cancel()
    if cr.repo != nil {
        const lockKey int64 = 515151
        ok, err := cr.repo.TryAdvisoryLock(ctx, lockKey)
        if err != nil { cr.log.Error().Err(err).Msg("cron: lock error"); return }
        if !ok { cr.log.Info().Msg("cron: already running elsewhere"); return }
        defer func() { _ = cr.repo.AdvisoryUnlock(context.Background(), lockKey) }()
    }
    cr.log.Info().Msg("cron: warm boards")
    if err := cr.svc.WarmBoards(ctx); err != nil { cr.log.Error().Err(err).Msg("cron: warm failed") }
}
