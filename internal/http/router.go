/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "github.com/HamedShams/sprintdeck/internal/config"
    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog"
)

func NewRouter(cfg config.Config, log zerolog.Logger, h *Handlers) *gin.Engine {
    if cfg.AppEnv != "dev" { gin.SetMode(gin.ReleaseMode) }
    r := gin.New()
    r.Use(gin.Recovery())
    r.Use(func(c *gin.Context) {
        c.Next()
        log.Info().Str("m", c.Request.Method).Str("p", c.FullPath()).Int("s", c.Writer.Status()).Msg("http")
    })

    r.GET("/healthz", h.Healthz)
    r.GET("/boards", h.Boards)
    r.GET("/boards/:id/view", h.BoardView)
    r.POST("/boards/:id/sprints", h.CreateSprint)
    r.PUT("/sprints/:id", h.UpdateSprint)
    r.POST("/sprints/:id/complete", h.CompleteSprint)
    r.POST("/sprints/:id/delete-request", h.RequestDeleteSprint)
    r.POST("/sprints/delete-confirm", h.ConfirmDeleteSprint)
    r.POST("/sprints/:id/summary", h.SprintSummary)
    r.GET("/issues/:key/comments", h.IssueComments)
    r.GET("/admin/last-refresh", h.LastRefresh)

    return r
}
