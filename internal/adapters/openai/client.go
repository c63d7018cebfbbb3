/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package openai

import (
    "context"
    "encoding/json"
    "errors"
    "strings"

    "github.com/HamedShams/sprintdeck/internal/config"
    "github.com/HamedShams/sprintdeck/internal/domain"
    openai "github.com/openai/openai-go/v2"
    "github.com/openai/openai-go/v2/option"
    "github.com/openai/openai-go/v2/shared"
    "github.com/rs/zerolog"
)

type Client struct {
    key   string
    model string
    cli   openai.Client
    log   zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    model := cfg.OpenAIModel
    if strings.TrimSpace(model) == "" { model = "gpt-4.1-mini" }
    cli := openai.NewClient(option.WithAPIKey(cfg.OpenAIKey))
    return &Client{key: cfg.OpenAIKey, model: model, cli: cli, log: log}
}

func (c *Client) Enabled() bool { return strings.TrimSpace(c.key) != "" }

// SummarizeSprint produces a short plain-text summary of a sprint from its
// status groups.
func (c *Client) SummarizeSprint(ctx context.Context, sprint domain.Sprint, groups []domain.StatusGroup) (string, error) {
    if !c.Enabled() { return "", errors.New("openai: missing key") }
    c.log.Info().Str("model", c.model).Int64("sprint", sprint.ID).Msg("openai SummarizeSprint call")
    payload := map[string]any{"sprint": sprint, "groups": groups}
    userContent := ""
    if b, err := json.Marshal(payload); err == nil { userContent = string(b) }
    params := openai.ChatCompletionNewParams{
        Model: shared.ChatModel(c.model),
        Messages: []openai.ChatCompletionMessageParamUnion{
            openai.SystemMessage("You are a scrum assistant. Given a sprint and its issues grouped by status, produce a concise progress summary: what is done, what is in flight, what is at risk given the sprint dates. Plain text, max 6 sentences."),
            openai.UserMessage(userContent),
        },
    }
    resp, err := c.cli.Chat.Completions.New(ctx, params)
    if err != nil { return "", err }
    if len(resp.Choices) == 0 { return "", errors.New("openai: no choices") }
    return resp.Choices[0].Message.Content, nil
}
