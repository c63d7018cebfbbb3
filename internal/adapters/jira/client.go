/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/HamedShams/sprintdeck/internal/config"
    "github.com/HamedShams/sprintdeck/internal/domain"
    "github.com/rs/zerolog"
)

const pageSize = 50

type Client struct {
    baseURL string
    token   string
    basic   string
    user    string
    pass    string
    http    *http.Client
    log     zerolog.Logger
    apiVer  string
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    return &Client{
        baseURL: cfg.JiraBaseURL,
        token:   cfg.JiraPAT,
        basic:   getenvBasic(),
        user:    cfg.JiraUsername,
        pass:    cfg.JiraPassword,
        http:    &http.Client{ Timeout: cfg.HTTPTimeout },
        log:     log,
        apiVer:  cfg.JiraAPIVersion,
    }
}

// getenvBasic reads JIRA_BASIC_AUTH from environment if present (format: user:pass base64), optional
func getenvBasic() string {
    v := ""
    if s := strings.TrimSpace(os.Getenv("JIRA_BASIC_AUTH")); s != "" { v = s }
    return v
}

func (c *Client) apiURL(path string, q url.Values) string {
    base := strings.TrimRight(c.baseURL, "/")
    if !strings.HasPrefix(path, "/") { path = "/" + path }
    u := base + path
    if q != nil && len(q) > 0 { u = u + "?" + q.Encode() }
    return u
}

func (c *Client) doJSON(ctx context.Context, method, u string, body any) (map[string]any, error) {
    if c.baseURL == "" { return nil, errors.New("jira: empty baseURL") }
    var payload []byte
    if body != nil {
        b, err := json.Marshal(body)
        if err != nil { return nil, err }
        payload = b
    }
    // only reads are retried: Jira may have applied a mutation even when the
    // response was lost, so replaying a POST/DELETE risks duplicate sprints
    attempts := 3
    if method != http.MethodGet { attempts = 1 }
    var lastErr error
    for attempt := 0; attempt < attempts; attempt++ {
        var r io.Reader
        if payload != nil { r = strings.NewReader(string(payload)) }
        req, err := http.NewRequestWithContext(ctx, method, u, r)
        if err != nil { return nil, err }
        if payload != nil { req.Header.Set("Content-Type", "application/json") }
        if c.token != "" {
            req.Header.Set("Authorization", "Bearer "+c.token)
        } else if c.user != "" && c.pass != "" {
            req.SetBasicAuth(c.user, c.pass)
        } else if c.basic != "" {
            req.Header.Set("Authorization", "Basic "+c.basic)
        }
        resp, err := c.http.Do(req)
        if err != nil { lastErr = err } else {
            defer resp.Body.Close()
            if resp.StatusCode >= 300 {
                b, _ := io.ReadAll(resp.Body)
                // 429/5xx are retryable (for reads); other statuses fail fast
                if resp.StatusCode == 429 || resp.StatusCode >= 500 {
                    lastErr = fmt.Errorf("jira api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
                } else {
                    return nil, fmt.Errorf("jira api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
                }
            } else {
                var out map[string]any
                if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
                    // 204 responses (sprint delete) carry no body
                    if errors.Is(err, io.EOF) { return map[string]any{}, nil }
                    return nil, err
                }
                return out, nil
            }
        }
        // backoff
        if attempt < attempts-1 { time.Sleep(time.Duration(300*(1<<attempt)) * time.Millisecond) }
    }
    return nil, lastErr
}

// GetBoards lists Jira Software boards, optionally filtered by name substring.
func (c *Client) GetBoards(ctx context.Context, offset, limit int, query string) (domain.BoardPage, error) {
    q := url.Values{}
    if offset > 0 { q.Set("startAt", fmt.Sprint(offset)) }
    if limit > 0 { q.Set("maxResults", fmt.Sprint(limit)) }
    if strings.TrimSpace(query) != "" { q.Set("name", strings.TrimSpace(query)) }
    m, err := c.doJSON(ctx, http.MethodGet, c.apiURL("/rest/agile/1.0/board", q), nil)
    if err != nil { return domain.BoardPage{}, err }
    page := domain.BoardPage{}
    if t, ok := m["total"].(float64); ok { page.Total = int(t) }
    if last, ok := m["isLast"].(bool); ok { page.IsLast = last }
    vals, _ := m["values"].([]any)
    for _, v0 := range vals {
        b, _ := v0.(map[string]any)
        if b == nil { continue }
        page.Boards = append(page.Boards, domain.Board{ID: toInt64(b["id"]), Name: toStrAny(b["name"]), Type: toStrAny(b["type"])})
    }
    if len(vals) == 0 && page.Total == 0 { page.IsLast = true }
    return page, nil
}

func (c *Client) GetBoard(ctx context.Context, boardID int64) (domain.Board, error) {
    if boardID <= 0 { return domain.Board{}, errors.New("jira: invalid board id") }
    m, err := c.doJSON(ctx, http.MethodGet, c.apiURL("/rest/agile/1.0/board/"+strconv.FormatInt(boardID, 10), nil), nil)
    if err != nil { return domain.Board{}, err }
    return domain.Board{ID: toInt64(m["id"]), Name: toStrAny(m["name"]), Type: toStrAny(m["type"])}, nil
}

// GetSprintsForBoard returns every sprint on the board, all states. Kanban
// boards answer this endpoint with 400; callers route those to the board view
// before asking.
func (c *Client) GetSprintsForBoard(ctx context.Context, boardID int64) ([]domain.Sprint, error) {
    if boardID <= 0 { return nil, errors.New("jira: invalid board id") }
    var out []domain.Sprint
    start := 0
    for {
        q := url.Values{}
        if start > 0 { q.Set("startAt", fmt.Sprint(start)) }
        q.Set("maxResults", fmt.Sprint(pageSize))
        path := "/rest/agile/1.0/board/" + strconv.FormatInt(boardID, 10) + "/sprint"
        m, err := c.doJSON(ctx, http.MethodGet, c.apiURL(path, q), nil)
        if err != nil { return nil, err }
        vals, _ := m["values"].([]any)
        if len(vals) == 0 { break }
        for _, v0 := range vals {
            sm, _ := v0.(map[string]any)
            if sm == nil { continue }
            out = append(out, parseSprint(sm))
        }
        if last, ok := m["isLast"].(bool); ok && last { break }
        if len(vals) < pageSize { break }
        start += pageSize
    }
    return out, nil
}

func (c *Client) GetBoardIssues(ctx context.Context, boardID int64, assignee string) ([]domain.Issue, error) {
    if boardID <= 0 { return nil, errors.New("jira: invalid board id") }
    path := "/rest/agile/1.0/board/" + strconv.FormatInt(boardID, 10) + "/issue"
    return c.pageIssues(ctx, path, assigneeJQL(assignee))
}

func (c *Client) GetSprintIssues(ctx context.Context, boardID, sprintID int64, assignee string) ([]domain.Issue, error) {
    if boardID <= 0 || sprintID <= 0 { return nil, errors.New("jira: invalid board or sprint id") }
    path := "/rest/agile/1.0/board/" + strconv.FormatInt(boardID, 10) + "/sprint/" + strconv.FormatInt(sprintID, 10) + "/issue"
    return c.pageIssues(ctx, path, assigneeJQL(assignee))
}

func (c *Client) GetBacklogIssues(ctx context.Context, boardID int64, assignee string) ([]domain.Issue, error) {
    if boardID <= 0 { return nil, errors.New("jira: invalid board id") }
    path := "/rest/agile/1.0/board/" + strconv.FormatInt(boardID, 10) + "/backlog"
    return c.pageIssues(ctx, path, assigneeJQL(assignee))
}

func (c *Client) pageIssues(ctx context.Context, path, jql string) ([]domain.Issue, error) {
    var out []domain.Issue
    start := 0
    for {
        q := url.Values{}
        if start > 0 { q.Set("startAt", fmt.Sprint(start)) }
        q.Set("maxResults", fmt.Sprint(pageSize))
        if jql != "" { q.Set("jql", jql) }
        q.Set("fields", "summary,issuetype,status,assignee,priority,duedate,sprint,closedSprints")
        m, err := c.doJSON(ctx, http.MethodGet, c.apiURL(path, q), nil)
        if err != nil { return nil, err }
        arr, _ := m["issues"].([]any)
        if len(arr) == 0 { break }
        for _, it := range arr {
            im, _ := it.(map[string]any)
            if im == nil { continue }
            out = append(out, parseIssue(im))
        }
        if len(arr) < pageSize { break }
        start += pageSize
    }
    return out, nil
}

func (c *Client) CreateSprint(ctx context.Context, boardID int64, name, goal string, start, end time.Time) (domain.Sprint, error) {
    if boardID <= 0 { return domain.Sprint{}, errors.New("jira: invalid board id") }
    body := map[string]any{
        "name":          name,
        "originBoardId": boardID,
        "startDate":     start.Format(time.RFC3339),
        "endDate":       end.Format(time.RFC3339),
    }
    if strings.TrimSpace(goal) != "" { body["goal"] = goal }
    m, err := c.doJSON(ctx, http.MethodPost, c.apiURL("/rest/agile/1.0/sprint", nil), body)
    if err != nil { return domain.Sprint{}, err }
    return parseSprint(m), nil
}

// UpdateSprint issues a partial update; nil dates leave the stored dates alone.
func (c *Client) UpdateSprint(ctx context.Context, sprintID int64, name, goal string, start, end *time.Time) (domain.Sprint, error) {
    if sprintID <= 0 { return domain.Sprint{}, errors.New("jira: invalid sprint id") }
    body := map[string]any{}
    if strings.TrimSpace(name) != "" { body["name"] = name }
    if goal != "" { body["goal"] = goal }
    if start != nil { body["startDate"] = start.Format(time.RFC3339) }
    if end != nil { body["endDate"] = end.Format(time.RFC3339) }
    m, err := c.doJSON(ctx, http.MethodPost, c.apiURL("/rest/agile/1.0/sprint/"+strconv.FormatInt(sprintID, 10), nil), body)
    if err != nil { return domain.Sprint{}, err }
    return parseSprint(m), nil
}

func (c *Client) DeleteSprint(ctx context.Context, sprintID int64) error {
    if sprintID <= 0 { return errors.New("jira: invalid sprint id") }
    _, err := c.doJSON(ctx, http.MethodDelete, c.apiURL("/rest/agile/1.0/sprint/"+strconv.FormatInt(sprintID, 10), nil), nil)
    return err
}

func (c *Client) CompleteSprint(ctx context.Context, sprintID int64) error {
    if sprintID <= 0 { return errors.New("jira: invalid sprint id") }
    body := map[string]any{"state": domain.SprintStateClosed}
    _, err := c.doJSON(ctx, http.MethodPost, c.apiURL("/rest/agile/1.0/sprint/"+strconv.FormatInt(sprintID, 10), nil), body)
    return err
}

// GetIssueComments fetches the full comment list for an issue, carrying the
// parent reference when the server provides one.
func (c *Client) GetIssueComments(ctx context.Context, key string) ([]domain.Comment, error) {
    if key == "" { return nil, errors.New("jira: empty issue key") }
    var out []domain.Comment
    start := 0
    for {
        q := url.Values{}
        if start > 0 { q.Set("startAt", fmt.Sprint(start)) }
        q.Set("maxResults", "100")
        path := "/rest/api/3/issue/" + url.PathEscape(key) + "/comment"
        if c.apiVer == "2" { path = "/rest/api/2/issue/" + url.PathEscape(key) + "/comment" }
        m, err := c.doJSON(ctx, http.MethodGet, c.apiURL(path, q), nil)
        if err != nil { return nil, err }
        arr, _ := m["comments"].([]any)
        if len(arr) == 0 { break }
        for _, c0 := range arr {
            cm, _ := c0.(map[string]any)
            if cm == nil { continue }
            out = append(out, parseComment(cm))
        }
        total, _ := m["total"].(float64)
        startAt, _ := m["startAt"].(float64)
        maxResults, _ := m["maxResults"].(float64)
        if total == 0 { break }
        next := int(startAt) + int(maxResults)
        if float64(next) >= total { break }
        start = next
    }
    return out, nil
}

// ---- JSON parsing ----

func parseIssue(im map[string]any) domain.Issue {
    fields, _ := im["fields"].(map[string]any)
    out := domain.Issue{Key: toStrAny(im["key"]), Summary: toStrAny(fields["summary"])}
    if it, ok := fields["issuetype"].(map[string]any); ok { out.Type = toStrAny(it["name"]) }
    if st, ok := fields["status"].(map[string]any); ok {
        out.Status = toStrAny(st["name"])
        if sc, ok := st["statusCategory"].(map[string]any); ok { out.StatusCategory = toStrAny(sc["key"]) }
    }
    if as, ok := fields["assignee"].(map[string]any); ok {
        out.Assignee = toStrAny(as["accountId"])
        if out.Assignee == "" { out.Assignee = toStrAny(as["name"]) }
        out.AssigneeName = toStrAny(as["displayName"])
    }
    if pr, ok := fields["priority"].(map[string]any); ok { out.Priority = toStrAny(pr["name"]) }
    out.DueDate = parseDateUTC(fields["duedate"])
    out.Sprint = normalizeSprintRef(fields["sprint"])
    return out
}

// normalizeSprintRef collapses Jira's sprint membership field to the single
// most relevant sprint. The field arrives either as one object or as an array
// of historical memberships; for an array the last active-or-future entry
// wins, falling back to the last entry.
func normalizeSprintRef(v any) *domain.SprintRef {
    switch t := v.(type) {
    case map[string]any:
        return sprintRefFromMap(t)
    case []any:
        var pick, last *domain.SprintRef
        for _, e0 := range t {
            em, _ := e0.(map[string]any)
            if em == nil { continue }
            ref := sprintRefFromMap(em)
            if ref == nil { continue }
            last = ref
            if ref.State == domain.SprintStateActive || ref.State == domain.SprintStateFuture {
                pick = ref
            }
        }
        if pick == nil { pick = last }
        return pick
    default:
        return nil
    }
}

func sprintRefFromMap(m map[string]any) *domain.SprintRef {
    id := toInt64(m["id"])
    if id <= 0 { return nil }
    return &domain.SprintRef{ID: id, Name: toStrAny(m["name"]), State: strings.ToLower(toStrAny(m["state"]))}
}

func parseSprint(sm map[string]any) domain.Sprint {
    return domain.Sprint{
        ID:        toInt64(sm["id"]),
        Name:      toStrAny(sm["name"]),
        State:     strings.ToLower(toStrAny(sm["state"])),
        StartDate: parseTimeUTC(sm["startDate"]),
        EndDate:   parseTimeUTC(sm["endDate"]),
        Goal:      toStrAny(sm["goal"]),
    }
}

func parseComment(cm map[string]any) domain.Comment {
    out := domain.Comment{ID: toStrAny(cm["id"]), Body: commentBody(cm["body"])}
    if a, ok := cm["author"].(map[string]any); ok {
        out.Author = toStrAny(a["accountId"])
        if out.Author == "" { out.Author = toStrAny(a["name"]) }
        out.AuthorName = toStrAny(a["displayName"])
    }
    if t := parseTimeUTC(cm["created"]); t != nil { out.Created = *t }
    out.ParentID = toStrAny(cm["parentId"])
    if out.ParentID == "" {
        if p, ok := cm["parent"].(map[string]any); ok { out.ParentID = toStrAny(p["id"]) }
    }
    return out
}

// commentBody flattens a v3 ADF body to plain text; v2 bodies are already
// strings. ADF structure beyond text nodes is treated as opaque.
func commentBody(v any) string {
    switch t := v.(type) {
    case string:
        return t
    case map[string]any:
        var b strings.Builder
        collectText(t, &b)
        return b.String()
    default:
        return toStrAny(v)
    }
}

func collectText(node map[string]any, b *strings.Builder) {
    if s, ok := node["text"].(string); ok { b.WriteString(s) }
    if node["type"] == "paragraph" && b.Len() > 0 { b.WriteString("\n") }
    if content, ok := node["content"].([]any); ok {
        for _, c0 := range content {
            if cm, _ := c0.(map[string]any); cm != nil { collectText(cm, b) }
        }
    }
}

// assigneeJQL renders the assignee filter as a server-side JQL clause.
func assigneeJQL(sel string) string {
    switch strings.TrimSpace(sel) {
    case "", domain.AssigneeAll:
        return ""
    case domain.AssigneeUnassigned:
        return "assignee is EMPTY"
    default:
        return fmt.Sprintf("assignee = %q", sel)
    }
}

func parseTimeUTC(v any) *time.Time {
    s, _ := v.(string)
    if s == "" { return nil }
    layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000-0700", "2006-01-02T15:04:05-0700"}
    for _, l := range layouts {
        if t, err := time.Parse(l, s); err == nil {
            tt := t.UTC(); return &tt
        }
    }
    return nil
}

// parseDateUTC reads Jira date-only fields (duedate).
func parseDateUTC(v any) *time.Time {
    s, _ := v.(string)
    if s == "" { return nil }
    if t, err := time.Parse("2006-01-02", s); err == nil {
        tt := t.UTC(); return &tt
    }
    return parseTimeUTC(v)
}

func toStrAny(v any) string {
    if v == nil { return "" }
    if s, ok := v.(string); ok { return s }
    return fmt.Sprintf("%v", v)
}

func toInt64(v any) int64 {
    switch t := v.(type) {
    case float64:
        return int64(t)
    case int64:
        return t
    case string:
        n, err := strconv.ParseInt(t, 10, 64)
        if err == nil { return n }
    }
    return 0
}
