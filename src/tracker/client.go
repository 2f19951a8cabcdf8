package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/stake-plus/ideaforge/src/webclient"
)

const (
	defaultBaseURL = "https://api.github.com"

	// IdeaLabel marks issues created by this system.
	IdeaLabel = "idea"

	// VoteMarkerPrefix identifies the single vote-count comment this system
	// manages per issue.
	VoteMarkerPrefix = "Discord votes:"
)

// Issue is the subset of a created tracker issue the bot needs back.
type Issue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	URL    string `json:"html_url"`
}

// OpenIdea is an open issue carrying the idea marker label.
type OpenIdea struct {
	Number  int
	Title   string
	URL     string
	Upvotes int
	Labels  []string
}

// Client talks to the GitHub issues REST API.
type Client struct {
	baseURL    string
	owner      string
	repo       string
	token      string
	httpClient *http.Client

	loginMu sync.Mutex
	login   string
}

type Config struct {
	Owner   string
	Repo    string
	Token   string
	BaseURL string // defaults to api.github.com
	HTTP    *http.Client
}

func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL:    cfg.BaseURL,
		owner:      cfg.Owner,
		repo:       cfg.Repo,
		token:      cfg.Token,
		httpClient: cfg.HTTP,
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = webclient.NewDefault(30 * time.Second)
	}
	return c
}

// CreateIssue files a new idea issue and returns its number, title and URL.
func (c *Client) CreateIssue(ctx context.Context, title, body string) (Issue, error) {
	payload := map[string]interface{}{
		"title":  title,
		"body":   body,
		"labels": []string{IdeaLabel},
	}
	var issue Issue
	status, data, err := c.do(ctx, "POST", c.repoPath("/issues"), payload)
	if err != nil {
		return Issue{}, err
	}
	if status != http.StatusCreated {
		return Issue{}, apiError("create issue", status, data)
	}
	if err := json.Unmarshal(data, &issue); err != nil {
		return Issue{}, fmt.Errorf("decode created issue: %w", err)
	}
	return issue, nil
}

type comment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
	User struct {
		Login string `json:"login"`
	} `json:"user"`
}

// UpsertVoteComment keeps exactly one vote-count comment per issue: the
// existing comment authored by this client's login and starting with the
// marker prefix is edited in place, otherwise one is created.
func (c *Client) UpsertVoteComment(ctx context.Context, issueNumber, count int) error {
	existing, err := c.findVoteComment(ctx, issueNumber)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("%s %d", VoteMarkerPrefix, count)
	payload := map[string]string{"body": body}

	if existing != nil {
		status, data, err := c.do(ctx, "PATCH", c.repoPath(fmt.Sprintf("/issues/comments/%d", existing.ID)), payload)
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return apiError("edit vote comment", status, data)
		}
		return nil
	}

	status, data, err := c.do(ctx, "POST", c.repoPath(fmt.Sprintf("/issues/%d/comments", issueNumber)), payload)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return apiError("create vote comment", status, data)
	}
	return nil
}

var voteCountRe = regexp.MustCompile(`(?i)^Discord votes:\s*(\d+)`)

// ReadVoteCount returns the mirrored vote count for an issue, 0 when no vote
// comment exists yet.
func (c *Client) ReadVoteCount(ctx context.Context, issueNumber int) (int, error) {
	existing, err := c.findVoteComment(ctx, issueNumber)
	if err != nil {
		return 0, err
	}
	if existing == nil {
		return 0, nil
	}
	m := voteCountRe.FindStringSubmatch(existing.Body)
	if m == nil {
		return 0, nil
	}
	var n int
	fmt.Sscanf(m[1], "%d", &n)
	return n, nil
}

func (c *Client) findVoteComment(ctx context.Context, issueNumber int) (*comment, error) {
	login, err := c.selfLogin(ctx)
	if err != nil {
		return nil, err
	}

	status, data, err := c.get(ctx, c.repoPath(fmt.Sprintf("/issues/%d/comments?per_page=100", issueNumber)))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError("list comments", status, data)
	}

	var comments []comment
	if err := json.Unmarshal(data, &comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	for i := range comments {
		if comments[i].User.Login == login && strings.HasPrefix(comments[i].Body, VoteMarkerPrefix) {
			return &comments[i], nil
		}
	}
	return nil, nil
}

var priorityLabelColors = map[int]string{
	1: "e11d48",
	2: "f97316",
	3: "eab308",
	4: "22c55e",
	5: "3b82f6",
}

var priorityLabelRe = regexp.MustCompile(`^P[1-5]$`)

// SetPriorityLabel ensures the P<level> label exists, then replaces any
// existing priority label on the issue with it, preserving all others.
func (c *Client) SetPriorityLabel(ctx context.Context, issueNumber, level int) error {
	if level < 1 || level > 5 {
		return fmt.Errorf("priority level must be 1..5, got %d", level)
	}
	label := fmt.Sprintf("P%d", level)

	// Idempotent creation; 422 means the label already exists.
	payload := map[string]string{
		"name":        label,
		"color":       priorityLabelColors[level],
		"description": fmt.Sprintf("Priority %d", level),
	}
	status, data, err := c.do(ctx, "POST", c.repoPath("/labels"), payload)
	if err != nil {
		return err
	}
	if status != http.StatusCreated && status != http.StatusUnprocessableEntity {
		return apiError("create label", status, data)
	}

	status, data, err = c.get(ctx, c.repoPath(fmt.Sprintf("/issues/%d", issueNumber)))
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apiError("get issue", status, data)
	}

	var issue struct {
		Labels []struct {
			Name string `json:"name"`
		} `json:"labels"`
	}
	if err := json.Unmarshal(data, &issue); err != nil {
		return fmt.Errorf("decode issue: %w", err)
	}

	labels := make([]string, 0, len(issue.Labels)+1)
	for _, l := range issue.Labels {
		if !priorityLabelRe.MatchString(l.Name) {
			labels = append(labels, l.Name)
		}
	}
	labels = append(labels, label)

	status, data, err = c.do(ctx, "PUT", c.repoPath(fmt.Sprintf("/issues/%d/labels", issueNumber)), map[string][]string{"labels": labels})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apiError("replace labels", status, data)
	}
	return nil
}

// ListOpenIdeas returns open issues carrying the idea marker label in the
// order the tracker reports them, capped at limit.
func (c *Client) ListOpenIdeas(ctx context.Context, limit int) ([]OpenIdea, error) {
	q := url.Values{}
	q.Set("state", "open")
	q.Set("labels", IdeaLabel)
	q.Set("per_page", "100")

	status, data, err := c.get(ctx, c.repoPath("/issues?"+q.Encode()))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError("list issues", status, data)
	}

	var raw []struct {
		Number    int    `json:"number"`
		Title     string `json:"title"`
		URL       string `json:"html_url"`
		Reactions struct {
			PlusOne int `json:"+1"`
		} `json:"reactions"`
		Labels []struct {
			Name string `json:"name"`
		} `json:"labels"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}

	ideas := make([]OpenIdea, 0, len(raw))
	for _, i := range raw {
		labels := make([]string, 0, len(i.Labels))
		for _, l := range i.Labels {
			labels = append(labels, l.Name)
		}
		ideas = append(ideas, OpenIdea{
			Number:  i.Number,
			Title:   i.Title,
			URL:     i.URL,
			Upvotes: i.Reactions.PlusOne,
			Labels:  labels,
		})
		if limit > 0 && len(ideas) >= limit {
			break
		}
	}
	return ideas, nil
}

// selfLogin resolves and caches the authenticated login, used to recognize
// our own vote comments.
func (c *Client) selfLogin(ctx context.Context) (string, error) {
	c.loginMu.Lock()
	defer c.loginMu.Unlock()
	if c.login != "" {
		return c.login, nil
	}

	status, data, err := c.get(ctx, "/user")
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", apiError("get authenticated user", status, data)
	}
	var me struct {
		Login string `json:"login"`
	}
	if err := json.Unmarshal(data, &me); err != nil {
		return "", fmt.Errorf("decode user: %w", err)
	}
	c.login = me.Login
	return c.login, nil
}

func (c *Client) repoPath(suffix string) string {
	return fmt.Sprintf("/repos/%s/%s%s", c.owner, c.repo, suffix)
}

// get is a read-only request with transient-error retries.
func (c *Client) get(ctx context.Context, path string) (int, []byte, error) {
	return webclient.DoWithRetry(ctx, 3, time.Second, func() (int, []byte, error) {
		return c.roundTrip(ctx, "GET", path, nil)
	})
}

// do issues a mutating request exactly once.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(b)
	}
	return c.roundTrip(ctx, method, path, body)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, data, nil
}

func apiError(op string, status int, body []byte) error {
	msg := string(body)
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return fmt.Errorf("tracker: %s failed (%d): %s", op, status, msg)
}
