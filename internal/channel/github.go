package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"briefbox/backend/internal/config"
	"briefbox/backend/internal/model"
)

var githubRepoPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

type githubAdapter struct {
	apiBase    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewGithubAdapter(apiBase string, httpClient *http.Client) Adapter {
	client := httpClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &githubAdapter{
		apiBase:    strings.TrimSuffix(apiBase, "/"),
		httpClient: client,
		// unauthenticated GitHub API allows 60 requests/hour
		limiter: rate.NewLimiter(rate.Every(time.Minute), 5),
	}
}

func (a *githubAdapter) Type() model.ChannelType {
	return model.ChannelGithubRelease
}

// ValidateName canonicalizes a repository reference to "owner/repo". A full
// github.com URL is accepted and reduced to its first two path segments.
func (a *githubAdapter) ValidateName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}

	slug := trimmed
	for _, prefix := range []string{"https://github.com/", "http://github.com/", "github.com/"} {
		if strings.HasPrefix(strings.ToLower(slug), prefix) {
			slug = slug[len(prefix):]
			break
		}
	}
	slug = strings.TrimSuffix(slug, "/")
	if parts := strings.Split(slug, "/"); len(parts) > 2 {
		slug = parts[0] + "/" + parts[1]
	}

	if !githubRepoPattern.MatchString(slug) {
		return "", fmt.Errorf("%w: expected owner/repo", ErrInvalidName)
	}
	return slug, nil
}

type githubRepo struct {
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	HTMLURL     string `json:"html_url"`
}

func (a *githubAdapter) Search(ctx context.Context, query string) ([]Info, error) {
	slug, err := a.ValidateName(query)
	if err != nil {
		return nil, searchErr(SearchInvalidInput, err)
	}

	var repo githubRepo
	if err := a.getJSON(ctx, "/repos/"+slug, &repo); err != nil {
		return nil, err
	}

	return []Info{{
		Type:  model.ChannelGithubRelease,
		ExtID: repo.FullName,
		Title: repo.FullName,
		Link:  repo.HTMLURL,
	}}, nil
}

type githubRelease struct {
	ID          int64     `json:"id"`
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	HTMLURL     string    `json:"html_url"`
	Draft       bool      `json:"draft"`
	PublishedAt time.Time `json:"published_at"`
}

func (a *githubAdapter) FetchUpdates(ctx context.Context, extID string) ([]RawUpdate, error) {
	var releases []githubRelease
	if err := a.getJSON(ctx, "/repos/"+extID+"/releases?per_page=30", &releases); err != nil {
		return nil, err
	}

	updates := make([]RawUpdate, 0, len(releases))
	for _, rel := range releases {
		if rel.Draft {
			continue
		}
		title := rel.Name
		if title == "" {
			title = rel.TagName
		}
		updates = append(updates, RawUpdate{
			ExtID:     strconv.FormatInt(rel.ID, 10),
			Title:     title,
			URL:       rel.HTMLURL,
			Published: rel.PublishedAt,
		})
	}
	return updates, nil
}

func (a *githubAdapter) getJSON(ctx context.Context, path string, out interface{}) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return searchErr(SearchTimeout, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.apiBase+path, nil)
	if err != nil {
		return searchErr(SearchTechnical, err)
	}
	req.Header.Set("User-Agent", config.UserAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return classifySearchErr(ctx, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return searchErr(SearchNotFound, fmt.Errorf("HTTP %d", resp.StatusCode))
	case resp.StatusCode >= http.StatusBadRequest:
		return searchErr(SearchTechnical, fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return searchErr(SearchTechnical, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
