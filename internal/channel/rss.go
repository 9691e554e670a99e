package channel

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"briefbox/backend/internal/config"
	"briefbox/backend/internal/model"
)

type rssAdapter struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewRSSAdapter(httpClient *http.Client) Adapter {
	client := httpClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &rssAdapter{
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

func (a *rssAdapter) Type() model.ChannelType {
	return model.ChannelRSS
}

// ValidateName normalizes a user-supplied feed URL into its canonical form:
// lowercased http/https scheme and host, query and fragment stripped. Bare IP
// hosts, ports, and hosts without a real TLD (>= 2 chars) are rejected.
func (a *rssAdapter) ValidateName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidName, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: scheme must be http or https", ErrInvalidName)
	}
	if u.Port() != "" {
		return "", fmt.Errorf("%w: port not allowed", ErrInvalidName)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidName)
	}
	if net.ParseIP(host) != nil {
		return "", fmt.Errorf("%w: bare IP host not allowed", ErrInvalidName)
	}
	dot := strings.LastIndex(host, ".")
	if dot < 0 || len(host)-dot-1 < 2 {
		return "", fmt.Errorf("%w: host needs a TLD of at least 2 characters", ErrInvalidName)
	}

	canonical := url.URL{Scheme: scheme, Host: host, Path: u.Path}
	return canonical.String(), nil
}

func (a *rssAdapter) Search(ctx context.Context, query string) ([]Info, error) {
	canonical, err := a.ValidateName(query)
	if err != nil {
		return nil, searchErr(SearchInvalidInput, err)
	}

	parsed, err := a.fetchFeed(ctx, canonical)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		title = canonical
	}
	return []Info{{
		Type:  model.ChannelRSS,
		ExtID: canonical,
		Title: title,
		Link:  strings.TrimSpace(parsed.Link),
	}}, nil
}

func (a *rssAdapter) FetchUpdates(ctx context.Context, extID string) ([]RawUpdate, error) {
	parsed, err := a.fetchFeed(ctx, extID)
	if err != nil {
		return nil, err
	}

	updates := make([]RawUpdate, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}
		published := time.Now().UTC()
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = link
		}
		updates = append(updates, RawUpdate{
			ExtID:     item.GUID,
			Title:     title,
			URL:       link,
			Published: published,
		})
	}
	return updates, nil
}

func (a *rssAdapter) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, searchErr(SearchTimeout, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, searchErr(SearchInvalidInput, err)
	}
	req.Header.Set("User-Agent", config.UserAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, classifySearchErr(ctx, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, searchErr(SearchNotFound, fmt.Errorf("HTTP %d", resp.StatusCode))
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, searchErr(SearchTechnical, fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, searchErr(SearchTechnical, fmt.Errorf("parse feed: %w", err))
	}
	return parsed, nil
}
