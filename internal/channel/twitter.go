package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"briefbox/backend/internal/config"
	"briefbox/backend/internal/model"
)

var twitterNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)

const maxTweetLookupIDs = 100

type twitterAdapter struct {
	apiBase    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewTwitterAdapter(apiBase, token string, httpClient *http.Client) Adapter {
	client := httpClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &twitterAdapter{
		apiBase:    strings.TrimSuffix(apiBase, "/"),
		token:      token,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 5),
	}
}

func (a *twitterAdapter) Type() model.ChannelType {
	return model.ChannelTwitter
}

// ValidateName normalizes a screen name: leading @ stripped, 1-15 word
// characters.
func (a *twitterAdapter) ValidateName(raw string) (string, error) {
	name := strings.TrimPrefix(strings.TrimSpace(raw), "@")
	if !twitterNamePattern.MatchString(name) {
		return "", fmt.Errorf("%w: screen name must be 1-15 letters, digits or underscores", ErrInvalidName)
	}
	return name, nil
}

type twitterUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type twitterUserResponse struct {
	Data   *twitterUser       `json:"data"`
	Errors []twitterAPIDetail `json:"errors"`
}

type twitterAPIDetail struct {
	Value      string `json:"value"`
	Title      string `json:"title"`
	Detail     string `json:"detail"`
	ResourceID string `json:"resource_id"`
}

func (a *twitterAdapter) Search(ctx context.Context, query string) ([]Info, error) {
	name, err := a.ValidateName(query)
	if err != nil {
		return nil, searchErr(SearchInvalidInput, err)
	}

	user, err := a.lookupUser(ctx, name)
	if err != nil {
		return nil, err
	}

	return []Info{{
		Type:  model.ChannelTwitter,
		ExtID: user.Username,
		Title: user.Name,
		Link:  "https://twitter.com/" + user.Username,
	}}, nil
}

type twitterTweet struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type twitterTweetsResponse struct {
	Data   []twitterTweet     `json:"data"`
	Errors []twitterAPIDetail `json:"errors"`
}

func (a *twitterAdapter) FetchUpdates(ctx context.Context, extID string) ([]RawUpdate, error) {
	user, err := a.lookupUser(ctx, extID)
	if err != nil {
		return nil, err
	}

	var resp twitterTweetsResponse
	path := "/2/users/" + user.ID + "/tweets?max_results=50&tweet.fields=created_at"
	if err := a.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}

	updates := make([]RawUpdate, 0, len(resp.Data))
	for _, tweet := range resp.Data {
		updates = append(updates, RawUpdate{
			ExtID:     tweet.ID,
			Title:     tweetTitle(tweet.Text),
			URL:       "https://twitter.com/" + user.Username + "/status/" + tweet.ID,
			Published: tweet.CreatedAt,
		})
	}
	return updates, nil
}

// FindDeleted returns the subset of extIDs the provider no longer serves.
// At most maxTweetLookupIDs ids per call; callers chunk.
func (a *twitterAdapter) FindDeleted(ctx context.Context, extIDs []string) ([]string, error) {
	if len(extIDs) == 0 {
		return nil, nil
	}
	if len(extIDs) > maxTweetLookupIDs {
		return nil, fmt.Errorf("at most %d ids per lookup, got %d", maxTweetLookupIDs, len(extIDs))
	}

	var resp twitterTweetsResponse
	path := "/2/tweets?ids=" + url.QueryEscape(strings.Join(extIDs, ","))
	if err := a.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}

	var deleted []string
	for _, detail := range resp.Errors {
		id := detail.ResourceID
		if id == "" {
			id = detail.Value
		}
		if id != "" {
			deleted = append(deleted, id)
		}
	}
	return deleted, nil
}

func (a *twitterAdapter) lookupUser(ctx context.Context, username string) (*twitterUser, error) {
	var resp twitterUserResponse
	if err := a.getJSON(ctx, "/2/users/by/username/"+url.PathEscape(username), &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, searchErr(SearchNotFound, fmt.Errorf("user %q not found", username))
	}
	return resp.Data, nil
}

func (a *twitterAdapter) getJSON(ctx context.Context, path string, out interface{}) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return searchErr(SearchTimeout, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.apiBase+path, nil)
	if err != nil {
		return searchErr(SearchTechnical, err)
	}
	req.Header.Set("User-Agent", config.UserAgent)
	req.Header.Set("Authorization", "Bearer "+a.token)

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

func tweetTitle(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	const maxLen = 120
	if len(text) > maxLen {
		return text[:maxLen-3] + "..."
	}
	return text
}
