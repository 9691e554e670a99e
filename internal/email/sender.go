package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// Item is one update line in a digest email.
type Item struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Group is a block of items under a source heading (channel title or list
// name).
type Group struct {
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Sender dispatches a structured digest through a templated transactional
// email provider.
type Sender interface {
	SendDigest(ctx context.Context, recipient, subject string, groups []Group) error
}

const digestTemplateAlias = "update-digest"

// TemplateClient sends digests through a Postmark-style templated email API.
type TemplateClient struct {
	apiBase    string
	token      string
	from       string
	httpClient *http.Client
	sanitizer  *bluemonday.Policy
}

func NewTemplateClient(apiBase, token, from string, httpClient *http.Client) *TemplateClient {
	client := httpClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &TemplateClient{
		apiBase:    strings.TrimSuffix(apiBase, "/"),
		token:      token,
		from:       from,
		httpClient: client,
		// Feed titles regularly carry stray markup; strip it all.
		sanitizer: bluemonday.StrictPolicy(),
	}
}

type templateRequest struct {
	From          string        `json:"From"`
	To            string        `json:"To"`
	TemplateAlias string        `json:"TemplateAlias"`
	TemplateModel templateModel `json:"TemplateModel"`
}

type templateModel struct {
	Subject string  `json:"subject"`
	Groups  []Group `json:"groups"`
}

func (c *TemplateClient) SendDigest(ctx context.Context, recipient, subject string, groups []Group) error {
	payload := templateRequest{
		From:          c.from,
		To:            recipient,
		TemplateAlias: digestTemplateAlias,
		TemplateModel: templateModel{
			Subject: c.sanitizer.Sanitize(subject),
			Groups:  c.sanitizeGroups(groups),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal digest email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/email/withTemplate", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build digest email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send digest email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("send digest email: HTTP %d", resp.StatusCode)
	}
	return nil
}

func (c *TemplateClient) sanitizeGroups(groups []Group) []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		items := make([]Item, len(g.Items))
		for j, item := range g.Items {
			items[j] = Item{
				Title: c.sanitizer.Sanitize(item.Title),
				URL:   item.URL,
			}
		}
		out[i] = Group{Title: c.sanitizer.Sanitize(g.Title), Items: items}
	}
	return out
}
