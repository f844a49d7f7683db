// Package remote is a client for the remote feature flag service. The wire
// format follows the PostHog feature flag API:
//
//	GET   {host}/api/projects/{project}/feature_flags/?limit=100
//	POST  {host}/api/projects/{project}/feature_flags/
//	PATCH {host}/api/projects/{project}/feature_flags/{id}/
//
// Every request carries "Authorization: Bearer {api key}". Any non-2xx
// response becomes a RemoteApiError carrying the status and raw body.
// Requests are not retried.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jpl-au/flagsync/internal/errs"
	"github.com/jpl-au/flagsync/internal/model"
)

// DefaultHost is the PostHog US cloud.
const DefaultHost = "https://us.posthog.com"

// Timeout bounds every request.
const Timeout = 30 * time.Second

// PageSize is the page size requested when listing flags.
const PageSize = 100

const (
	maxPages    = 1000
	maxBodySize = 32 << 20 // 32 MiB
	maxErrBody  = 64 << 10 // error bodies are truncated to 64 KiB
)

// API is the set of remote operations sync needs.
type API interface {
	List(ctx context.Context) ([]model.RemoteFlag, error)
	Create(ctx context.Context, f model.Flag) (model.RemoteFlag, error)
	Update(ctx context.Context, id int64, f model.Flag) (model.RemoteFlag, error)
}

// Client talks to the remote flag service over HTTP.
type Client struct {
	Host      string
	ProjectID string
	APIKey    string
	HTTP      *http.Client
}

// New creates a client. host defaults to DefaultHost; projectID and apiKey
// are required.
func New(host, projectID, apiKey string) (*Client, error) {
	if host == "" {
		host = DefaultHost
	}
	u, err := url.Parse(host)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errs.Config("remote.host %q is not an absolute URL", host).With("key", "remote.host")
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, errs.Config("remote.host %q must use http or https", host).With("key", "remote.host")
	}
	if projectID == "" {
		return nil, errs.Config("remote.project_id is not set (config or POSTHOG_PROJECT_ID)").With("key", "remote.project_id")
	}
	if apiKey == "" {
		return nil, errs.Config("remote.api_key is not set (config or POSTHOG_PERSONAL_API_KEY)").With("key", "remote.api_key")
	}
	return &Client{
		Host:      strings.TrimRight(host, "/"),
		ProjectID: projectID,
		APIKey:    apiKey,
		HTTP:      &http.Client{Timeout: Timeout},
	}, nil
}

// page is one page of a list response.
type page struct {
	Next    *string            `json:"next"`
	Results []model.RemoteFlag `json:"results"`
}

// List returns every flag in the project, following pagination. Flags the
// service marks as deleted are omitted.
func (c *Client) List(ctx context.Context) ([]model.RemoteFlag, error) {
	next := fmt.Sprintf("%s?limit=%d", c.collection(), PageSize)

	var out []model.RemoteFlag
	for range maxPages {
		var p page
		if err := c.do(ctx, http.MethodGet, next, nil, &p); err != nil {
			return nil, err
		}
		for _, f := range p.Results {
			if !f.Deleted {
				out = append(out, f)
			}
		}
		if p.Next == nil || *p.Next == "" {
			return out, nil
		}
		if err := c.sameOrigin(*p.Next); err != nil {
			return nil, err
		}
		next = *p.Next
	}
	return nil, failure(http.MethodGet, next, fmt.Errorf("pagination exceeded %d pages", maxPages))
}

// Create adds a new flag.
func (c *Client) Create(ctx context.Context, f model.Flag) (model.RemoteFlag, error) {
	var rf model.RemoteFlag
	err := c.do(ctx, http.MethodPost, c.collection(), f, &rf)
	return rf, err
}

// Update replaces the mutable fields of the flag with the given remote id.
func (c *Client) Update(ctx context.Context, id int64, f model.Flag) (model.RemoteFlag, error) {
	var rf model.RemoteFlag
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("%s%d/", c.collection(), id), f, &rf)
	return rf, err
}

func (c *Client) collection() string {
	return fmt.Sprintf("%s/api/projects/%s/feature_flags/", c.Host, url.PathEscape(c.ProjectID))
}

// sameOrigin refuses pagination links that point at another host, which
// would otherwise receive the API key.
func (c *Client) sameOrigin(link string) error {
	want, _ := url.Parse(c.Host)
	got, err := url.Parse(link)
	if err != nil || got.Scheme != want.Scheme || got.Host != want.Host {
		return failure(http.MethodGet, link, errors.New("pagination link points to a different origin"))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, target string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return failure(method, target, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return failure(method, target, fmt.Errorf("read response: %w", err))
	}

	logrus.WithFields(logrus.Fields{
		"method":   method,
		"url":      target,
		"status":   resp.StatusCode,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("remote request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw := respBody
		if len(raw) > maxErrBody {
			raw = raw[:maxErrBody]
		}
		return errs.RemoteAPI(method, target, resp.StatusCode, string(raw))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return failure(method, target, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

// failure reports a request that produced no usable response.
func failure(method, target string, cause error) *errs.Error {
	e := errs.RemoteAPI(method, target, 0, "").Wrap(cause)
	e.Message = fmt.Sprintf("%s %s failed", method, target)
	delete(e.Context, "status")
	return e
}
