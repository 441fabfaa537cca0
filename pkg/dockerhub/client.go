package dockerhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
	"go.uber.org/ratelimit"
)

const DockerHubURL = "https://hub.docker.com/v2"
const DefaultMaxRPS = 5

// PageSize is the fixed page size used for tag listing requests.
const PageSize = 100

type Client struct {
	apiURL string
	rl     ratelimit.Limiter

	username string
	password string

	cli *http.Client
}

type Option func(c *Client)

// Auth makes the client send the given credential pair as a Basic
// authentication header. Empty credentials keep access anonymous.
func Auth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

func HTTPClient(cli *http.Client) Option {
	return func(c *Client) {
		c.cli = cli
	}
}

func NewClient(apiURL string, maxRPS int, opts ...Option) *Client {
	c := &Client{
		apiURL: apiURL,
		rl:     ratelimit.New(maxRPS),
		cli:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetTags fetches all published tags of the given repository,
// following pagination until the last page.
//
// On a transport error or a non-success status the accumulated tags
// are returned together with the error, so the caller decides what
// to do with a partial catalog.
func (c *Client) GetTags(ctx context.Context, repository string) ([]ImageTag, error) {
	nextURL := fmt.Sprintf("%s/repositories/%s/tags/?page=1&page_size=%d", c.apiURL, repository, PageSize)

	var tags []ImageTag
	for {
		resp, err := c.getTags(ctx, nextURL)
		if err != nil {
			return tags, err
		}

		tags = append(tags, resp.Results...)
		if resp.Next == nil {
			break
		}

		nextURL = *resp.Next
	}

	return tags, nil
}

func (c *Client) getTags(ctx context.Context, url string) (*GetImageTagsResponse, error) {
	c.rl.Take()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "request creation failed")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.cli.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "body read failed")
	}

	response := new(GetImageTagsResponse)
	err = json.Unmarshal(body, response)
	if err != nil {
		zlog.Error().Err(err).Str("url", url).Str("body", string(body)).Msg("failed to decode image tags")

		return nil, errors.Wrap(err, "unmarshal failed")
	}

	return response, nil
}
