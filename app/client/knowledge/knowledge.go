package knowledge

import (
	"context"
	"errors"
	"friday/app/config"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
	"github.com/samber/oops"
	"github.com/tmc/langchaingo/tools"
	"github.com/tmc/langchaingo/tools/wikipedia"
)

const (
	topK        = 1
	docMaxChars = 2000
)

var ErrNotFound = errors.New("no matching article")

// The wikipedia tool reports misses as text rather than errors.
var notFoundMarkers = []string{
	"no wikipedia pages found",
	"no good wikipedia search result",
}

// Client looks subjects up on Wikipedia.
type Client struct {
	tool tools.Tool
}

func New(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	tool := wikipedia.New(cfg.Knowledge.UserAgent)
	tool.TopK = topK
	tool.DocMaxChars = docMaxChars

	return NewClient(tool), nil
}

func NewClient(tool tools.Tool) *Client {
	return &Client{tool: tool}
}

func (c *Client) Summary(ctx context.Context, subject string) (string, error) {
	result, err := c.tool.Call(ctx, subject)
	if err != nil {
		return "", oops.In("knowledge").With("subject", subject).Wrapf(err, "wikipedia lookup failed")
	}

	result = strings.TrimSpace(result)
	lower := strings.ToLower(result)

	missing := result == "" || pie.Any(notFoundMarkers, func(marker string) bool {
		return strings.HasPrefix(lower, marker)
	})
	if missing {
		return "", ErrNotFound
	}

	return result, nil
}
