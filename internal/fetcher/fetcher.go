package fetcher

import (
	"context"

	"github.com/IshaanNene/unioncorpus/internal/types"
)

// Fetcher is the interface for request fetcher implementations.
type Fetcher interface {
	// Fetch retrieves the content at the given request's URL. Any non-2xx
	// status is reported as a *types.FetchError.
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// Get builds a GET request for rawURL and fetches it.
func Get(ctx context.Context, f Fetcher, rawURL, tag string) (*types.Response, error) {
	req, err := types.NewRequest(rawURL)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}
	req.Tag = tag
	return f.Fetch(ctx, req)
}
