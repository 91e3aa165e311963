package upstream

import (
	"context"
	"net/url"
	"strings"
	"time"

	"guidechat/internal/model"
)

// SearchClient queries the property backend's search endpoint.
type SearchClient struct {
	http httpJSON
}

type searchResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Properties []model.PropertyRecord `json:"properties"`
	} `json:"data"`
}

// NewSearchClient creates a client for the backend rooted at baseURL.
func NewSearchClient(baseURL string, timeout time.Duration) *SearchClient {
	return &SearchClient{http: newHTTPJSON(strings.TrimRight(baseURL, "/"), timeout)}
}

// Search runs a property search with the given query parameters.
func (c *SearchClient) Search(ctx context.Context, params url.Values) ([]model.PropertyRecord, error) {
	endpoint := c.http.baseURL + "/search-properties/properties"
	if q := params.Encode(); q != "" {
		endpoint += "?" + q
	}

	var resp searchResponse
	if err := c.http.get(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.Data.Properties == nil {
		return []model.PropertyRecord{}, nil
	}
	return resp.Data.Properties, nil
}
