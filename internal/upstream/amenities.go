package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"guidechat/internal/model"
)

// AmenityClient reads the amenity catalogue from the property backend.
type AmenityClient struct {
	http httpJSON
}

type amenityItem struct {
	ID   flexString `json:"_id"`
	Name string     `json:"name"`
}

// NewAmenityClient creates a client for the backend rooted at baseURL.
func NewAmenityClient(baseURL string, timeout time.Duration) *AmenityClient {
	return &AmenityClient{http: newHTTPJSON(strings.TrimRight(baseURL, "/"), timeout)}
}

// ListAmenities returns every amenity. The backend has answered with
// {data:{amenities:[...]}}, {data:[...]} and a bare array over time; all
// three are accepted.
func (c *AmenityClient) ListAmenities(ctx context.Context) ([]model.ReferenceEntry, error) {
	var raw json.RawMessage
	if err := c.http.get(ctx, c.http.baseURL+"/amenities/all", &raw); err != nil {
		return nil, err
	}

	items, err := decodeAmenities(raw)
	if err != nil {
		return nil, err
	}

	entries := make([]model.ReferenceEntry, 0, len(items))
	for _, it := range items {
		if it.Name != "" {
			entries = append(entries, model.ReferenceEntry{Name: it.Name, ID: string(it.ID)})
		}
	}
	return entries, nil
}

func decodeAmenities(raw json.RawMessage) ([]amenityItem, error) {
	var items []amenityItem
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil || len(wrapped.Data) == 0 {
		return nil, errors.New("unrecognized amenities payload")
	}

	if err := json.Unmarshal(wrapped.Data, &items); err == nil {
		return items, nil
	}

	var nested struct {
		Amenities []amenityItem `json:"amenities"`
	}
	if err := json.Unmarshal(wrapped.Data, &nested); err != nil {
		return nil, errors.New("unrecognized amenities payload")
	}
	return nested.Amenities, nil
}
