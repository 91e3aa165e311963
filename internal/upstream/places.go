package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"guidechat/internal/model"
	"guidechat/internal/utils"
)

// PlaceClient reads provinces and wards from a vietnamprovince-style API.
type PlaceClient struct {
	http    httpJSON
	matcher *utils.FuzzyMatcher
}

type provinceResponse struct {
	Success bool           `json:"success"`
	Data    []provinceItem `json:"data"`
}

type provinceItem struct {
	ID       flexString `json:"id"`
	Province string     `json:"province"`
	Wards    []struct {
		ID   flexString `json:"id"`
		Name string     `json:"name"`
	} `json:"wards"`
}

// NewPlaceClient creates a client for the API rooted at baseURL.
func NewPlaceClient(baseURL string, timeout time.Duration) *PlaceClient {
	return &PlaceClient{
		http:    newHTTPJSON(strings.TrimRight(baseURL, "/"), timeout),
		matcher: utils.NewFuzzyMatcher(),
	}
}

// ListProvinces returns every province.
func (c *PlaceClient) ListProvinces(ctx context.Context) ([]model.ReferenceEntry, error) {
	resp, err := c.fetch(ctx, "")
	if err != nil {
		return nil, err
	}
	entries := make([]model.ReferenceEntry, 0, len(resp.Data))
	for _, item := range resp.Data {
		if item.Province == "" {
			continue
		}
		entries = append(entries, model.ReferenceEntry{Name: item.Province, ID: string(item.ID)})
	}
	return entries, nil
}

// ListWards returns the wards of the named province.
func (c *PlaceClient) ListWards(ctx context.Context, province string) ([]model.ReferenceEntry, error) {
	resp, err := c.fetch(ctx, province)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("province %q not found", province)
	}

	// the API may answer with several provinces; keep the closest one
	candidates := make([]model.ReferenceEntry, len(resp.Data))
	for i, item := range resp.Data {
		candidates[i] = model.ReferenceEntry{Name: item.Province}
	}
	item := resp.Data[0]
	if hit := c.matcher.Match(province, candidates); hit != nil {
		for _, d := range resp.Data {
			if d.Province == hit.Name {
				item = d
				break
			}
		}
	}

	wards := make([]model.ReferenceEntry, 0, len(item.Wards))
	for _, w := range item.Wards {
		if w.Name != "" {
			wards = append(wards, model.ReferenceEntry{Name: w.Name, ID: string(w.ID)})
		}
	}
	return wards, nil
}

func (c *PlaceClient) fetch(ctx context.Context, province string) (*provinceResponse, error) {
	endpoint := c.http.baseURL + "/vietnamprovince"
	if province != "" {
		endpoint += "?province=" + url.QueryEscape(province)
	}

	var resp provinceResponse
	if err := c.http.get(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errors.New("place API reported failure")
	}
	return &resp, nil
}
