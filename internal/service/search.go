package service

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"guidechat/internal/logging"
	"guidechat/internal/metrics"
	"guidechat/internal/model"
	"guidechat/internal/repository"
)

const searchLogTimeout = 5 * time.Second

// Backend is the property search backend.
type Backend interface {
	Search(ctx context.Context, params url.Values) ([]model.PropertyRecord, error)
}

// SearchResult is the outcome of a search for one conversation.
type SearchResult struct {
	Criteria   model.SearchCriteria
	Params     url.Values
	Properties []model.PropertyRecord
	Total      int
	Took       time.Duration
}

// SearchService handles search business logic
type SearchService struct {
	backend      Backend
	composer     *Composer
	ranker       *Ranker
	logs         repository.SearchLogger
	displayLimit int
	log          *logging.Logger
}

// NewSearchService creates a new search service. logs may be nil.
func NewSearchService(
	backend Backend,
	composer *Composer,
	ranker *Ranker,
	logs repository.SearchLogger,
	displayLimit int,
	log *logging.Logger,
) *SearchService {
	if log == nil {
		log = logging.Nop()
	}
	return &SearchService{
		backend:      backend,
		composer:     composer,
		ranker:       ranker,
		logs:         logs,
		displayLimit: displayLimit,
		log:          log.Sub("search"),
	}
}

// Search composes criteria from the collected data and queries the backend.
// A backend failure yields zero results, never an error.
func (s *SearchService) Search(ctx context.Context, sessionID string, data model.CollectedData) *SearchResult {
	startTime := time.Now()

	criteria := Compose(data)
	params := s.composer.ToQueryParams(ctx, criteria)

	properties, err := s.backend.Search(ctx, params)
	if err != nil {
		metrics.RecordUpstreamFailure("search")
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("property search failed")
		properties = []model.PropertyRecord{}
	}

	provinces := s.provinceNames()
	for _, p := range properties {
		decorateLocation(p, provinces)
	}
	if s.ranker != nil {
		properties = s.ranker.Rank(properties, criteria)
	}

	total := len(properties)
	shown := properties
	if s.displayLimit > 0 && len(shown) > s.displayLimit {
		shown = shown[:s.displayLimit]
	}

	took := time.Since(startTime)
	metrics.ObserveSearchResults(total)
	s.log.Info().
		Str("session_id", sessionID).
		Int("total", total).
		Dur("took", took).
		Msg("search completed")

	if s.logs != nil {
		entry := model.SearchLog{
			SessionID:   sessionID,
			Criteria:    criteria,
			Params:      flatten(params),
			ResultCount: total,
			TookMs:      int(took.Milliseconds()),
		}
		// Log search (non-blocking)
		go func() {
			logCtx, cancel := context.WithTimeout(context.Background(), searchLogTimeout)
			defer cancel()
			if err := s.logs.LogSearch(logCtx, entry); err != nil {
				s.log.Warn().Err(err).Str("session_id", sessionID).Msg("search log failed")
			}
		}()
	}

	return &SearchResult{
		Criteria:   criteria,
		Params:     params,
		Properties: shown,
		Total:      total,
		Took:       took,
	}
}

func (s *SearchService) provinceNames() map[string]string {
	names := make(map[string]string)
	if s.composer == nil || s.composer.ref == nil {
		return names
	}
	for _, p := range s.composer.ref.Provinces() {
		if p.ID != "" {
			names[p.ID] = p.Name
		}
	}
	return names
}

// decorateLocation gives a property a location object built from its raw
// address fields, unless the backend already supplied a usable one.
func decorateLocation(p model.PropertyRecord, provinces map[string]string) {
	if existing := p.Map("location"); existing != nil {
		for _, key := range []string{"provinceName", "wardName", "detailAddress"} {
			if existing.String(key) != "" {
				return
			}
		}
	}

	loc := model.JSONMap{}
	if v := scalar(p["province"]); v != "" {
		if name, ok := provinces[v]; ok {
			v = name
		}
		loc["provinceName"] = v
	}
	if v := scalar(p["ward"]); v != "" {
		loc["wardName"] = v
	}
	if v := scalar(p["detailAddress"]); v != "" {
		loc["detailAddress"] = v
	}

	if len(loc) == 0 {
		keys := make([]string, 0, len(p))
		for k := range p {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !strings.Contains(strings.ToLower(k), "address") {
				continue
			}
			if v := scalar(p[k]); v != "" {
				loc["detailAddress"] = v
				break
			}
		}
	}
	p["location"] = loc
}

// scalar renders a string or number field as text.
func scalar(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	}
	return ""
}

func flatten(v url.Values) map[string]string {
	out := make(map[string]string, len(v))
	for k := range v {
		out[k] = v.Get(k)
	}
	return out
}
