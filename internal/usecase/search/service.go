package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/secureworks/taegis-magic/internal/bootstrap/logging"
	domainevidence "github.com/secureworks/taegis-magic/internal/domain/evidence"
	"github.com/secureworks/taegis-magic/internal/errs"
	"github.com/secureworks/taegis-magic/internal/ports"
	evidenceuc "github.com/secureworks/taegis-magic/internal/usecase/evidence"
)

// Service runs remote alert and event searches through the injected client
// ports, paginating results into frames and optionally tracking executed
// queries in the evidence store's search-query log.
type Service struct {
	alerts ports.AlertsClient
	events ports.EventsClient
	store  *evidenceuc.Service
	cache  ports.Cache
	newID  func() string
}

func NewService(store *evidenceuc.Service, cache ports.Cache, alerts ports.AlertsClient, events ports.EventsClient) *Service {
	return &Service{
		alerts: alerts,
		events: events,
		store:  store,
		cache:  cache,
		newID:  uuid.NewString,
	}
}

type Input struct {
	TenantID   string
	Query      string
	Limit      int
	CallerName string
	Track      bool
	UseCache   bool
}

func (in Input) request() ports.SearchRequest {
	return ports.SearchRequest{
		TenantID:   in.TenantID,
		Query:      in.Query,
		Limit:      in.Limit,
		CallerName: in.CallerName,
	}
}

type Result struct {
	Frame           domainevidence.Frame
	QueryID         string
	TotalResults    int64
	ResultsReturned int64
	FromCache       bool
}

// Alerts runs an alerts search: one Search call for the first page, then
// Poll per remaining part until every part is fetched or the limit is
// reached. A poll failure reporting an expired search ends the loop; other
// poll failures skip the part.
func (s *Service) Alerts(ctx context.Context, in Input) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, errs.Wrap(err, "check context")
	}
	if s.alerts == nil {
		return Result{}, errors.New("alerts client is not configured")
	}

	if in.UseCache {
		if result, ok := s.fromCache(ctx, "alerts", in); ok {
			return result, nil
		}
	}

	first, err := s.alerts.Search(ctx, in.request())
	if err != nil {
		return Result{}, errs.Wrap(err, "search alerts")
	}

	rows := append([]map[string]any(nil), first.Rows...)

	if first.SearchID != "" {
		for part := 2; part <= first.TotalParts; part++ {
			page, err := s.alerts.Poll(ctx, first.SearchID, part)
			if err != nil {
				logging.Warn(ctx, "alerts poll failed",
					slog.String("search_id", first.SearchID),
					slog.Int("part", part),
					slog.Any("err", errs.Loggable(err)))
				if strings.Contains(err.Error(), "not found") {
					break
				}
				continue
			}

			rows = append(rows, page.Rows...)
			if in.Limit > 0 && len(rows) >= in.Limit {
				break
			}
		}
	}

	result := Result{
		Frame:        domainevidence.FrameFromRows(rows),
		QueryID:      first.QueryID,
		TotalResults: first.TotalResults,
	}
	result.ResultsReturned = int64(len(rows))

	if in.Track {
		if err := s.track(ctx, in, result); err != nil {
			return Result{}, err
		}
	}
	if in.UseCache {
		s.toCache(ctx, "alerts", in, result)
	}

	return result, nil
}

// Events runs an events query, following the continuation token until the
// result set is exhausted or the limit is reached.
func (s *Service) Events(ctx context.Context, in Input) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, errs.Wrap(err, "check context")
	}
	if s.events == nil {
		return Result{}, errors.New("events client is not configured")
	}

	if in.UseCache {
		if result, ok := s.fromCache(ctx, "events", in); ok {
			return result, nil
		}
	}

	page, err := s.events.Query(ctx, in.request())
	if err != nil {
		return Result{}, errs.Wrap(err, "query events")
	}

	queryID := page.QueryID
	totalResults := page.TotalResults
	rows := append([]map[string]any(nil), page.Rows...)

	for page.Next != "" {
		if in.Limit > 0 && len(rows) >= in.Limit {
			break
		}

		page, err = s.events.Page(ctx, page.Next)
		if err != nil {
			logging.Warn(ctx, "events page failed",
				slog.String("query_id", queryID),
				slog.Any("err", errs.Loggable(err)))
			break
		}
		rows = append(rows, page.Rows...)
	}

	result := Result{
		Frame:        domainevidence.FrameFromRows(rows),
		QueryID:      queryID,
		TotalResults: totalResults,
	}
	result.ResultsReturned = int64(len(rows))

	if in.Track {
		if err := s.track(ctx, in, result); err != nil {
			return Result{}, err
		}
	}
	if in.UseCache {
		s.toCache(ctx, "events", in, result)
	}

	return result, nil
}

func (s *Service) track(ctx context.Context, in Input, result Result) error {
	if s.store == nil {
		return errors.New("evidence store is not configured")
	}

	id := result.QueryID
	if id == "" {
		id = s.newID()
	}

	_, err := s.store.InsertSearchQuery(ctx, domainevidence.SearchQuery{
		ID:              id,
		TenantID:        in.TenantID,
		Query:           in.Query,
		ResultsReturned: result.ResultsReturned,
		TotalResults:    result.TotalResults,
	})
	if err != nil {
		return errs.Wrap(err, "track search query")
	}
	return nil
}

// cachedResult is the JSON shape memoized per query hash.
type cachedResult struct {
	QueryID         string           `json:"query_id"`
	TotalResults    int64            `json:"total_results"`
	ResultsReturned int64            `json:"results_returned"`
	Rows            []map[string]any `json:"rows"`
}

func cacheKey(kind string, in Input) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s\x00%s\x00%s\x00%d", kind, in.TenantID, in.Query, in.Limit))
	return kind + ":" + hex.EncodeToString(sum[:])
}

func (s *Service) fromCache(ctx context.Context, kind string, in Input) (Result, bool) {
	if s.cache == nil {
		return Result{}, false
	}

	value, found, err := s.cache.Get(ctx, cacheKey(kind, in))
	if err != nil || !found {
		return Result{}, false
	}

	var cached cachedResult
	if err := json.Unmarshal([]byte(value), &cached); err != nil {
		return Result{}, false
	}

	return Result{
		Frame:           domainevidence.FrameFromRows(cached.Rows),
		QueryID:         cached.QueryID,
		TotalResults:    cached.TotalResults,
		ResultsReturned: cached.ResultsReturned,
		FromCache:       true,
	}, true
}

func (s *Service) toCache(ctx context.Context, kind string, in Input, result Result) {
	if s.cache == nil {
		return
	}

	rows := make([]map[string]any, 0, result.Frame.Len())
	for i := 0; i < result.Frame.Len(); i++ {
		row := result.Frame.Row(i)
		generic := make(map[string]any, len(row))
		for k, v := range row {
			generic[k] = v
		}
		rows = append(rows, generic)
	}

	encoded, err := json.Marshal(cachedResult{
		QueryID:         result.QueryID,
		TotalResults:    result.TotalResults,
		ResultsReturned: result.ResultsReturned,
		Rows:            rows,
	})
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, cacheKey(kind, in), string(encoded), 0); err != nil {
		logging.Warn(ctx, "cache search result failed", slog.Any("err", errs.Loggable(err)))
	}
}
