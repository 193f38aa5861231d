package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"matchday/internal/metrics"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const browserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

// SofaScore wraps the unauthenticated statistics API used for standings,
// events, players and teams. Payloads are passed through untouched.
type SofaScore struct {
	baseURL string
	client  *resty.Client
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

// NewSofaScore creates a client against baseURL.
func NewSofaScore(baseURL string, log logrus.FieldLogger, m *metrics.Metrics) *SofaScore {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", browserUserAgent)
	return &SofaScore{baseURL: strings.TrimRight(baseURL, "/"), client: client, log: log, metrics: m}
}

func (s *SofaScore) get(ctx context.Context, path string) (json.RawMessage, error) {
	resp, err := s.client.R().SetContext(ctx).Get(path)
	if err != nil {
		s.metrics.ProviderRequest("sofascore", "error")
		return nil, fmt.Errorf("sofascore %s: %w", path, err)
	}
	s.log.WithFields(logrus.Fields{"path": path, "status": resp.StatusCode()}).Debug("sofascore request")
	if !resp.IsSuccess() {
		s.metrics.ProviderRequest("sofascore", "upstream_"+strconv.Itoa(resp.StatusCode()))
		return nil, &UpstreamError{Provider: "sofascore", Status: resp.StatusCode(), Body: truncate(resp.String(), 200)}
	}
	s.metrics.ProviderRequest("sofascore", "ok")
	if !json.Valid(resp.Body()) {
		return nil, fmt.Errorf("sofascore %s: response is not JSON", path)
	}
	return json.RawMessage(resp.Body()), nil
}

// Standings returns the total standings table of a tournament season.
func (s *SofaScore) Standings(ctx context.Context, tournamentID, seasonID int64) (json.RawMessage, error) {
	return s.get(ctx, fmt.Sprintf("/unique-tournament/%d/season/%d/standings/total", tournamentID, seasonID))
}

// Event returns one event (match) with its score and status.
func (s *SofaScore) Event(ctx context.Context, id int64) (json.RawMessage, error) {
	return s.get(ctx, "/event/"+strconv.FormatInt(id, 10))
}

// Team returns team details.
func (s *SofaScore) Team(ctx context.Context, id int64) (json.RawMessage, error) {
	return s.get(ctx, "/team/"+strconv.FormatInt(id, 10))
}

// Player returns player details.
func (s *SofaScore) Player(ctx context.Context, id int64) (json.RawMessage, error) {
	return s.get(ctx, "/player/"+strconv.FormatInt(id, 10))
}

// DirectURL is the address browsers should call themselves for path.
func (s *SofaScore) DirectURL(path string) string {
	return s.baseURL + "/" + strings.TrimLeft(path, "/")
}
