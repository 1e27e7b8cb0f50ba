// README: Lost & found service: reporting, lookup, and description matching.
package lostfound

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"busline/internal/ai"
	"busline/internal/types"
)

var ErrBadReport = errors.New("invalid report")

type ReportStore interface {
	Create(ctx context.Context, r *Report) error
	Get(ctx context.Context, id types.ID) (*Report, error)
	ListByBus(ctx context.Context, busCode string) ([]*Report, error)
	ListByStatus(ctx context.Context, busCode string, status Status) ([]*Report, error)
	MarkFound(ctx context.Context, id types.ID, foundBy string) error
}

type Service struct {
	store   ReportStore
	matcher ai.DescriptionMatcher // nil when no API key is configured
	log     *slog.Logger
}

func NewService(store ReportStore, matcher ai.DescriptionMatcher, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, matcher: matcher, log: log}
}

type ReportCommand struct {
	BusCode     string `json:"busCode"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Destination string `json:"destination"`
	ReportedBy  string `json:"reportedBy"`
}

func (s *Service) Report(ctx context.Context, cmd ReportCommand) (*Report, error) {
	cmd.BusCode = strings.TrimSpace(cmd.BusCode)
	cmd.Description = strings.TrimSpace(cmd.Description)
	if cmd.BusCode == "" || cmd.Description == "" {
		return nil, ErrBadReport
	}

	r := &Report{
		ID:          newReportID(),
		BusCode:     cmd.BusCode,
		Category:    strings.TrimSpace(cmd.Category),
		Description: cmd.Description,
		Destination: strings.TrimSpace(cmd.Destination),
		ReportedBy:  strings.TrimSpace(cmd.ReportedBy),
		Status:      StatusMissing,
		ReportedAt:  time.Now().UTC(),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Report, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Search(ctx context.Context, busCode string) ([]*Report, error) {
	return s.store.ListByBus(ctx, strings.TrimSpace(busCode))
}

func (s *Service) MarkFound(ctx context.Context, id types.ID, foundBy string) error {
	return s.store.MarkFound(ctx, id, strings.TrimSpace(foundBy))
}

// Suggest ranks found reports on the same bus that plausibly match the given
// missing report's description. The AI matcher is consulted when configured;
// otherwise a keyword-overlap score decides the order.
func (s *Service) Suggest(ctx context.Context, id types.ID) ([]*Report, error) {
	missing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	found, err := s.store.ListByStatus(ctx, missing.BusCode, StatusFound)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}

	descriptions := make([]string, len(found))
	for i, r := range found {
		descriptions[i] = r.Description
	}

	indices := s.rank(ctx, missing.Description, descriptions)
	matches := make([]*Report, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(found) {
			matches = append(matches, found[idx])
		}
	}
	return matches, nil
}

func (s *Service) rank(ctx context.Context, query string, candidates []string) []int {
	if s.matcher == nil {
		return KeywordMatch(query, candidates)
	}
	indices, err := s.matcher.RankMatches(ctx, query, candidates)
	if err != nil {
		s.log.Warn("ai match failed, using keyword fallback", "error", err)
		return KeywordMatch(query, candidates)
	}
	return indices
}

func newReportID() types.ID {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return types.ID("lf_" + hex.EncodeToString(b))
}
