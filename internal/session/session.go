package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/vk-tinder/internal/logger"
	"github.com/spigell/vk-tinder/internal/matching"
	"github.com/spigell/vk-tinder/internal/profile"
	"github.com/spigell/vk-tinder/internal/storage"
	"github.com/spigell/vk-tinder/internal/vk"
)

const (
	DefaultTopK           = 10
	DefaultMaxEmptyRounds = 10
)

// ErrNoCandidates is returned when too many consecutive search pages had no open profiles.
var ErrNoCandidates = errors.New("no suitable candidates found")

type Fetcher interface {
	Candidates(params *vk.SearchParams) (*profile.Batch, error)
	TopPhotos(id int64) ([]string, error)
}

type Store interface {
	SaveRunState(ctx context.Context, state *storage.RunState) error
	InsertMatches(ctx context.Context, matches profile.Matches) (int, error)
	AddToBlacklist(ctx context.Context, m profile.Match) error
	AddToFavorites(ctx context.Context, m profile.Match) error
}

type Filters interface {
	RunFilters(ctx context.Context, b *profile.Batch) (*profile.Batch, error)
}

type Deps struct {
	Fetcher Fetcher
	Store   Store
	Filters Filters
	Logger  *zap.Logger
}

type Options struct {
	Weights matching.Weights
	// TopK is the nominal result size, rounds return TopK+1 matches.
	TopK           int
	MaxEmptyRounds int
	// Search holds the static part of users.search parameters.
	Search vk.SearchParams
}

// Session drives matching rounds for one reference profile.
type Session struct {
	ID string

	ref     *profile.Reference
	deps    *Deps
	opts    Options
	logger  *zap.Logger
	matches profile.Matches
}

func New(ref *profile.Reference, deps *Deps, opts Options) (*Session, error) {
	if ref == nil || ref.Profile == nil {
		return nil, fmt.Errorf("reference profile is required")
	}
	if deps == nil || deps.Fetcher == nil || deps.Store == nil {
		return nil, fmt.Errorf("fetcher and store are required")
	}

	if opts.MaxEmptyRounds <= 0 {
		opts.MaxEmptyRounds = DefaultMaxEmptyRounds
	}

	id := uuid.NewString()

	return &Session{
		ID:     id,
		ref:    ref,
		deps:   deps,
		opts:   opts,
		logger: logger.WithCommonFields(deps.Logger, ref.ID, id),
	}, nil
}

func (s *Session) Reference() *profile.Reference {
	return s.ref
}

// Matches returns the result of the last round.
func (s *Session) Matches() profile.Matches {
	return s.matches
}

// Round fetches the next page of candidates, ranks them and persists the selection.
func (s *Session) Round(ctx context.Context) (profile.Matches, error) {
	batch, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.deps.Store.SaveRunState(ctx, s.runState()); err != nil {
		return nil, err
	}

	if s.deps.Filters != nil {
		batch, err = s.deps.Filters.RunFilters(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("filtering candidates: %w", err)
		}
	}

	selected := matching.RankAndSelect(s.ref, batch.Items, s.opts.TopK, s.opts.Weights)

	matches := make(profile.Matches, 0, len(selected))
	for _, p := range selected {
		photos, err := s.photos(p.ID)
		if err != nil {
			return nil, err
		}
		p.Photos = photos
		matches = append(matches, p.ToMatch())

		s.logger.Debug("selected candidate",
			zap.String("url", p.URL()),
			zap.Float64("score", p.Score),
			zap.Any("breakdown", matching.Explain(p, s.ref, s.opts.Weights)),
		)
	}

	inserted, err := s.deps.Store.InsertMatches(ctx, matches)
	if err != nil {
		return nil, err
	}

	s.logger.Info("round finished",
		zap.Int("offset", s.ref.Offset),
		zap.Int("candidates", batch.Len()),
		zap.Int("selected", matches.Len()),
		zap.Int("new_matches", inserted),
	)

	s.matches = matches
	return matches, nil
}

func (s *Session) Blacklist(ctx context.Context, m profile.Match) error {
	if err := s.deps.Store.AddToBlacklist(ctx, m); err != nil {
		return err
	}

	s.logger.Info("added to blacklist", zap.String("url", m.URL))
	return nil
}

func (s *Session) Favorite(ctx context.Context, m profile.Match) error {
	if err := s.deps.Store.AddToFavorites(ctx, m); err != nil {
		return err
	}

	s.logger.Info("added to favorites", zap.String("url", m.URL))
	return nil
}

// fetch advances the offset until a page with open profiles shows up.
func (s *Session) fetch(ctx context.Context) (*profile.Batch, error) {
	for empty := 0; ; empty++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s.ref.NextPage()

		batch, err := s.deps.Fetcher.Candidates(s.searchParams())
		switch {
		case errors.Is(err, vk.ErrRateLimited):
			s.logger.Warn("search page skipped because of rate limit", zap.Int("offset", s.ref.Offset))
		case err != nil:
			return nil, fmt.Errorf("fetching candidates: %w", err)
		case batch.Len() > 0:
			return batch, nil
		}

		if empty >= s.opts.MaxEmptyRounds {
			return nil, fmt.Errorf("%w after %d empty pages", ErrNoCandidates, empty+1)
		}

		s.logger.Debug("empty search page", zap.Int("offset", s.ref.Offset))
	}
}

func (s *Session) searchParams() *vk.SearchParams {
	params := s.opts.Search
	params.Count = s.ref.PageSize
	params.Offset = s.ref.Offset

	if params.Sex == 0 && s.ref.Sex != profile.SexClosed {
		params.Sex = int(s.ref.Sex.Opposite())
	}
	if params.City == 0 {
		params.City = s.ref.City.ID
	}
	if s.ref.DesiredAge != nil {
		params.AgeFrom = s.ref.DesiredAge.From
		params.AgeTo = s.ref.DesiredAge.To
	}

	return &params
}

func (s *Session) runState() *storage.RunState {
	state := &storage.RunState{
		ReferenceID: s.ref.ID,
		Offset:      s.ref.Offset,
	}
	if s.ref.DesiredAge != nil {
		state.AgeFrom = s.ref.DesiredAge.From
		state.AgeTo = s.ref.DesiredAge.To
	}

	return state
}

// photos degrades to no photos when the album is hidden or VK keeps throttling.
func (s *Session) photos(id int64) ([]string, error) {
	photos, err := s.deps.Fetcher.TopPhotos(id)
	switch {
	case err == nil:
		return photos, nil
	case vk.IsAccessDenied(err), errors.Is(err, vk.ErrRateLimited):
		s.logger.Debug("photos unavailable", zap.String("url", profile.URL(id)), zap.Error(err))
		return nil, nil
	default:
		return nil, fmt.Errorf("fetching photos of %s: %w", profile.URL(id), err)
	}
}
