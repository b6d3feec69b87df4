// Package watch drives the movie page: details, trailer, favorite toggle,
// ratings and comments.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"samfilms/client/internal/clients/backend"
	"samfilms/client/internal/domain/models"
	"samfilms/client/internal/domain/movieref"
	"samfilms/client/internal/lib/optimistic"
)

type Backend interface {
	GetMovie(ctx context.Context, id string) (*backend.Envelope, error)

	CheckFavorite(ctx context.Context, movieID string) (*backend.Envelope, error)
	AddFavorite(ctx context.Context, movieID string) (*backend.Envelope, error)
	RemoveFavorite(ctx context.Context, movieID string) (*backend.Envelope, error)

	CommentsByMovie(ctx context.Context, movieID string) (*backend.Envelope, error)
	CreateComment(ctx context.Context, in backend.CreateCommentInput) (*backend.Envelope, error)
	UpdateComment(ctx context.Context, id, contenido, usuarioID string) (*backend.Envelope, error)
	DeleteComment(ctx context.Context, id, usuarioID string) (*backend.Envelope, error)

	SubmitRating(ctx context.Context, ref movieref.Ref, value int) (*backend.Envelope, error)
	UserRating(ctx context.Context, ref movieref.Ref) (*backend.Envelope, error)
	RatingAverage(ctx context.Context, ref movieref.Ref) (*backend.Envelope, error)
}

type SessionStore interface {
	LoadToken(ctx context.Context) (string, error)
	LoadUser(ctx context.Context) (*models.User, error)
	CachedRating(ctx context.Context, movieID string) (int, bool)
	CacheRating(ctx context.Context, movieID string, rating int) error
	ForgetRating(ctx context.Context, movieID string) error
}

type TrailerFinder interface {
	Trailer(ctx context.Context, movie *models.Movie) (string, error)
}

// State is a snapshot of the page. UserRating is 0 when the user has not rated.
type State struct {
	RouteID    string
	Movie      *models.Movie
	Ref        movieref.Ref
	Trailer    string
	IsFavorite bool
	Comments   []models.Comment
	UserRating int
	Average    float64
	Count      int
}

type WatchService struct {
	log      *slog.Logger
	api      Backend
	session  SessionStore
	trailers TrailerFinder
	resolver *movieref.Resolver

	mu           sync.Mutex
	state        State
	savingRating bool
	togglingFav  bool
}

func New(log *slog.Logger, api Backend, session SessionStore, trailers TrailerFinder) *WatchService {
	s := &WatchService{
		log:      log,
		api:      api,
		session:  session,
		trailers: trailers,
	}
	s.resolver = movieref.NewResolver(s.lookup)
	return s
}

func (s *WatchService) lookup(ctx context.Context, routeID string) (movieref.Candidates, error) {
	env, err := s.api.GetMovie(ctx, routeID)
	if err != nil {
		return movieref.Candidates{}, err
	}
	movie, err := backend.Decode[models.Movie](env)
	if err != nil {
		return movieref.Candidates{}, err
	}
	return movie.RefCandidates(), nil
}

// Open loads the movie for routeID. Only a failure to load the movie itself is an
// error; trailer, favorite, comment and rating lookups degrade silently.
func (s *WatchService) Open(ctx context.Context, routeID string) (State, error) {
	const op = "watch.WatchService.Open"
	log := s.log.With("op", op, "movie", routeID)

	env, err := s.api.GetMovie(ctx, routeID)
	if err != nil {
		log.Error("Error loading movie", "errMsg", err.Error())
		return State{}, err
	}
	movie, err := backend.Decode[models.Movie](env)
	if err != nil {
		log.Error("Error decoding movie", "errMsg", err.Error())
		return State{}, err
	}
	ref, err := movieref.Resolve(movie.RefCandidates(), routeID)
	if err != nil {
		log.Warn("movie has no usable reference", "errMsg", err.Error())
	}

	s.mu.Lock()
	s.state = State{RouteID: routeID, Movie: &movie, Ref: ref}
	s.mu.Unlock()

	s.loadTrailer(ctx, &movie)
	s.loadFavorite(ctx, ref)
	if err := s.loadComments(ctx); err != nil {
		log.Warn("Error loading comments", "errMsg", err.Error())
	}
	s.loadRatings(ctx, ref)
	return s.State(), nil
}

func (s *WatchService) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Comments = append([]models.Comment(nil), s.state.Comments...)
	return st
}

func (s *WatchService) routeID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Movie == nil {
		return "", ErrNotOpened
	}
	return s.state.RouteID, nil
}

func (s *WatchService) loadTrailer(ctx context.Context, movie *models.Movie) {
	if s.trailers == nil {
		return
	}
	url, err := s.trailers.Trailer(ctx, movie)
	if err != nil {
		s.log.Debug("trailer unavailable", "op", "watch.WatchService.loadTrailer", "errMsg", err.Error())
		return
	}
	s.mu.Lock()
	s.state.Trailer = url
	s.mu.Unlock()
}

func (s *WatchService) loadFavorite(ctx context.Context, ref movieref.Ref) {
	const op = "watch.WatchService.loadFavorite"
	if ref.IsZero() || !s.hasToken(ctx) {
		return
	}
	env, err := s.api.CheckFavorite(ctx, ref.String())
	if err != nil {
		s.log.Debug("Error checking favorite", "op", op, "errMsg", err.Error())
		return
	}
	check, err := backend.Decode[models.FavoriteCheck](env)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.state.IsFavorite = check.IsFavorite
	s.mu.Unlock()
}

func (s *WatchService) loadComments(ctx context.Context) error {
	routeID, err := s.routeID()
	if err != nil {
		return err
	}
	env, err := s.api.CommentsByMovie(ctx, routeID)
	if err != nil {
		return err
	}
	comments, err := backend.Decode[[]models.Comment](env)
	if err != nil && !errors.Is(err, backend.ErrNoData) {
		return err
	}
	s.mu.Lock()
	s.state.Comments = comments
	s.mu.Unlock()
	return nil
}

// loadRatings refreshes the aggregate and, with a session, the user's own rating.
func (s *WatchService) loadRatings(ctx context.Context, ref movieref.Ref) {
	const op = "watch.WatchService.loadRatings"
	log := s.log.With("op", op)
	if ref.IsZero() {
		return
	}
	s.loadAverage(ctx, ref)
	if !s.hasToken(ctx) {
		s.mu.Lock()
		s.state.UserRating = 0
		s.mu.Unlock()
		return
	}
	env, err := s.api.UserRating(ctx, ref)
	if err != nil {
		log.Warn("Error fetching user rating", "errMsg", err.Error())
		return
	}
	rating, err := backend.Decode[models.UserRating](env)
	if err != nil && !errors.Is(err, backend.ErrNoData) {
		log.Warn("Error decoding user rating", "errMsg", err.Error())
		return
	}
	s.mu.Lock()
	s.state.UserRating = rating.Rating
	routeID := s.state.RouteID
	s.mu.Unlock()
	if rating.Rating > 0 {
		_ = s.session.CacheRating(ctx, routeID, rating.Rating)
	}
}

func (s *WatchService) loadAverage(ctx context.Context, ref movieref.Ref) {
	env, err := s.api.RatingAverage(ctx, ref)
	if err != nil {
		s.log.Warn("Error fetching rating average", "op", "watch.WatchService.loadAverage", "errMsg", err.Error())
		return
	}
	avg, err := backend.Decode[models.RatingAverage](env)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.state.Average = avg.Average
	s.state.Count = avg.Count
	s.mu.Unlock()
}

func (s *WatchService) hasToken(ctx context.Context) bool {
	token, err := s.session.LoadToken(ctx)
	return err == nil && token != ""
}

// ToggleFavorite adds or removes the open movie. The favorite flag only changes
// once the backend confirms.
func (s *WatchService) ToggleFavorite(ctx context.Context) (bool, error) {
	const op = "watch.WatchService.ToggleFavorite"
	log := s.log.With("op", op)
	routeID, err := s.routeID()
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	if s.togglingFav {
		s.mu.Unlock()
		return false, ErrInProgress
	}
	s.togglingFav = true
	wasFavorite := s.state.IsFavorite
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.togglingFav = false
		s.mu.Unlock()
	}()

	ref, err := s.resolver.Resolve(ctx, routeID)
	if err != nil {
		return wasFavorite, err
	}
	var env *backend.Envelope
	if wasFavorite {
		env, err = s.api.RemoveFavorite(ctx, ref.String())
	} else {
		env, err = s.api.AddFavorite(ctx, ref.String())
	}
	if err == nil {
		err = backend.Check(env)
	}
	if err != nil {
		log.Error("Error toggling favorite", "errMsg", err.Error())
		return wasFavorite, err
	}

	s.mu.Lock()
	s.state.IsFavorite = !wasFavorite
	s.mu.Unlock()
	return !wasFavorite, nil
}

type ratingSnapshot struct {
	shown     int
	cached    int
	hasCached bool
}

// Rate shows star at once, remembers it in the session cache and reverts both if
// the backend refuses it.
func (s *WatchService) Rate(ctx context.Context, star int) error {
	const op = "watch.WatchService.Rate"
	log := s.log.With("op", op, "rating", star)
	if star < 1 || star > 5 {
		return ErrInvalidRating
	}
	routeID, err := s.routeID()
	if err != nil {
		return err
	}
	if !s.hasToken(ctx) {
		return ErrLoginRequired
	}

	s.mu.Lock()
	if s.savingRating {
		s.mu.Unlock()
		return ErrInProgress
	}
	s.savingRating = true
	shown := s.state.UserRating
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.savingRating = false
		s.mu.Unlock()
	}()

	ref, err := s.resolver.Resolve(ctx, routeID)
	if err != nil {
		return err
	}
	cached, hasCached := s.session.CachedRating(ctx, routeID)

	err = optimistic.Apply(ctx, optimistic.Update[ratingSnapshot]{
		Prior:     ratingSnapshot{shown: shown, cached: cached, hasCached: hasCached},
		Candidate: ratingSnapshot{shown: star, cached: star, hasCached: true},
		Set:       func(r ratingSnapshot) { s.setRating(ctx, routeID, r) },
		Commit: func(ctx context.Context) error {
			env, err := s.api.SubmitRating(ctx, ref, star)
			if err != nil {
				return err
			}
			return backend.Check(env)
		},
	})
	if err != nil {
		log.Error("rating reverted", "errMsg", err.Error())
		if backend.IsUnauthorized(err) {
			return ErrLoginRequired
		}
		return err
	}
	s.loadAverage(ctx, ref)
	return nil
}

func (s *WatchService) setRating(ctx context.Context, routeID string, r ratingSnapshot) {
	s.mu.Lock()
	s.state.UserRating = r.shown
	s.mu.Unlock()
	var err error
	if r.hasCached {
		err = s.session.CacheRating(ctx, routeID, r.cached)
	} else {
		err = s.session.ForgetRating(ctx, routeID)
	}
	if err != nil {
		s.log.Warn("Error updating cached rating", "op", "watch.WatchService.setRating", "errMsg", err.Error())
	}
}

func (s *WatchService) currentUserID(ctx context.Context) (string, error) {
	user, err := s.session.LoadUser(ctx)
	if err != nil {
		return "", err
	}
	if user == nil || user.ID.IsZero() {
		return "", ErrLoginRequired
	}
	return user.ID.String(), nil
}

// Comment posts text on the open movie and reloads the comment list.
func (s *WatchService) Comment(ctx context.Context, text string) error {
	const op = "watch.WatchService.Comment"
	log := s.log.With("op", op)
	routeID, err := s.routeID()
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyComment
	}
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return err
	}
	ref, err := s.resolver.Resolve(ctx, routeID)
	if err != nil {
		return err
	}
	env, err := s.api.CreateComment(ctx, backend.CreateCommentInput{UsuarioID: userID, Contenido: text, Ref: ref})
	if err == nil {
		err = backend.Check(env)
	}
	if err != nil {
		log.Error("Error creating comment", "errMsg", err.Error())
		return err
	}
	if err := s.loadComments(ctx); err != nil {
		log.Warn("Error reloading comments", "errMsg", err.Error())
	}
	return nil
}

func (s *WatchService) ownComment(ctx context.Context, id string) (string, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.state.Comments {
		if c.ID.String() != id {
			continue
		}
		if !c.IsOwnedBy(userID) {
			return "", ErrNotOwner
		}
		return userID, nil
	}
	return "", ErrCommentNotFound
}

func (s *WatchService) EditComment(ctx context.Context, id, text string) error {
	const op = "watch.WatchService.EditComment"
	log := s.log.With("op", op, "comment", id)
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyComment
	}
	userID, err := s.ownComment(ctx, id)
	if err != nil {
		return err
	}
	env, err := s.api.UpdateComment(ctx, id, text, userID)
	if err != nil {
		log.Error("Error updating comment", "errMsg", err.Error())
		return err
	}
	updated, err := backend.Decode[models.Comment](env)
	if err != nil && !errors.Is(err, backend.ErrNoData) {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Comments {
		c := &s.state.Comments[i]
		if c.ID.String() != id {
			continue
		}
		c.Content = text
		if !updated.ID.IsZero() {
			c.Edited = updated.Edited
			c.UpdatedAt = updated.UpdatedAt
		}
	}
	return nil
}

func (s *WatchService) DeleteComment(ctx context.Context, id string) error {
	const op = "watch.WatchService.DeleteComment"
	log := s.log.With("op", op, "comment", id)
	userID, err := s.ownComment(ctx, id)
	if err != nil {
		return err
	}
	env, err := s.api.DeleteComment(ctx, id, userID)
	if err == nil {
		err = backend.Check(env)
	}
	if err != nil {
		log.Error("Error deleting comment", "errMsg", err.Error())
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.state.Comments[:0]
	for _, c := range s.state.Comments {
		if c.ID.String() != id {
			kept = append(kept, c)
		}
	}
	s.state.Comments = kept
	return nil
}
