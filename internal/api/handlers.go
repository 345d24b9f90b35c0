package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/glefebvre/moviesearch/internal/errors"
	"github.com/glefebvre/moviesearch/internal/imagefallback"
	"github.com/glefebvre/moviesearch/internal/models"
)

func (s *Server) healthCheck(c *gin.Context) {
	resp := HealthResponse{Status: "healthy", Store: "ready", Storage: "ok"}
	status := http.StatusOK

	if !s.store.Ready() {
		resp.Status = "unhealthy"
		resp.Store = "not_ready"
		status = http.StatusServiceUnavailable
	}

	if s.blobs != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.blobs.Ping(ctx); err != nil {
			resp.Status = "unhealthy"
			resp.Storage = "unreachable"
			resp.Error = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	if s.catalog != nil {
		resp.Catalog = s.catalog.BreakerState().String()
	}
	resp.Posters = s.posters.Len()

	select {
	case <-s.stopping:
		resp.Status = "shutting_down"
		status = http.StatusServiceUnavailable
	default:
	}

	c.JSON(status, resp)
}

func (s *Server) getSearch(c *gin.Context) {
	c.JSON(http.StatusOK, s.searchResponse())
}

func (s *Server) updateSearch(c *gin.Context) {
	var req UpdateSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid request",
			Message: "text is required",
		})
		return
	}

	err := s.store.UpdateSearchText(c.Request.Context(), *req.Text)
	s.prunePosters()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, s.searchResponse())
}

func (s *Server) resetSearch(c *gin.Context) {
	s.store.ResetSearchData()
	s.prunePosters()
	c.Status(http.StatusNoContent)
}

func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		SearchStatus: s.store.SearchStatus(),
		IsQuerying:   s.store.IsQuerying(),
	})
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Snapshot())
}

func (s *Server) listMovies(c *gin.Context) {
	items := s.store.Movies()
	if c.Query("all") == "true" {
		items = s.store.SearchData()
	}
	c.JSON(http.StatusOK, gin.H{
		"movies": s.movieResponses(items),
	})
}

func (s *Server) fetchMovie(c *gin.Context) {
	detail, err := s.store.FetchMovieDetail(c.Request.Context(), c.Param("id"))
	s.prunePosters()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.detailResponse(detail))
}

func (s *Server) getDetail(c *gin.Context) {
	detail := s.store.MovieToDetail()
	if detail == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not found",
			Message: "no movie selected",
			Code:    string(errors.CodeNotFound),
		})
		return
	}
	c.JSON(http.StatusOK, s.detailResponse(detail))
}

func (s *Server) listFavourites(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"favourites": s.movieResponses(s.store.FavouriteMovies()),
	})
}

func (s *Server) addFavourite(c *gin.Context) {
	var req FavouriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid request",
			Message: "imdbID is required",
		})
		return
	}

	item := req.ListItem()
	if known, ok := s.store.FindItem(item.ImdbID); ok {
		item = fillMissing(item, known)
	}

	if err := s.store.AddMovieToFavourites(c.Request.Context(), item); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"favourites": s.movieResponses(s.store.FavouriteMovies()),
	})
}

func (s *Server) removeFavourite(c *gin.Context) {
	item := models.MovieListItem{ImdbID: strings.TrimSpace(c.Param("id"))}
	if err := s.store.RemoveMovieFromFavourites(c.Request.Context(), item); err != nil {
		respondError(c, err)
		return
	}
	s.prunePosters()

	c.JSON(http.StatusOK, gin.H{
		"favourites": s.movieResponses(s.store.FavouriteMovies()),
	})
}

func (s *Server) listErrors(c *gin.Context) {
	c.JSON(http.StatusOK, ErrorsResponse{Errors: s.store.APIErrors()})
}

func (s *Server) clearErrors(c *gin.Context) {
	s.store.ClearErrors()
	c.Status(http.StatusNoContent)
}

func (s *Server) getPoster(c *gin.Context) {
	s.posterAction(c, s.posters.Resolve)
}

func (s *Server) reportPosterFailure(c *gin.Context) {
	s.posterAction(c, s.posters.ReportLoadFailure)
}

func (s *Server) resetPoster(c *gin.Context) {
	s.posterAction(c, s.posters.Reset)
}

func (s *Server) posterAction(c *gin.Context, action func(id, poster string) imagefallback.State) {
	id := c.Param("id")
	item, ok := s.store.FindItem(id)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not found",
			Message: "movie not found: " + id,
			Code:    string(errors.CodeNotFound),
		})
		return
	}
	c.JSON(http.StatusOK, PosterResponse{ImdbID: id, State: action(id, item.Poster)})
}

// prunePosters drops the fallback state of ids the store no longer holds
func (s *Server) prunePosters() {
	if dropped := s.posters.Retain(s.store.LiveIDs()...); dropped > 0 {
		s.logger.WithFields(map[string]interface{}{
			"dropped":  dropped,
			"retained": s.posters.Len(),
		}).Debug("pruned poster fallback state")
	}
}

func (s *Server) searchResponse() SearchResponse {
	snap := s.store.Snapshot()
	return SearchResponse{
		SearchText:   snap.SearchText,
		Searches:     snap.Searches,
		SearchStatus: snap.SearchStatus,
		IsQuerying:   snap.IsQuerying,
		Movies:       s.movieResponses(snap.Movies),
		APIErrors:    snap.APIErrors,
	}
}

func (s *Server) movieResponses(items []models.MovieListItem) []MovieResponse {
	out := make([]MovieResponse, len(items))
	for i, item := range items {
		state := s.posters.Resolve(item.ImdbID, item.Poster)
		out[i] = MovieResponse{
			MovieListItem:        item,
			PosterURL:            state.URL,
			ShowEmojiPlaceholder: state.ShowEmojiPlaceholder,
		}
	}
	return out
}

func (s *Server) detailResponse(d *models.MovieDetails) DetailResponse {
	state := s.posters.Resolve(d.ImdbID, d.Poster)
	return DetailResponse{
		MovieDetails:         *d,
		PosterURL:            state.URL,
		ShowEmojiPlaceholder: state.ShowEmojiPlaceholder,
	}
}

// fillMissing completes req with the fields it left empty
func fillMissing(req, known models.MovieListItem) models.MovieListItem {
	if req.Title == "" {
		req.Title = known.Title
	}
	if req.Year == "" {
		req.Year = known.Year
	}
	if req.Type == "" {
		req.Type = known.Type
	}
	if req.Poster == "" {
		req.Poster = known.Poster
	}
	return req
}

// respondError maps an error code to an HTTP status
func respondError(c *gin.Context, err error) {
	code := errors.GetErrorCode(err)

	status := http.StatusInternalServerError
	label := "internal error"
	switch code {
	case errors.CodeValidation, errors.CodeInvalidInput:
		status, label = http.StatusBadRequest, "invalid request"
	case errors.CodeNotFound:
		status, label = http.StatusNotFound, "not found"
	case errors.CodeNotReady:
		status, label = http.StatusServiceUnavailable, "not ready"
	case errors.CodeSuperseded:
		status, label = http.StatusConflict, "superseded"
	case errors.CodeTransportFailure, errors.CodeServiceUnavailable,
		errors.CodeServiceTimeout, errors.CodeRateLimited, errors.CodeUnauthorized:
		status, label = http.StatusBadGateway, "upstream error"
	}

	message := err.Error()
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		message = appErr.Message
	}

	c.JSON(status, ErrorResponse{Error: label, Message: message, Code: string(code)})
}
