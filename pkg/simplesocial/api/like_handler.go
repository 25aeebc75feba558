package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-social/pkg/simplesocial"
)

// LikeHandler handles HTTP requests for the likes of a post
type LikeHandler struct {
	service simplesocial.Service
}

// NewLikeHandler creates a new like handler
func NewLikeHandler(service simplesocial.Service) *LikeHandler {
	return &LikeHandler{service: service}
}

// Routes returns the routes for likes
func (h *LikeHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.AddLike)
	r.Delete("/", h.RemoveLike)

	return r
}

// AddLike records a like; liking twice is not an error
func (h *LikeHandler) AddLike(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLikeRequest(w, r)
	if !ok {
		return
	}

	post, err := h.service.AddLike(r.Context(), chi.URLParam(r, "postID"), req.Username)
	if err != nil {
		renderServiceError(w, r, err, postNotFoundMessage)
		return
	}
	render.JSON(w, r, toLikeResponse(post))
}

// RemoveLike withdraws a like; withdrawing an absent like is not an error
func (h *LikeHandler) RemoveLike(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLikeRequest(w, r)
	if !ok {
		return
	}

	post, err := h.service.RemoveLike(r.Context(), chi.URLParam(r, "postID"), req.Username)
	if err != nil {
		renderServiceError(w, r, err, postNotFoundMessage)
		return
	}
	render.JSON(w, r, toLikeResponse(post))
}
