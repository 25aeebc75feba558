package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-social/pkg/simplesocial"
)

const commentNotFoundMessage = "Comment not found"

// CommentHandler handles HTTP requests for the comments of a post. It expects
// to be mounted below a route that defines the postID URL parameter.
type CommentHandler struct {
	service simplesocial.Service
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(service simplesocial.Service) *CommentHandler {
	return &CommentHandler{service: service}
}

// Routes returns the routes for comments
func (h *CommentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListComments)
	r.Post("/", h.CreateComment)
	r.Get("/{commentID}", h.GetComment)
	r.Patch("/{commentID}", h.UpdateComment)
	r.Delete("/{commentID}", h.DeleteComment)

	return r
}

// ListComments returns the comments of a post in the order they were created
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	// The store answers an empty list for unknown posts; the 404 is ours to give.
	if _, err := h.service.GetPost(r.Context(), postID); err != nil {
		renderServiceError(w, r, err, postNotFoundMessage)
		return
	}

	comments, err := h.service.ListComments(r.Context(), postID)
	if err != nil {
		renderServiceError(w, r, err, postNotFoundMessage)
		return
	}

	resp := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, toCommentResponse(c))
	}
	render.JSON(w, r, resp)
}

// CreateComment adds a comment to a post
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeContentRequest(w, r, MaxCommentContentLength)
	if !ok {
		return
	}

	comment, err := h.service.CreateComment(r.Context(), simplesocial.CreateCommentRequest{
		PostID:  chi.URLParam(r, "postID"),
		Author:  req.Username,
		Content: req.Content,
	})
	if err != nil {
		renderServiceError(w, r, err, postNotFoundMessage)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toCommentResponse(comment))
}

// GetComment returns a single comment of a post
func (h *CommentHandler) GetComment(w http.ResponseWriter, r *http.Request) {
	comment, err := h.service.GetComment(r.Context(), chi.URLParam(r, "postID"), chi.URLParam(r, "commentID"))
	if err != nil {
		renderServiceError(w, r, err, commentNotFoundMessage)
		return
	}
	render.JSON(w, r, toCommentResponse(comment))
}

// UpdateComment replaces the content of a comment owned by the given username
func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeContentRequest(w, r, MaxCommentContentLength)
	if !ok {
		return
	}

	comment, err := h.service.UpdateComment(r.Context(), simplesocial.UpdateCommentRequest{
		PostID:    chi.URLParam(r, "postID"),
		CommentID: chi.URLParam(r, "commentID"),
		Author:    req.Username,
		Content:   req.Content,
	})
	if err != nil {
		renderServiceError(w, r, err, "Comment not found or you don't have permission to update it")
		return
	}
	render.JSON(w, r, toCommentResponse(comment))
}

// DeleteComment deletes a single comment of a post
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteComment(r.Context(), chi.URLParam(r, "postID"), chi.URLParam(r, "commentID"))
	if err != nil {
		renderServiceError(w, r, err, commentNotFoundMessage)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
