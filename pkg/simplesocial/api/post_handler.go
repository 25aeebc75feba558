package api

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-social/pkg/simplesocial"
)

const postNotFoundMessage = "Post not found"

// PostHandler handles HTTP requests for posts
type PostHandler struct {
	service  simplesocial.Service
	comments *CommentHandler
	likes    *LikeHandler
}

// NewPostHandler creates a new post handler
func NewPostHandler(service simplesocial.Service) *PostHandler {
	return &PostHandler{
		service:  service,
		comments: NewCommentHandler(service),
		likes:    NewLikeHandler(service),
	}
}

// Routes returns the routes for posts, including their comments and likes
func (h *PostHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListPosts)
	r.Post("/", h.CreatePost)

	r.Route("/{postID}", func(r chi.Router) {
		r.Get("/", h.GetPost)
		r.Patch("/", h.UpdatePost)
		r.Delete("/", h.DeletePost)

		r.Mount("/comments", h.comments.Routes())
		r.Mount("/likes", h.likes.Routes())
	})

	return r
}

// ListPosts returns every post, newest first
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListPosts(r.Context())
	if err != nil {
		renderServiceError(w, r, err, postNotFoundMessage)
		return
	}

	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})

	resp := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, toPostResponse(p))
	}
	render.JSON(w, r, resp)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeContentRequest(w, r, MaxPostContentLength)
	if !ok {
		return
	}

	post, err := h.service.CreatePost(r.Context(), simplesocial.CreatePostRequest{
		Author:  req.Username,
		Content: req.Content,
	})
	if err != nil {
		renderServiceError(w, r, err, postNotFoundMessage)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toPostResponse(post))
}

// GetPost returns a single post
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPost(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		renderServiceError(w, r, err, postNotFoundMessage)
		return
	}
	render.JSON(w, r, toPostResponse(post))
}

// UpdatePost replaces the content of a post owned by the given username
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeContentRequest(w, r, MaxPostContentLength)
	if !ok {
		return
	}

	post, err := h.service.UpdatePost(r.Context(), simplesocial.UpdatePostRequest{
		ID:      chi.URLParam(r, "postID"),
		Author:  req.Username,
		Content: req.Content,
	})
	if err != nil {
		renderServiceError(w, r, err, "Post not found or you don't have permission to update it")
		return
	}
	render.JSON(w, r, toPostResponse(post))
}

// DeletePost deletes a post together with its comments and likes
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePost(r.Context(), chi.URLParam(r, "postID")); err != nil {
		renderServiceError(w, r, err, postNotFoundMessage)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
