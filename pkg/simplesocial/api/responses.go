package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/tendant/simple-social/pkg/simplesocial"
)

// Error codes carried in ErrorResponse.Error
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// PostResponse is the response body for a post
type PostResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Likes     int       `json:"likes"`
	LikesBy   []string  `json:"likes_by"`
}

// CommentResponse is the response body for a comment. Comments cannot be liked,
// so Likes is always zero.
type CommentResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Likes     int       `json:"likes"`
}

// LikeResponse is the response body for like and unlike
type LikeResponse struct {
	PostID  string   `json:"post_id"`
	Likes   int      `json:"likes"`
	LikedBy []string `json:"liked_by"`
}

func toPostResponse(p *simplesocial.Post) PostResponse {
	likedBy := p.LikedBy
	if likedBy == nil {
		likedBy = []string{}
	}
	return PostResponse{
		ID:        p.ID,
		Username:  p.Author,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Likes:     p.LikeCount,
		LikesBy:   likedBy,
	}
}

func toCommentResponse(c *simplesocial.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		Username:  c.Author,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toLikeResponse(p *simplesocial.Post) LikeResponse {
	likedBy := p.LikedBy
	if likedBy == nil {
		likedBy = []string{}
	}
	return LikeResponse{PostID: p.ID, Likes: p.LikeCount, LikedBy: likedBy}
}

func renderError(w http.ResponseWriter, r *http.Request, status int, body ErrorResponse) {
	render.Status(r, status)
	render.JSON(w, r, body)
}

func renderValidationError(w http.ResponseWriter, r *http.Request, details []string) {
	renderError(w, r, http.StatusBadRequest, ErrorResponse{
		Error:   CodeValidation,
		Message: "The request body is invalid",
		Details: details,
	})
}

func renderNotFound(w http.ResponseWriter, r *http.Request, message string) {
	renderError(w, r, http.StatusNotFound, ErrorResponse{Error: CodeNotFound, Message: message})
}

func renderInternalError(w http.ResponseWriter, r *http.Request) {
	renderError(w, r, http.StatusInternalServerError, ErrorResponse{
		Error:   CodeInternal,
		Message: "An unexpected error occurred",
	})
}

// renderServiceError maps a service error to a response. Forbidden is reported
// as not found so a non-owner cannot tell the two apart.
func renderServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMessage string) {
	switch {
	case simplesocial.IsNotFound(err), simplesocial.IsForbidden(err):
		renderNotFound(w, r, notFoundMessage)
	default:
		slog.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		renderInternalError(w, r)
	}
}

// renderDecodeError maps a body decoding failure to a response.
func renderDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		renderError(w, r, http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   CodePayloadTooLarge,
			Message: "The request body is too large",
		})
		return
	}
	renderValidationError(w, r, []string{"body must be a valid JSON object"})
}
