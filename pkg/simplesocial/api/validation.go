package api

import (
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/render"
)

// Field length limits, counted in characters
const (
	MaxUsernameLength       = 100
	MaxPostContentLength    = 500
	MaxCommentContentLength = 300
)

// ContentRequest is the request body for creating or updating a post or comment
type ContentRequest struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

// LikeRequest is the request body for like and unlike
type LikeRequest struct {
	Username string `json:"username"`
}

func (req ContentRequest) validate(maxContent int) []string {
	var details []string
	details = checkLength(details, "username", req.Username, MaxUsernameLength)
	details = checkLength(details, "content", req.Content, maxContent)
	return details
}

func (req LikeRequest) validate() []string {
	return checkLength(nil, "username", req.Username, MaxUsernameLength)
}

func checkLength(details []string, field, value string, limit int) []string {
	if n := utf8.RuneCountInString(value); n < 1 || n > limit {
		details = append(details, fmt.Sprintf("%s must be between 1 and %d characters", field, limit))
	}
	return details
}

// decodeContentRequest decodes and validates the body, rendering the error
// response itself when it returns false.
func decodeContentRequest(w http.ResponseWriter, r *http.Request, maxContent int) (ContentRequest, bool) {
	var req ContentRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderDecodeError(w, r, err)
		return req, false
	}
	if details := req.validate(maxContent); len(details) > 0 {
		renderValidationError(w, r, details)
		return req, false
	}
	return req, true
}

func decodeLikeRequest(w http.ResponseWriter, r *http.Request) (LikeRequest, bool) {
	var req LikeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderDecodeError(w, r, err)
		return req, false
	}
	if details := req.validate(); len(details) > 0 {
		renderValidationError(w, r, details)
		return req, false
	}
	return req, true
}
