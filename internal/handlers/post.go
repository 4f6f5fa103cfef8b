package handlers

import (
	"net/http"
	"strings"

	"github.com/forumhub/apiserver/internal/logging"
	"github.com/forumhub/apiserver/internal/services"
	"github.com/forumhub/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// PostHandler provides HTTP handlers for posts, votes and comments.
type PostHandler struct {
	posts    *services.PostService
	comments *services.CommentService
	log      logging.Logger
}

func NewPostHandler(posts *services.PostService, comments *services.CommentService, log logging.Logger) *PostHandler {
	return &PostHandler{posts: posts, comments: comments, log: log}
}

// PostRouter registers post and comment routes. authMiddleware is the
// authentication gate; throttle guards the unauthenticated comment write.
func PostRouter(r chi.Router, handler *PostHandler, authMiddleware, throttle func(http.Handler) http.Handler) {
	r.Get("/posts", handler.ListPosts)
	r.Get("/posts/count", handler.CountPosts)
	r.Get("/posts/search", handler.SearchPosts)
	r.Get("/post/{postID}", handler.GetPost)
	r.Patch("/post/vote/{postID}", handler.Vote)
	r.With(throttle).Post("/post/comment", handler.CreateComment)
	r.Get("/comment/{postID}", handler.ListComments)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/posts/user/{email}", handler.ListByAuthor)
		r.Get("/posts/user/{email}/count", handler.CountByAuthor)
		r.Post("/posts", handler.CreatePost)
		r.Delete("/posts/{postID}", handler.DeletePost)
	})
}

func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.posts.List(r.Context(), r.URL.Query().Get("sort"), offset, limit)
	if err != nil {
		writeServiceError(w, r, h.log, err, "post not found")
		return
	}
	total, err := h.posts.Count(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err, "post not found")
		return
	}

	writeJSON(w, http.StatusOK, PostListResponse{Items: nonNil(items), Page: page, Limit: limit, Total: total})
}

func (h *PostHandler) CountPosts(w http.ResponseWriter, r *http.Request) {
	total, err := h.posts.Count(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: total})
}

func (h *PostHandler) SearchPosts(w http.ResponseWriter, r *http.Request) {
	items, err := h.posts.SearchByTag(r.Context(), strings.TrimSpace(r.URL.Query().Get("tag")))
	if err != nil {
		writeServiceError(w, r, h.log, err, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		writeServiceError(w, r, h.log, err, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req VoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.posts.Vote(r.Context(), chi.URLParam(r, "postID"), req.Type); err != nil {
		writeServiceError(w, r, h.log, err, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *PostHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req CreateCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.comments.Create(r.Context(), types.Comment{
		PostID:         strings.TrimSpace(req.PostID),
		PostTitle:      req.PostTitle,
		CommenterName:  req.CommenterName,
		CommenterEmail: req.CommenterEmail,
		Text:           req.Text,
	})
	if err != nil {
		writeServiceError(w, r, h.log, err, "post not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	items, err := h.comments.ListByPost(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		writeServiceError(w, r, h.log, err, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (h *PostHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor, _ := identityFromContext(r.Context())
	email := chi.URLParam(r, "email")
	items, err := h.posts.ListByAuthor(r.Context(), actor, email, offset, limit)
	if err != nil {
		writeServiceError(w, r, h.log, err, "post not found")
		return
	}
	total, err := h.posts.CountByAuthor(r.Context(), actor, email)
	if err != nil {
		writeServiceError(w, r, h.log, err, "post not found")
		return
	}

	writeJSON(w, http.StatusOK, PostListResponse{Items: nonNil(items), Page: page, Limit: limit, Total: total})
}

func (h *PostHandler) CountByAuthor(w http.ResponseWriter, r *http.Request) {
	actor, _ := identityFromContext(r.Context())
	total, err := h.posts.CountByAuthor(r.Context(), actor, chi.URLParam(r, "email"))
	if err != nil {
		writeServiceError(w, r, h.log, err, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: total})
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor, _ := identityFromContext(r.Context())
	created, err := h.posts.Create(r.Context(), actor, types.Post{
		AuthorName:  req.AuthorName,
		AuthorEmail: strings.TrimSpace(req.AuthorEmail),
		AuthorImage: req.AuthorImage,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Tag:         strings.TrimSpace(req.Tag),
	})
	if err != nil {
		writeServiceError(w, r, h.log, err, "user not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	actor, _ := identityFromContext(r.Context())
	if err := h.posts.Delete(r.Context(), actor, chi.URLParam(r, "postID")); err != nil {
		writeServiceError(w, r, h.log, err, "post not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type VoteRequest struct {
	Type string `json:"type"`
}

type CreatePostRequest struct {
	AuthorName  string `json:"authorName"`
	AuthorEmail string `json:"authorEmail"`
	AuthorImage string `json:"authorImage"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tag         string `json:"tag"`
}

type CreateCommentRequest struct {
	PostID         string `json:"postId"`
	PostTitle      string `json:"postTitle"`
	CommenterName  string `json:"commenterName"`
	CommenterEmail string `json:"commenterEmail"`
	Text           string `json:"text"`
}

// PostListResponse is the paginated list response payload.
type PostListResponse struct {
	Items []types.Post `json:"items"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
	Total int64        `json:"total"`
}
