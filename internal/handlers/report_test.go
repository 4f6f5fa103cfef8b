package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/forumhub/apiserver/internal/services"
	"github.com/forumhub/apiserver/internal/store"
	"github.com/forumhub/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitReportDeduplicates(t *testing.T) {
	s := newTestServer(t)
	body := SubmitReportRequest{CommentID: "c1", Feedback: "spam"}

	rec := s.do(http.MethodPost, "/reports", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPost, "/reports", body, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	reports, err := s.st.Reports.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	rec = s.do(http.MethodGet, "/report/c1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "spam", decode[types.Report](t, rec).Feedback)

	rec = s.do(http.MethodGet, "/report/c2", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/reports", SubmitReportRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplyDeleteCommentAction(t *testing.T) {
	s := newTestServer(t)
	s.seedUser("admin@x.io", types.MembershipNonMember, types.RoleAdmin)
	ctx := context.Background()

	comment, err := s.st.Comments.Create(ctx, types.Comment{PostID: "p1", Text: "rude"})
	require.NoError(t, err)
	rec := s.do(http.MethodPost, "/reports", SubmitReportRequest{CommentID: comment.ID.Hex()}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	report := decode[types.Report](t, rec)

	action := services.ActionRequest{
		Action:    types.ActionDeleteComment,
		ReportID:  report.ID.Hex(),
		CommentID: comment.ID.Hex(),
	}
	rec = s.do(http.MethodPatch, "/reports/action", action, s.cookieFor("admin@x.io"))
	require.Equal(t, http.StatusOK, rec.Code)

	_, err = s.st.Comments.Get(ctx, comment.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.st.Reports.GetByComment(ctx, comment.ID.Hex())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestApplyUserActions(t *testing.T) {
	s := newTestServer(t)
	s.seedUser("admin@x.io", types.MembershipNonMember, types.RoleAdmin)
	s.seedUser("troll@x.io", types.MembershipNonMember, "")
	admin := s.cookieFor("admin@x.io")

	rec := s.do(http.MethodPatch, "/reports/action", services.ActionRequest{Action: types.ActionWarn, Email: "troll@x.io"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodPatch, "/reports/action", services.ActionRequest{Action: types.ActionBlock, Email: "troll@x.io"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	u, err := s.st.Users.GetByEmail(context.Background(), "troll@x.io")
	require.NoError(t, err)
	assert.True(t, u.Warning)
	assert.True(t, u.IsBlocked)

	rec = s.do(http.MethodPatch, "/reports/action", services.ActionRequest{Action: "shrug"}, admin)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPatch, "/reports/action", services.ActionRequest{Action: types.ActionWarn, Email: "ghost@x.io"}, admin)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPatch, "/reports/action", services.ActionRequest{Action: types.ActionIgnore, ReportID: "bad"}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPatch, "/reports/action", services.ActionRequest{Action: types.ActionWarn, Email: "troll@x.io"}, s.cookieFor("troll@x.io"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
