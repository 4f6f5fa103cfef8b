package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/forumhub/apiserver/internal/auth"
	"github.com/forumhub/apiserver/internal/services"
	"github.com/forumhub/apiserver/internal/store/memory"
	"github.com/forumhub/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

type fakeProcessor struct{}

func (fakeProcessor) CreateIntent(_ context.Context, amountMinor int64) (string, error) {
	return fmt.Sprintf("secret_%d", amountMinor), nil
}

type testServer struct {
	t          *testing.T
	st         *memory.Store
	codec      *auth.TokenCodec
	router     http.Handler
	production bool
	rateLimit  int
}

type serverOption func(*testServer)

func production() serverOption { return func(s *testServer) { s.production = true } }

func rateLimit(n int) serverOption { return func(s *testServer) { s.rateLimit = n } }

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	s := &testServer{t: t, st: memory.New(), codec: auth.NewTokenCodec(testSecret), rateLimit: 1000}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	Routes(r, Dependencies{
		Codec:              s.codec,
		Production:         s.production,
		Policy:             services.NewAccessPolicy(s.st.Users),
		Users:              services.NewUserService(s.st.Users),
		Posts:              services.NewPostService(s.st.Posts, s.st.Users, nil),
		Comments:           services.NewCommentService(s.st.Comments),
		Reports:            services.NewReportService(s.st.Reports, s.st.Comments, s.st.Users, nil),
		Payments:           services.NewPaymentService(fakeProcessor{}, s.st.Payments, s.st.Users, nil, nil),
		RateLimitPerMinute: s.rateLimit,
	})
	s.router = r
	return s
}

func (s *testServer) seedUser(email, membership, role string) types.User {
	s.t.Helper()
	u, err := s.st.Users.Create(context.Background(), types.User{
		Email:      email,
		Username:   email,
		Role:       role,
		Membership: membership,
		PostLimit:  types.PostCeiling(membership),
	})
	require.NoError(s.t, err)
	return u
}

func (s *testServer) cookieFor(email string) *http.Cookie {
	s.t.Helper()
	token, err := s.codec.Issue(email)
	require.NoError(s.t, err)
	return &http.Cookie{Name: SessionCookie, Value: token}
}

func (s *testServer) do(method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetCookie(t *testing.T) {
	tests := []struct {
		name     string
		opts     []serverOption
		secure   bool
		sameSite http.SameSite
	}{
		{name: "dev", secure: false, sameSite: http.SameSiteStrictMode},
		{name: "production", opts: []serverOption{production()}, secure: true, sameSite: http.SameSiteNoneMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.opts...)
			rec := s.do(http.MethodPost, "/auth/set-cookie", SetCookieRequest{Email: "a@x.io"}, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.True(t, decode[SuccessResponse](t, rec).Success)

			cookies := rec.Result().Cookies()
			require.Len(t, cookies, 1)
			c := cookies[0]
			assert.Equal(t, SessionCookie, c.Name)
			assert.True(t, c.HttpOnly)
			assert.Equal(t, tt.secure, c.Secure)
			assert.Equal(t, tt.sameSite, c.SameSite)
			assert.Equal(t, int(auth.SessionTTL.Seconds()), c.MaxAge)

			email, err := s.codec.Verify(c.Value)
			require.NoError(t, err)
			assert.Equal(t, "a@x.io", email)
		})
	}
}

func TestSetCookieRequiresEmail(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/auth/set-cookie", SetCookieRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearCookies(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/auth/clear-cookies", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestReportsRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	s.seedUser("admin@x.io", types.MembershipNonMember, types.RoleAdmin)
	s.seedUser("user@x.io", types.MembershipNonMember, "")

	rec := s.do(http.MethodGet, "/reports", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/reports", nil, &http.Cookie{Name: SessionCookie, Value: "garbage"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/reports", nil, s.cookieFor("user@x.io"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/reports", nil, s.cookieFor("admin@x.io"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestExpiredSessionIsForbidden(t *testing.T) {
	s := newTestServer(t)
	s.seedUser("admin@x.io", types.MembershipNonMember, types.RoleAdmin)

	old := auth.NewTokenCodec(testSecret, auth.WithClock(func() time.Time {
		return time.Now().Add(-8 * 24 * time.Hour)
	}))
	token, err := old.Issue("admin@x.io")
	require.NoError(t, err)

	rec := s.do(http.MethodGet, "/reports", nil, &http.Cookie{Name: SessionCookie, Value: token})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "session expired", decode[ErrorResponse](t, rec).Error)
}

func TestRegisterUser(t *testing.T) {
	s := newTestServer(t)
	body := RegisterRequest{Name: "Ada", Email: "ada@x.io", Username: "ada"}

	rec := s.do(http.MethodPost, "/users", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	first := decode[RegisterResponse](t, rec)
	assert.True(t, first.Created)
	assert.Equal(t, types.MembershipNonMember, first.User.Membership)

	rec = s.do(http.MethodPost, "/users", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[RegisterResponse](t, rec).Created)

	rec = s.do(http.MethodPost, "/users", RegisterRequest{Email: "other@x.io", Username: "ada"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/users/check-username/ada", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[UsernameCheckResponse](t, rec).Exists)

	rec = s.do(http.MethodGet, "/user/ada@x.io", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/user/nobody@x.io", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoleAndMakeAdmin(t *testing.T) {
	s := newTestServer(t)
	s.seedUser("admin@x.io", types.MembershipNonMember, types.RoleAdmin)
	target := s.seedUser("user@x.io", types.MembershipNonMember, "")

	rec := s.do(http.MethodGet, "/role?email=user@x.io", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[RoleResponse](t, rec).Role)

	rec = s.do(http.MethodPatch, "/makeAdmin/"+target.ID.Hex(), nil, s.cookieFor("user@x.io"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPatch, "/makeAdmin/"+target.ID.Hex(), nil, s.cookieFor("admin@x.io"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/role?email=user@x.io", nil, nil)
	assert.Equal(t, types.RoleAdmin, decode[RoleResponse](t, rec).Role)

	rec = s.do(http.MethodGet, "/admin/users?search=USER", nil, s.cookieFor("admin@x.io"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[UserListResponse](t, rec).Items, 1)

	rec = s.do(http.MethodGet, "/role", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimitOpenWrites(t *testing.T) {
	s := newTestServer(t, rateLimit(1))

	rec := s.do(http.MethodPost, "/reports", SubmitReportRequest{CommentID: "c1"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPost, "/reports", SubmitReportRequest{CommentID: "c2"}, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
