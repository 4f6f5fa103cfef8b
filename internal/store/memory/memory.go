// Package memory provides mutex-guarded in-memory repositories with the same
// behavior as the Mongo ones. It backs DB_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/forumhub/apiserver/internal/store"
	"github.com/forumhub/apiserver/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store groups the in-memory repositories.
type Store struct {
	Users    *UserRepository
	Posts    *PostRepository
	Comments *CommentRepository
	Reports  *ReportRepository
	Payments *PaymentRepository
}

func New() *Store {
	return &Store{
		Users:    &UserRepository{},
		Posts:    &PostRepository{},
		Comments: &CommentRepository{},
		Reports:  &ReportRepository{},
		Payments: &PaymentRepository{},
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// UserRepository keeps users in insertion order.
type UserRepository struct {
	mu    sync.Mutex
	users []types.User
}

func (r *UserRepository) find(match func(types.User) bool) (int, bool) {
	for i, u := range r.users {
		if match(u) {
			return i, true
		}
	}
	return -1, false
}

func (r *UserRepository) get(match func(types.User) bool) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.find(match)
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return cloneUser(r.users[i]), nil
}

func (r *UserRepository) GetByID(_ context.Context, id primitive.ObjectID) (types.User, error) {
	return r.get(func(u types.User) bool { return u.ID == id })
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (types.User, error) {
	return r.get(func(u types.User) bool { return u.Email == email })
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (types.User, error) {
	return r.get(func(u types.User) bool { return u.Username == username })
}

func (r *UserRepository) Create(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.find(func(u types.User) bool {
		return u.Email == user.Email || (user.Username != "" && u.Username == user.Username)
	}); ok {
		return types.User{}, store.ErrDuplicateKey
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users = append(r.users, cloneUser(user))
	return user, nil
}

func (r *UserRepository) update(email string, apply func(*types.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.find(func(u types.User) bool { return u.Email == email })
	if !ok {
		return store.ErrNotFound
	}
	apply(&r.users[i])
	return nil
}

func (r *UserRepository) TouchSignIn(_ context.Context, email string, at time.Time, ip string) error {
	return r.update(email, func(u *types.User) {
		u.LastSignIn = at
		u.IP = ip
	})
}

func (r *UserRepository) IncPostLimit(_ context.Context, email string, delta int) error {
	return r.update(email, func(u *types.User) { u.PostLimit += delta })
}

func (r *UserRepository) UpgradeMembership(_ context.Context, email string, bonus int, badge string) error {
	return r.update(email, func(u *types.User) {
		u.Membership = types.MembershipMember
		u.PostLimit += bonus
		for _, b := range u.Badges {
			if b == badge {
				return
			}
		}
		u.Badges = append(u.Badges, badge)
	})
}

func (r *UserRepository) SetWarning(_ context.Context, email string) error {
	return r.update(email, func(u *types.User) { u.Warning = true })
}

func (r *UserRepository) SetBlocked(_ context.Context, email string) error {
	return r.update(email, func(u *types.User) { u.IsBlocked = true })
}

func (r *UserRepository) SetRole(_ context.Context, id primitive.ObjectID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.find(func(u types.User) bool { return u.ID == id })
	if !ok {
		return store.ErrNotFound
	}
	r.users[i].Role = role
	return nil
}

func (r *UserRepository) Search(_ context.Context, query string, offset, limit int) ([]types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []types.User
	for i := len(r.users) - 1; i >= 0; i-- {
		u := r.users[i]
		if query == "" || containsFold(u.Username, query) || containsFold(u.Email, query) {
			out = append(out, cloneUser(u))
		}
	}
	return page(out, offset, limit), nil
}

func cloneUser(u types.User) types.User {
	u.Badges = append([]string(nil), u.Badges...)
	return u
}

// PostRepository keeps posts in insertion order.
type PostRepository struct {
	mu    sync.Mutex
	posts []types.Post
}

func (r *PostRepository) List(_ context.Context, sortBy string, offset, limit int) ([]types.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]types.Post(nil), r.posts...)
	switch sortBy {
	case types.SortPopularity:
		for i := range out {
			diff := out[i].UpVote - out[i].DownVote
			out[i].VoteDifference = &diff
		}
		sort.SliceStable(out, func(i, j int) bool {
			if *out[i].VoteDifference != *out[j].VoteDifference {
				return *out[i].VoteDifference > *out[j].VoteDifference
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case types.SortDate:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return page(out, offset, limit), nil
}

func (r *PostRepository) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.posts)), nil
}

func (r *PostRepository) SearchByTag(_ context.Context, tag string) ([]types.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []types.Post
	for _, p := range r.posts {
		if containsFold(p.Tag, tag) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *PostRepository) Get(_ context.Context, id primitive.ObjectID) (types.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return types.Post{}, store.ErrNotFound
}

func (r *PostRepository) byAuthor(email string) []types.Post {
	var out []types.Post
	for _, p := range r.posts {
		if p.AuthorEmail == email {
			out = append(out, p)
		}
	}
	return out
}

func (r *PostRepository) ListByAuthor(_ context.Context, email string, offset, limit int) ([]types.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.byAuthor(email)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, offset, limit), nil
}

func (r *PostRepository) CountByAuthor(_ context.Context, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byAuthor(email))), nil
}

func (r *PostRepository) Create(_ context.Context, post types.Post) (types.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	post.VoteDifference = nil
	r.posts = append(r.posts, post)
	return post, nil
}

func (r *PostRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.posts {
		if p.ID == id {
			r.posts = append(r.posts[:i], r.posts[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *PostRepository) Vote(_ context.Context, id primitive.ObjectID, direction string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.posts {
		if r.posts[i].ID != id {
			continue
		}
		if direction == types.VoteDown {
			r.posts[i].DownVote++
		} else {
			r.posts[i].UpVote++
		}
		return nil
	}
	return store.ErrNotFound
}

// CommentRepository keeps comments in insertion order.
type CommentRepository struct {
	mu       sync.Mutex
	comments []types.Comment
}

func (r *CommentRepository) Create(_ context.Context, comment types.Comment) (types.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	r.comments = append(r.comments, comment)
	return comment, nil
}

func (r *CommentRepository) Get(_ context.Context, id primitive.ObjectID) (types.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.comments {
		if c.ID == id {
			return c, nil
		}
	}
	return types.Comment{}, store.ErrNotFound
}

func (r *CommentRepository) ListByPost(_ context.Context, postID string) ([]types.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []types.Comment
	for _, c := range r.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *CommentRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.comments {
		if c.ID == id {
			r.comments = append(r.comments[:i], r.comments[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// ReportRepository enforces one report per comment, like the unique index.
type ReportRepository struct {
	mu      sync.Mutex
	reports []types.Report
}

func (r *ReportRepository) Create(_ context.Context, report types.Report) (types.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reports {
		if existing.CommentID == report.CommentID {
			return types.Report{}, store.ErrDuplicateKey
		}
	}
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	r.reports = append(r.reports, report)
	return report, nil
}

func (r *ReportRepository) GetByComment(_ context.Context, commentID string) (types.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rep := range r.reports {
		if rep.CommentID == commentID {
			return rep, nil
		}
	}
	return types.Report{}, store.ErrNotFound
}

func (r *ReportRepository) List(_ context.Context) ([]types.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]types.Report(nil), r.reports...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ReportRepository) Resolve(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.reports {
		if r.reports[i].ID == id {
			r.reports[i].Status = types.ReportStatusResolved
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *ReportRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rep := range r.reports {
		if rep.ID == id {
			r.reports = append(r.reports[:i], r.reports[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// PaymentRepository appends payments.
type PaymentRepository struct {
	mu       sync.Mutex
	payments []types.Payment
}

func (r *PaymentRepository) Create(_ context.Context, payment types.Payment) (types.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}
	r.payments = append(r.payments, payment)
	return payment, nil
}

// All returns a copy of the recorded payments.
func (r *PaymentRepository) All() []types.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.Payment(nil), r.payments...)
}
