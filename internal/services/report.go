package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/forumhub/apiserver/internal/logging"
	"github.com/forumhub/apiserver/internal/store"
	"github.com/forumhub/apiserver/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportRepository defines persistence operations for reports.
type ReportRepository interface {
	Create(ctx context.Context, report types.Report) (types.Report, error)
	GetByComment(ctx context.Context, commentID string) (types.Report, error)
	List(ctx context.Context) ([]types.Report, error)
	Resolve(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ModerationUsers is the slice of the user store moderation actions touch.
type ModerationUsers interface {
	SetWarning(ctx context.Context, email string) error
	SetBlocked(ctx context.Context, email string) error
}

// ActionRequest carries a moderator's decision on a report.
type ActionRequest struct {
	Action    types.ModerationAction `json:"action"`
	ReportID  string                 `json:"reportId"`
	CommentID string                 `json:"commentId"`
	Email     string                 `json:"email"`
}

// ReportService runs the report lifecycle: submission, review listing and
// moderator actions.
type ReportService struct {
	reports  ReportRepository
	comments CommentRepository
	users    ModerationUsers
	archive  Archiver
	events   Publisher
	log      logging.Logger
	now      func() time.Time
}

type ReportOption func(*ReportService)

// WithArchive snapshots comments to object storage before deletion.
func WithArchive(a Archiver) ReportOption {
	return func(s *ReportService) { s.archive = a }
}

// WithEvents publishes a moderation event for every applied action.
func WithEvents(p Publisher) ReportOption {
	return func(s *ReportService) { s.events = p }
}

func NewReportService(reports ReportRepository, comments CommentRepository, users ModerationUsers, log logging.Logger, opts ...ReportOption) *ReportService {
	if log == nil {
		log = logging.Nop()
	}
	s := &ReportService{
		reports:  reports,
		comments: comments,
		users:    users,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit files a report. Only one report may exist per comment.
func (s *ReportService) Submit(ctx context.Context, report types.Report) (types.Report, error) {
	if strings.TrimSpace(report.CommentID) == "" {
		return types.Report{}, invalid("commentId", "is required")
	}

	_, err := s.reports.GetByComment(ctx, report.CommentID)
	if err == nil {
		return types.Report{}, fmt.Errorf("%w: report for comment %s", ErrDuplicate, report.CommentID)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return types.Report{}, err
	}

	report.ID = primitive.NilObjectID
	report.Status = ""
	report.CreatedAt = s.now()
	created, err := s.reports.Create(ctx, report)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return types.Report{}, fmt.Errorf("%w: report for comment %s", ErrDuplicate, report.CommentID)
		}
		return types.Report{}, err
	}
	return created, nil
}

func (s *ReportService) GetByComment(ctx context.Context, commentID string) (types.Report, error) {
	return s.reports.GetByComment(ctx, commentID)
}

// List returns every report, newest first.
func (s *ReportService) List(ctx context.Context) ([]types.Report, error) {
	return s.reports.List(ctx)
}

// Apply executes a moderation action on behalf of actor. Unknown actions
// succeed without effect.
func (s *ReportService) Apply(ctx context.Context, actor string, req ActionRequest) error {
	if !req.Action.Known() {
		s.log.Info(ctx, "ignoring unknown moderation action", "action", string(req.Action), "actor", actor)
		return nil
	}

	var err error
	switch req.Action {
	case types.ActionIgnore:
		err = s.ignore(ctx, req)
	case types.ActionWarn:
		err = s.onUser(ctx, req, s.users.SetWarning)
	case types.ActionBlock:
		err = s.onUser(ctx, req, s.users.SetBlocked)
	case types.ActionDeleteComment:
		err = s.deleteComment(ctx, req)
	}
	if err != nil {
		return err
	}

	publishEvent(ctx, s.events, s.log, ModerationChannel, Event{
		Type:      "moderation.applied",
		Action:    string(req.Action),
		ReportID:  req.ReportID,
		CommentID: req.CommentID,
		Email:     req.Email,
		Actor:     actor,
		At:        s.now(),
	})
	return nil
}

func (s *ReportService) ignore(ctx context.Context, req ActionRequest) error {
	id, err := store.ParseID(req.ReportID)
	if err != nil {
		return invalid("reportId", "is not a valid identifier")
	}
	return s.reports.Resolve(ctx, id)
}

// onUser flags the target user. A target that no longer exists is logged,
// like the best-effort deletions of delete-comment.
func (s *ReportService) onUser(ctx context.Context, req ActionRequest, apply func(context.Context, string) error) error {
	if strings.TrimSpace(req.Email) == "" {
		return invalid("email", "is required")
	}
	err := apply(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		s.log.Warn(ctx, "moderation target not found", "action", string(req.Action), "email", req.Email)
		return nil
	}
	return err
}

// deleteComment removes the comment and its report. Both deletions are
// best-effort: a missing comment or report is logged, not returned.
func (s *ReportService) deleteComment(ctx context.Context, req ActionRequest) error {
	commentID, err := store.ParseID(req.CommentID)
	if err != nil {
		return invalid("commentId", "is not a valid identifier")
	}
	reportID, err := store.ParseID(req.ReportID)
	if err != nil {
		return invalid("reportId", "is not a valid identifier")
	}

	s.archiveComment(ctx, commentID)

	if err := s.comments.Delete(ctx, commentID); err != nil {
		s.log.Warn(ctx, "delete reported comment failed", "comment_id", req.CommentID, "err", err)
	}
	if err := s.reports.Delete(ctx, reportID); err != nil {
		s.log.Warn(ctx, "delete report failed", "report_id", req.ReportID, "err", err)
	}
	return nil
}

func (s *ReportService) archiveComment(ctx context.Context, id primitive.ObjectID) {
	if s.archive == nil {
		return
	}
	comment, err := s.comments.Get(ctx, id)
	if err != nil {
		s.log.Warn(ctx, "load comment for archive failed", "comment_id", id.Hex(), "err", err)
		return
	}
	data, err := json.Marshal(comment)
	if err != nil {
		s.log.Warn(ctx, "encode comment archive failed", "comment_id", id.Hex(), "err", err)
		return
	}
	if err := s.archive.Put(ctx, ArchiveKey(id.Hex()), bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		s.log.Warn(ctx, "archive comment failed", "comment_id", id.Hex(), "err", err)
	}
}

// ArchiveKey is the object key a deleted comment is archived under.
func ArchiveKey(commentID string) string {
	return "moderation/comments/" + commentID + ".json"
}
