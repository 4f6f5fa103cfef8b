package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/forumhub/apiserver/internal/store/memory"
	"github.com/forumhub/apiserver/types"
	"github.com/stretchr/testify/require"
)

type published struct {
	channel string
	data    []byte
	attrs   map[string]string
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.msgs = append(p.msgs, published{channel: channel, data: data, attrs: attrs})
	return "msg-1", nil
}

type recordingArchive struct {
	objects map[string][]byte
	err     error
}

func (a *recordingArchive) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if a.err != nil {
		return a.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if a.objects == nil {
		a.objects = map[string][]byte{}
	}
	a.objects[key] = data
	return nil
}

type failingQuotaUsers struct {
	QuotaUsers
}

func (failingQuotaUsers) IncPostLimit(context.Context, string, int) error {
	return errors.New("connection reset")
}

func fixedClock() func() time.Time {
	t := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func seedUser(t *testing.T, st *memory.Store, email, membership, role string) types.User {
	t.Helper()
	u, err := st.Users.Create(context.Background(), types.User{
		Name:       email,
		Email:      email,
		Username:   email,
		Role:       role,
		Membership: membership,
		PostLimit:  types.PostCeiling(membership),
		Badges:     []string{types.BadgeBronze},
	})
	require.NoError(t, err)
	return u
}
