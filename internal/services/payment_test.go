package services

import (
	"context"
	"errors"
	"testing"

	"github.com/forumhub/apiserver/internal/store"
	"github.com/forumhub/apiserver/internal/store/memory"
	"github.com/forumhub/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessor struct {
	amounts []int64
	err     error
}

func (p *fakeProcessor) CreateIntent(_ context.Context, amountMinor int64) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.amounts = append(p.amounts, amountMinor)
	return "pi_secret", nil
}

func TestPaymentServiceCreateIntent(t *testing.T) {
	ctx := context.Background()
	proc := &fakeProcessor{}
	svc := NewPaymentService(proc, memory.New().Payments, memory.New().Users, nil, nil)

	secret, err := svc.CreateIntent(ctx, 19.99)
	require.NoError(t, err)
	assert.Equal(t, "pi_secret", secret)
	assert.Equal(t, []int64{1999}, proc.amounts)

	_, err = svc.CreateIntent(ctx, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateIntent(ctx, -5)
	assert.ErrorIs(t, err, ErrValidation)

	proc.err = errors.New("card declined")
	_, err = svc.CreateIntent(ctx, 10)
	assert.ErrorContains(t, err, "card declined")
}

func TestPaymentServiceCreateIntentDisabled(t *testing.T) {
	svc := NewPaymentService(nil, memory.New().Payments, memory.New().Users, nil, nil)
	_, err := svc.CreateIntent(context.Background(), 10)
	assert.ErrorIs(t, err, ErrPaymentsDisabled)
}

func TestPaymentServiceRecordMembership(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedUser(t, st, "a@x.io", types.MembershipNonMember, "")
	events := &recordingPublisher{}
	svc := NewPaymentService(nil, st.Payments, st.Users, events, nil)

	for i := 0; i < 2; i++ {
		_, err := svc.RecordMembership(ctx, types.Payment{Email: "a@x.io", TransactionID: "pi_1", Price: 10})
		require.NoError(t, err)
	}

	u, err := st.Users.GetByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, types.MembershipMember, u.Membership)
	assert.Equal(t, 15, u.PostLimit)
	assert.Equal(t, []string{types.BadgeBronze, types.BadgeGold}, u.Badges, "badges behave as a set")
	assert.Len(t, st.Payments.All(), 2)
	require.Len(t, events.msgs, 2)
	assert.Equal(t, MembershipChannel, events.msgs[0].channel)
}

func TestPaymentServiceRecordMembershipErrors(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewPaymentService(nil, st.Payments, st.Users, nil, nil)

	_, err := svc.RecordMembership(ctx, types.Payment{TransactionID: "pi_1"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.RecordMembership(ctx, types.Payment{Email: "a@x.io"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.RecordMembership(ctx, types.Payment{Email: "ghost@x.io", TransactionID: "pi_1"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
