package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/resend/resend-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type senderStub struct {
	got *resend.SendEmailRequest
	err error
}

func (s *senderStub) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	s.got = params
	if s.err != nil {
		return nil, s.err
	}
	return &resend.SendEmailResponse{Id: "msg_1"}, nil
}

func TestNew_NoKeyIsNoop(t *testing.T) {
	m := New("", "launches@example.com")
	assert.IsType(t, Noop{}, m)
	assert.NoError(t, m.SendModerationDecision(context.Background(), Decision{To: "a@example.com"}))
}

func TestSendModerationDecision_Rejected(t *testing.T) {
	stub := &senderStub{}
	m := &resendMailer{emails: stub, from: "launches@example.com"}

	err := m.SendModerationDecision(context.Background(), Decision{
		To:          "owner@example.com",
		OwnerName:   "Ada",
		ProductName: "Rocket",
		Reason:      "<b>spam</b>",
	})
	require.NoError(t, err)
	require.NotNil(t, stub.got)
	assert.Equal(t, []string{"owner@example.com"}, stub.got.To)
	assert.Equal(t, `Your product "Rocket" has been rejected`, stub.got.Subject)
	assert.Contains(t, stub.got.Html, "Reason: &lt;b&gt;spam&lt;/b&gt;")
}

func TestSendModerationDecision_Approved(t *testing.T) {
	stub := &senderStub{}
	m := &resendMailer{emails: stub, from: "launches@example.com"}

	err := m.SendModerationDecision(context.Background(), Decision{
		To: "owner@example.com", ProductName: "Rocket", ProductURL: "https://launchpad.dev/product/rocket", Approved: true,
	})
	require.NoError(t, err)
	assert.Equal(t, `Your product "Rocket" is live`, stub.got.Subject)
	assert.Contains(t, stub.got.Html, "https://launchpad.dev/product/rocket")
}

func TestSendModerationDecision_SkipsEmptyRecipient(t *testing.T) {
	stub := &senderStub{}
	m := &resendMailer{emails: stub}
	require.NoError(t, m.SendModerationDecision(context.Background(), Decision{ProductName: "Rocket"}))
	assert.Nil(t, stub.got)
}

func TestSendModerationDecision_WrapsError(t *testing.T) {
	m := &resendMailer{emails: &senderStub{err: errors.New("rate limited")}}
	err := m.SendModerationDecision(context.Background(), Decision{To: "x@example.com"})
	assert.ErrorContains(t, err, "rate limited")
}
