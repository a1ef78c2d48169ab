package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	sent []Message
	err  error
}

func (r *recordingTransport) Deliver(_ context.Context, msg Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func TestMailer_PasswordReset(t *testing.T) {
	tr := &recordingTransport{}
	m := NewMailer(tr, "https://app.truckflow.test")

	require.NoError(t, m.SendPasswordResetOTP(context.Background(), "driver@truckflow.test", "Nikos", "482913"))

	require.Len(t, tr.sent, 1)
	msg := tr.sent[0]
	assert.Equal(t, "driver@truckflow.test", msg.To)
	assert.Equal(t, "Password Reset OTP - TruckFlow", msg.Subject)
	assert.Contains(t, msg.HTML, "482913")
	assert.Contains(t, msg.HTML, "Hi Nikos,")
	assert.Contains(t, msg.HTML, "10 minutes")
}

func TestMailer_DriverInvitationLink(t *testing.T) {
	tr := &recordingTransport{}
	m := NewMailer(tr, "https://app.truckflow.test")

	require.NoError(t, m.SendDriverInvitation(context.Background(), "new@truckflow.test", "Maria", "tok.en+/="))

	require.Len(t, tr.sent, 1)
	assert.Contains(t, tr.sent[0].HTML, "https://app.truckflow.test/auth/setup-password?token=tok.en%2B%2F%3D")
}

func TestMailer_EscapesNames(t *testing.T) {
	tr := &recordingTransport{}
	m := NewMailer(tr, "https://app.truckflow.test")

	require.NoError(t, m.SendPasswordResetOTP(context.Background(), "x@truckflow.test", "<script>", "111111"))
	assert.NotContains(t, tr.sent[0].HTML, "<script>")
}

func TestMailer_TransportError(t *testing.T) {
	tr := &recordingTransport{err: errors.New("connection refused")}
	m := NewMailer(tr, "https://app.truckflow.test")

	err := m.SendPasswordResetOTP(context.Background(), "x@truckflow.test", "X", "111111")
	assert.EqualError(t, err, "connection refused")
}
