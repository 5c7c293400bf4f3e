package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent  []*gomail.Message
	err   error
	block chan struct{}
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.block != nil {
		<-f.block
	}
	f.sent = append(f.sent, m...)
	return f.err
}

func TestListingCreatedMessage(t *testing.T) {
	m := listingCreatedMessage("noreply@housing.test", "owner@example.com", "Room A")
	assert.Equal(t, []string{"noreply@housing.test"}, m.GetHeader("From"))
	assert.Equal(t, []string{"owner@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"New Listing Created"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Your listing 'Room A' has been created successfully.")
}

func TestSMTPMailer_Send(t *testing.T) {
	d := &fakeDialer{}
	s := &SMTPMailer{from: "noreply@housing.test", d: d, logger: logger.NewNop()}

	require.NoError(t, s.SendListingCreatedEmail(context.Background(), "owner@example.com", "Room A"))
	require.Len(t, d.sent, 1)

	assert.Error(t, s.SendListingCreatedEmail(context.Background(), "", "Room A"))

	d.err = errors.New("535 auth failed")
	assert.Error(t, s.SendListingCreatedEmail(context.Background(), "owner@example.com", "Room B"))
}

func TestSMTPMailer_ContextCancelled(t *testing.T) {
	d := &fakeDialer{block: make(chan struct{})}
	defer close(d.block)
	s := &SMTPMailer{from: "noreply@housing.test", d: d, logger: logger.NewNop()}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := s.SendListingCreatedEmail(ctx, "owner@example.com", "Room A")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDisabled(t *testing.T) {
	assert.NoError(t, NewDisabled(logger.NewNop()).SendListingCreatedEmail(context.Background(), "a@b.c", "Room A"))
}
