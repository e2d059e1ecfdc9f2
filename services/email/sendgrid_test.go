package emailsvc

import (
	"errors"
	"net/http"
	"net/mail"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	logsvc "github.com/Prajjwal2051/Viewly-sub002/services/logger"
)

// fakeSendgrid answers with the queued statuses, then 202.
type fakeSendgrid struct {
	mu       sync.Mutex
	statuses []int
	err      error
	sent     []*sgmail.SGMailV3
	done     chan struct{}
}

func (f *fakeSendgrid) deliver(m *sgmail.SGMailV3) (int, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	if f.done != nil {
		defer func() { f.done <- struct{}{} }()
	}
	if f.err != nil {
		return 0, "", f.err
	}
	if len(f.statuses) == 0 {
		return http.StatusAccepted, "", nil
	}
	status := f.statuses[0]
	f.statuses = f.statuses[1:]
	return status, `{"errors":[]}`, nil
}

func newTestSendgrid(t *testing.T, fake *fakeSendgrid) *sendgridService {
	t.Helper()
	conf := testConf()
	logger := logsvc.NewRollbarLogger(zerolog.Nop(), conf)
	logger.Enable(false)
	svc := newSendgridService(conf, logger, fake.deliver)
	svc.backoff = time.Millisecond
	return svc
}

func TestSendgridService_build(t *testing.T) {
	svc := newTestSendgrid(t, &fakeSendgrid{})

	m := svc.build(core.EmailMessage{
		To:           []mail.Address{{Name: "Jane", Address: "jane@viewly.test"}},
		Bcc:          []mail.Address{{Address: "audit@viewly.test"}},
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TextContent:  "reset: https://viewly.test/reset-password?uid=1&token=abc",
	})

	assert.Equal(t, "noreply@viewly.test", m.From.Address)
	require.Len(t, m.Personalizations, 1)
	p := m.Personalizations[0]
	assert.Equal(t, "[Viewly] Password Reset", p.Subject)
	require.Len(t, p.To, 1)
	assert.Equal(t, "jane@viewly.test", p.To[0].Address)
	assert.Empty(t, p.CC)
	require.Len(t, p.BCC, 1)
	assert.Equal(t, []string{"password_reset"}, m.Categories)

	// no HTML part when only text was rendered
	require.Len(t, m.Content, 1)
	assert.Equal(t, "text/plain", m.Content[0].Type)

	require.NotNil(t, m.TrackingSettings)
	require.NotNil(t, m.TrackingSettings.ClickTracking)
	assert.False(t, *m.TrackingSettings.ClickTracking.Enable)
	assert.False(t, *m.TrackingSettings.ClickTracking.EnableText)

	require.NotNil(t, m.MailSettings)
	assert.True(t, *m.MailSettings.SandboxMode.Enable)
}

func TestSendgridService_send(t *testing.T) {
	tests := []struct {
		name     string
		statuses []int
		err      error
		wantSent int
	}{
		{name: "accepted", wantSent: 1},
		{name: "throttled then accepted", statuses: []int{http.StatusTooManyRequests}, wantSent: 2},
		{name: "server errors", statuses: []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusInternalServerError}, wantSent: sendAttempts},
		{name: "rejected", statuses: []int{http.StatusBadRequest}, wantSent: 1},
		{name: "network error", err: errors.New("connection reset"), wantSent: sendAttempts},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeSendgrid{statuses: tt.statuses, err: tt.err}
			svc := newTestSendgrid(t, fake)

			svc.send(sgmail.NewV3Mail(), "welcome")
			assert.Len(t, fake.sent, tt.wantSent)
		})
	}
}

func TestSendgridService_SendMessages(t *testing.T) {
	fake := &fakeSendgrid{done: make(chan struct{}, 1)}
	svc := newTestSendgrid(t, fake)
	core.ParseEmailTemplates(testConf(), svc.logger)

	svc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: "John Doe", Address: "john@viewly.test"}},
		Subject:      "Welcome",
		TemplateName: "welcome",
		TemplateData: core.UserSummary{Username: "jdoe", FullName: "John Doe"},
	})

	select {
	case <-fake.done:
	case <-time.After(5 * time.Second):
		t.Fatal("the message was never delivered")
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.sent, 1)
	m := fake.sent[0]
	assert.Equal(t, []string{"welcome"}, m.Categories)
	require.Len(t, m.Content, 2)
	assert.Contains(t, m.Content[0].Value, "@jdoe")
	assert.Equal(t, "text/html", m.Content[1].Type)
}
