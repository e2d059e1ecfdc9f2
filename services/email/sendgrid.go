package emailsvc

import (
	"fmt"
	"net/http"
	"net/mail"
	"time"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/Prajjwal2051/Viewly-sub002/core"
)

const sendAttempts = 3

// deliverFunc posts a mail to the Sendgrid API and returns the response status & body.
type deliverFunc func(m *sgmail.SGMailV3) (int, string, error)

type sendgridService struct {
	from       *sgmail.Email
	subjPrefix string
	sandbox    bool // TEST mode: validated by Sendgrid, never delivered
	backoff    time.Duration
	deliver    deliverFunc
	logger     core.Logger
}

var _ core.EmailService = (*sendgridService)(nil)

func NewSendgridService(conf *core.Config, logger core.Logger) core.EmailService {
	client := sendgrid.NewSendClient(conf.Mail.SendgridAPIKey)
	return newSendgridService(conf, logger, func(m *sgmail.SGMailV3) (int, string, error) {
		res, err := client.Send(m)
		if err != nil {
			return 0, "", err
		}
		return res.StatusCode, res.Body, nil
	})
}

func newSendgridService(conf *core.Config, logger core.Logger, deliver deliverFunc) *sendgridService {
	from := conf.Mail.DefaultFrom
	return &sendgridService{
		from:       sgmail.NewEmail(from.Name, from.Address),
		subjPrefix: "[" + conf.AppName + "] ",
		sandbox:    conf.TestMode,
		backoff:    time.Second,
		deliver:    deliver,
		logger:     logger,
	}
}

// NewService picks Sendgrid when an API key is configured, the console otherwise.
func NewService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Mail.SendgridAPIKey == "" {
		return NewConsoleService(conf, logger)
	}
	return NewSendgridService(conf, logger)
}

// SendMessages renders & delivers each message in the background.
func (svc *sendgridService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		go func(msg *core.EmailMessage) {
			if err := msg.Render(); err != nil {
				svc.logger.Error(fmt.Sprintf("rendering %q email: %v", msg.TemplateName, err), err)
				return
			}
			if msg.HasRecipients() && (msg.HasContent() || msg.HasAttachments()) {
				svc.send(svc.build(*msg), msg.TemplateName)
			}
		}(msg)
	}
}

// build converts msg into a Sendgrid mail, tagged with its template name so that deliveries
// can be told apart in the Sendgrid activity feed.
func (svc *sendgridService) build(msg core.EmailMessage) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = svc.subjPrefix + msg.Subject
	p.AddTos(sgEmails(msg.To)...)
	p.AddCCs(sgEmails(msg.Cc)...)
	p.AddBCCs(sgEmails(msg.Bcc)...)

	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	m.AddPersonalizations(p)
	if msg.TemplateName != "" {
		m.AddCategories(msg.TemplateName)
	}

	m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	if msg.HTMLContent != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}
	for _, at := range msg.Attachments {
		m.AddAttachment(&sgmail.Attachment{
			Content:     at.Content.String(),
			Type:        at.ContentType,
			Filename:    at.Filename,
			Disposition: "attachment",
		})
	}

	// rewritten links would break the signed password reset URLs
	m.SetTrackingSettings(sgmail.NewTrackingSettings().SetClickTracking(
		sgmail.NewClickTrackingSetting().SetEnable(false).SetEnableText(false),
	))
	if svc.sandbox {
		m.SetMailSettings(sgmail.NewMailSettings().SetSandboxMode(sgmail.NewSetting(true)))
	}
	return m
}

func sgEmails(addrs []mail.Address) []*sgmail.Email {
	emails := make([]*sgmail.Email, 0, len(addrs))
	for _, addr := range addrs {
		emails = append(emails, sgmail.NewEmail(addr.Name, addr.Address))
	}
	return emails
}

// send delivers m, retrying when Sendgrid throttles or fails on its side.
func (svc *sendgridService) send(m *sgmail.SGMailV3, kind string) {
	var (
		status int
		body   string
		err    error
	)
	for attempt := 1; attempt <= sendAttempts; attempt++ {
		status, body, err = svc.deliver(m)
		if err == nil && status < http.StatusBadRequest {
			return
		}
		if err == nil && status != http.StatusTooManyRequests && status < http.StatusInternalServerError {
			break // rejected: retrying would not help
		}
		if attempt < sendAttempts {
			time.Sleep(time.Duration(attempt) * svc.backoff)
		}
	}

	if err != nil {
		svc.logger.Error(fmt.Sprintf("sending %q email: %v", kind, err), err)
		return
	}
	svc.logger.Error(fmt.Sprintf("sending %q email - status: %d - body: %s", kind, status, body))
}
