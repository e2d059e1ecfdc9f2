package emailsvc

import (
	"bytes"
	"net/mail"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	logsvc "github.com/Prajjwal2051/Viewly-sub002/services/logger"
)

func testConf() *core.Config {
	return &core.Config{
		AppName:         "Viewly",
		TestMode:        true,
		FrontendBaseURL: "https://viewly.test",
		Mail:            core.MailConfig{DefaultFrom: mail.Address{Name: "Viewly", Address: "noreply@viewly.test"}},
	}
}

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	conf := testConf()
	logger := logsvc.NewRollbarLogger(zerolog.Nop(), conf)
	logger.Enable(false)
	core.ParseEmailTemplates(conf, logger)

	svc := NewConsoleServiceMock(conf, logger)
	svc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: "John Doe", Address: "john@viewly.test"}},
			Subject:      "Welcome",
			TemplateName: "welcome",
			TemplateData: core.UserSummary{Username: "jdoe", FullName: "John Doe"},
		},
		&core.EmailMessage{Subject: "no recipients", BodyStr: "dropped"},
	)

	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Contains(t, msg.TextContent, "Hi John Doe,")
	assert.Contains(t, msg.TextContent, "@jdoe")
	assert.Contains(t, msg.TextContent, "https://viewly.test/upload")
	assert.Contains(t, msg.HTMLContent, "<strong>@jdoe</strong>")

	svc.Reset()
	assert.Empty(t, svc.SentMessages())
}

func TestConsoleService_Send(t *testing.T) {
	conf := testConf()
	logger := logsvc.NewRollbarLogger(zerolog.Nop(), conf)
	logger.Enable(false)

	var out bytes.Buffer
	svc := consoleService{
		defaultFromEmail: conf.Mail.DefaultFrom,
		subjPrefix:       "[Viewly] ",
		out:              &out,
		logger:           logger,
	}
	msg := core.EmailMessage{
		To:      []mail.Address{{Address: "jane@viewly.test"}},
		Subject: "Report",
		BodyStr: "see attached",
	}
	require.NoError(t, msg.Attach(strings.NewReader("a,b\n1,2\n"), "report.csv", "text/csv"))
	require.NoError(t, msg.Render())
	require.NoError(t, svc.send(msg))

	body := out.String()
	assert.Contains(t, body, "Subject: [Viewly] Report")
	assert.Contains(t, body, "To: <jane@viewly.test>")
	assert.Contains(t, body, "multipart/mixed")
	assert.Contains(t, body, "filename=report.csv")
	assert.Contains(t, body, "see attached")
}
