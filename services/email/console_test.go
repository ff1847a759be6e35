package emailsvc

import (
	"bytes"
	"log"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/agenda/core"
	logsvc "github.com/trezcool/agenda/services/logger"
)

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	conf := core.NewTestConfig()
	logger := logsvc.NewRollbarLogger(log.New(new(bytes.Buffer), "", 0), conf)
	core.ParseEmailTemplates(conf, logger)
	svc := NewConsoleServiceMock(conf, logger)

	to := []mail.Address{{Name: "Tutora General", Address: "tutora@edai.com"}}
	svc.SendMessages(
		&core.EmailMessage{
			To:           to,
			Subject:      "New message from Profesora General",
			TemplateName: "new_message",
			TemplateData: map[string]interface{}{
				"RecipientName": "Tutora General",
				"SenderName":    "Profesora General",
				"SenderID":      "42",
				"Content":       "Mañana hay excursión",
			},
		},
		&core.EmailMessage{Subject: "no recipients", BodyStr: "lost"},
		&core.EmailMessage{To: to, Subject: "plain", BodyStr: "hello"},
		&core.EmailMessage{To: to, Subject: "empty"},
	)

	sent := svc.SentMessages()
	require.Len(t, sent, 2)

	assert.Contains(t, sent[0].TextContent, "Mañana hay excursión")
	assert.Contains(t, sent[0].TextContent, "Profesora General")
	assert.Contains(t, sent[0].HTMLContent, "Tutora General")
	assert.Contains(t, sent[0].HTMLContent, conf.FrontendBaseURL)

	assert.Equal(t, "hello", sent[1].TextContent)
	assert.Empty(t, sent[1].HTMLContent)

	svc.Reset()
	assert.Empty(t, svc.SentMessages())
}
