package core

import (
	htmltmpl "html/template"
	"net/mail"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"

	appfs "github.com/acadio/practia/fs"
)

var (
	textTemplates *texttmpl.Template
	htmlTemplates *htmltmpl.Template
	tmplInit      sync.Once
	tmplInitErr   error
)

type (
	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	// ContextData is the common data passed to all email templates.
	ContextData struct {
		AppName         string
		FrontendBaseURL string
	}

	EmailService interface {
		SendMessages(messages ...*EmailMessage)
	}
)

func loadTemplates() {
	textTemplates, tmplInitErr = texttmpl.ParseFS(appfs.FS, "templates/emails/*.txt")
	if tmplInitErr != nil {
		return
	}
	htmlTemplates, tmplInitErr = htmltmpl.ParseFS(appfs.FS, "templates/emails/*.html")
}

// Render resolves the message's templated contents.
// Messages with a plain BodyStr pass through unchanged.
func (m *EmailMessage) Render() error {
	if m.TemplateName == "" {
		m.TextContent = m.BodyStr
		return nil
	}
	tmplInit.Do(loadTemplates)
	if tmplInitErr != nil {
		return errors.Wrap(tmplInitErr, "loading email templates")
	}

	var txt strings.Builder
	if err := textTemplates.ExecuteTemplate(&txt, m.TemplateName+".txt", m.TemplateData); err != nil {
		return errors.Wrapf(err, "rendering %s.txt", m.TemplateName)
	}
	m.TextContent = txt.String()

	var html strings.Builder
	if err := htmlTemplates.ExecuteTemplate(&html, m.TemplateName+".html", m.TemplateData); err != nil {
		return errors.Wrapf(err, "rendering %s.html", m.TemplateName)
	}
	m.HTMLContent = html.String()
	return nil
}

func (m *EmailMessage) HasRecipients() bool {
	return len(m.To) > 0 || len(m.Cc) > 0 || len(m.Bcc) > 0
}

func (m *EmailMessage) HasContent() bool {
	return m.TextContent != "" || m.HTMLContent != ""
}
