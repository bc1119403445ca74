package template

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"

	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

//go:embed mail/*.tmpl
var defaultTemplates embed.FS

const subjectPrefix = "Subject:"

// MailData is what every mail template can reference.
type MailData struct {
	TicketID       uint
	TicketTag      string
	Title          string
	Description    string
	Status         string
	PriorityLabel  string
	SubmitterEmail string
	Resolution     string
	QueueTitle     string
	FollowUpTitle  string
	Comment        string
	ViewURL        string
	StaffURL       string
	Username       string
	Link           string
}

type mailTemplate struct {
	subject *texttemplate.Template
	body    *texttemplate.Template
}

// MailTemplates holds the parsed notification templates. Each file starts
// with a "Subject: ..." line followed by a blank line and a markdown body.
type MailTemplates struct {
	templates map[string]*mailTemplate
	path      string
	logger    logger.Interface
}

// NewMailTemplates creates a loader. Files named <template>.tmpl under path
// replace the built-in version of the same name.
func NewMailTemplates(path string, logger logger.Interface) *MailTemplates {
	return &MailTemplates{
		templates: make(map[string]*mailTemplate),
		path:      path,
		logger:    logger,
	}
}

// Load parses the built-in templates and then any overrides.
func (l *MailTemplates) Load() error {
	entries, err := fs.ReadDir(defaultTemplates, "mail")
	if err != nil {
		return fmt.Errorf("failed to list built-in mail templates: %w", err)
	}
	for _, e := range entries {
		content, err := fs.ReadFile(defaultTemplates, "mail/"+e.Name())
		if err != nil {
			return fmt.Errorf("failed to read built-in template %s: %w", e.Name(), err)
		}
		name := strings.TrimSuffix(e.Name(), ".tmpl")
		if err := l.add(name, string(content)); err != nil {
			return err
		}
	}

	if l.path == "" {
		return nil
	}
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		l.logger.Warnw("mail templates directory not found, using built-in templates", "path", l.path)
		return nil
	}

	overridden := 0
	for name := range l.templates {
		filePath := filepath.Join(l.path, name+".tmpl")
		content, err := os.ReadFile(filePath)
		if err != nil {
			if !os.IsNotExist(err) {
				l.logger.Warnw("failed to read mail template file",
					"file", filePath,
					"error", err,
				)
			}
			continue
		}
		if err := l.add(name, string(content)); err != nil {
			return err
		}
		overridden++
		l.logger.Infow("loaded custom mail template", "template", name, "size", len(content))
	}

	l.logger.Infow("mail templates loaded", "count", len(l.templates), "overridden", overridden)
	return nil
}

func (l *MailTemplates) add(name, content string) error {
	subject, body, err := splitSubject(content)
	if err != nil {
		return fmt.Errorf("template %s: %w", name, err)
	}
	st, err := texttemplate.New(name + ".subject").Option("missingkey=zero").Parse(subject)
	if err != nil {
		return fmt.Errorf("failed to parse subject of template %s: %w", name, err)
	}
	bt, err := texttemplate.New(name).Option("missingkey=zero").Parse(body)
	if err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	l.templates[name] = &mailTemplate{subject: st, body: bt}
	return nil
}

// Has reports whether a template called name is loaded.
func (l *MailTemplates) Has(name string) bool {
	_, ok := l.templates[name]
	return ok
}

// Render executes the named template and returns the subject and the
// markdown body.
func (l *MailTemplates) Render(name string, data MailData) (string, string, error) {
	t, ok := l.templates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown mail template %q", name)
	}
	var subject, body bytes.Buffer
	if err := t.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("failed to render subject of %s: %w", name, err)
	}
	if err := t.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return strings.TrimSpace(subject.String()), strings.TrimSpace(body.String()) + "\n", nil
}

func splitSubject(content string) (string, string, error) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	if !scanner.Scan() {
		return "", "", fmt.Errorf("empty template")
	}
	first := scanner.Text()
	if !strings.HasPrefix(first, subjectPrefix) {
		return "", "", fmt.Errorf("first line must start with %q", subjectPrefix)
	}
	subject := strings.TrimSpace(strings.TrimPrefix(first, subjectPrefix))
	body := strings.TrimPrefix(content[len(first):], "\r")
	return subject, strings.TrimLeft(body, "\r\n"), nil
}
