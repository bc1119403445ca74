package mailbox

import (
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	gomessage "github.com/emersion/go-message"
	gomail "github.com/emersion/go-message/mail"
	"github.com/microcosm-cc/bluemonday"
	htmlcharset "golang.org/x/net/html/charset"

	queueuc "github.com/openhelpdesk/helpdesk/internal/application/queue/usecases"
	ticketuc "github.com/openhelpdesk/helpdesk/internal/application/ticket/usecases"
)

const (
	bodyLimit       = 1 << 20
	attachmentLimit = 25 << 20

	// htmlBodyFilename keeps the original markup of html-only messages.
	htmlBodyFilename = "email_html_body.html"
)

var (
	_ queueuc.MessageParser = (*Parser)(nil)

	blockBreak = regexp.MustCompile(`(?i)<br\s*/?>|</p\s*>|</div\s*>|</li\s*>|</tr\s*>`)
	blankRuns  = regexp.MustCompile(`\n{3,}`)
)

func init() {
	gomessage.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return htmlcharset.NewReaderLabel(charset, input)
	}
}

// Parser turns raw RFC 5322 messages into inbound tickets. The text/plain
// part wins; html-only mail is reduced to text and kept as an attachment.
type Parser struct {
	strict *bluemonday.Policy
}

func NewParser() *Parser {
	return &Parser{strict: bluemonday.StrictPolicy()}
}

func (p *Parser) Parse(raw io.Reader) (*queueuc.InboundMessage, error) {
	reader, err := gomail.CreateReader(raw)
	if err != nil && reader == nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	defer reader.Close()

	msg := &queueuc.InboundMessage{}
	if subject, err := reader.Header.Subject(); err == nil {
		msg.Subject = strings.TrimSpace(subject)
	} else {
		msg.Subject = strings.TrimSpace(reader.Header.Get("Subject"))
	}
	if id, err := reader.Header.MessageID(); err == nil {
		msg.MessageID = id
	}

	from, err := reader.Header.AddressList("From")
	if err != nil || len(from) == 0 {
		return nil, errors.New("message has no parseable From address")
	}
	msg.From = strings.ToLower(strings.TrimSpace(from[0].Address))
	msg.FromName = strings.TrimSpace(from[0].Name)

	var plain, markup string
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read message part: %w", err)
		}

		switch h := part.Header.(type) {
		case *gomail.InlineHeader:
			mediaType, _, _ := h.ContentType()
			mediaType = strings.ToLower(mediaType)
			if filename := inlineFilename(h); filename != "" && !strings.HasPrefix(mediaType, "text/") {
				if att, err := readAttachment(part.Body, filename); err != nil {
					return nil, err
				} else if att != nil {
					msg.Attachments = append(msg.Attachments, *att)
				}
				continue
			}
			body, err := io.ReadAll(io.LimitReader(part.Body, bodyLimit))
			if err != nil {
				return nil, fmt.Errorf("failed to read message body: %w", err)
			}
			switch {
			case mediaType == "text/html":
				if markup == "" {
					markup = string(body)
				}
			case mediaType == "" || strings.HasPrefix(mediaType, "text/"):
				if plain == "" {
					plain = string(body)
				}
			}
		case *gomail.AttachmentHeader:
			filename, _ := h.Filename()
			att, err := readAttachment(part.Body, filename)
			if err != nil {
				return nil, err
			}
			if att != nil {
				msg.Attachments = append(msg.Attachments, *att)
			}
		}
	}

	switch {
	case strings.TrimSpace(plain) != "":
		msg.Body = strings.TrimSpace(plain)
	case strings.TrimSpace(markup) != "":
		msg.Body = p.htmlToText(markup)
		msg.Attachments = append(msg.Attachments, ticketuc.AttachmentUpload{
			Filename: htmlBodyFilename,
			Content:  []byte(markup),
		})
	}
	return msg, nil
}

func (p *Parser) htmlToText(markup string) string {
	text := blockBreak.ReplaceAllString(markup, "$0\n")
	text = html.UnescapeString(p.strict.Sanitize(text))
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

// inlineFilename finds the name of an inline part such as an embedded image.
func inlineFilename(h *gomail.InlineHeader) string {
	if _, params, err := h.ContentDisposition(); err == nil && params["filename"] != "" {
		return params["filename"]
	}
	if _, params, err := h.ContentType(); err == nil {
		return params["name"]
	}
	return ""
}

func readAttachment(body io.Reader, filename string) (*ticketuc.AttachmentUpload, error) {
	data, err := io.ReadAll(io.LimitReader(body, attachmentLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment %q: %w", filename, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	if strings.TrimSpace(filename) == "" {
		filename = "attachment.bin"
	}
	return &ticketuc.AttachmentUpload{Filename: filename, Content: data}, nil
}
