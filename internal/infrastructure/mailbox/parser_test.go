package mailbox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crlf(s string) string {
	return strings.ReplaceAll(strings.TrimPrefix(s, "\n"), "\n", "\r\n")
}

func TestParser_PlainText(t *testing.T) {
	raw := crlf(`
From: "Jane Doe" <Jane@Example.com>
To: support@helpdesk.local
Subject: Printer on fire
Message-Id: <abc@example.com>
Content-Type: text/plain; charset=utf-8

It is really on fire.
`)
	msg, err := NewParser().Parse(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", msg.From)
	assert.Equal(t, "Jane Doe", msg.FromName)
	assert.Equal(t, "Printer on fire", msg.Subject)
	assert.Equal(t, "abc@example.com", msg.MessageID)
	assert.Equal(t, "It is really on fire.", msg.Body)
	assert.Empty(t, msg.Attachments)
}

func TestParser_EncodedSubjectAndCharset(t *testing.T) {
	raw := crlf(`
From: user@example.com
Subject: =?ISO-8859-1?Q?Caf=E9_ordering?=
Content-Type: text/plain; charset=iso-8859-1
Content-Transfer-Encoding: quoted-printable

Cr=E8me br=FBl=E9e
`)
	msg, err := NewParser().Parse(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Café ordering", msg.Subject)
	assert.Equal(t, "Crème brûlée", msg.Body)
}

func TestParser_MultipartPrefersPlainAndKeepsAttachments(t *testing.T) {
	raw := crlf(`
From: user@example.com
Subject: [support-7] more details
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary=outer

--outer
Content-Type: multipart/alternative; boundary=inner

--inner
Content-Type: text/plain; charset=utf-8

plain version
--inner
Content-Type: text/html; charset=utf-8

<p>html version</p>
--inner--
--outer
Content-Type: text/csv; name=report.csv
Content-Disposition: attachment; filename=report.csv

a,b
1,2
--outer--
`)
	msg, err := NewParser().Parse(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "[support-7] more details", msg.Subject)
	assert.Equal(t, "plain version", msg.Body)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "report.csv", msg.Attachments[0].Filename)
	assert.Contains(t, string(msg.Attachments[0].Content), "1,2")
}

func TestParser_HTMLOnly(t *testing.T) {
	raw := crlf(`
From: user@example.com
Subject: html
Content-Type: text/html; charset=utf-8

<html><body><p>Hello &amp; welcome</p><script>alert(1)</script><p>Line two<br>Line three</p></body></html>
`)
	msg, err := NewParser().Parse(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Hello & welcome\nLine two\nLine three", msg.Body)
	assert.NotContains(t, msg.Body, "alert")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, htmlBodyFilename, msg.Attachments[0].Filename)
}

func TestParser_InlineImageIsAttachment(t *testing.T) {
	raw := crlf(`
From: user@example.com
Subject: screenshot
Content-Type: multipart/related; boundary=b

--b
Content-Type: text/plain

see image
--b
Content-Type: image/png; name=shot.png
Content-Disposition: inline; filename=shot.png
Content-Transfer-Encoding: base64

iVBORw0KGgo=
--b--
`)
	msg, err := NewParser().Parse(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "see image", msg.Body)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "shot.png", msg.Attachments[0].Filename)
}

func TestParser_RequiresSender(t *testing.T) {
	raw := crlf(`
Subject: anonymous
Content-Type: text/plain

hello
`)
	_, err := NewParser().Parse(strings.NewReader(raw))
	assert.Error(t, err)

	_, err = NewParser().Parse(strings.NewReader("not a message"))
	assert.Error(t, err)
}
