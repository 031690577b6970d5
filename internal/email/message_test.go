package email

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageWrite(t *testing.T) {
	m := &Message{
		From:      "noreply@candorfeedback.com",
		To:        []string{"alice@example.com"},
		Subject:   "Feedback Invitation",
		PlainBody: "Click the following link to provide anonymous feedback: https://feedback.example.com/feedback-form?token=abc",
		HTMLBody:  `<p>Click <a href="https://feedback.example.com/feedback-form?token=abc">here</a> to provide anonymous feedback.</p>`,
	}

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf))

	parsed, err := mail.ReadMessage(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, "noreply@candorfeedback.com", parsed.Header.Get("From"))
	assert.Equal(t, "alice@example.com", parsed.Header.Get("To"))
	assert.Equal(t, "Feedback Invitation", parsed.Header.Get("Subject"))
	assert.Equal(t, "1.0", parsed.Header.Get("MIME-Version"))

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)
	require.NotEmpty(t, params["boundary"])

	// The multipart reader transparently decodes the quoted-printable parts
	mr := multipart.NewReader(parsed.Body, params["boundary"])

	plain, err := mr.NextPart()
	require.NoError(t, err)
	assert.Contains(t, plain.Header.Get("Content-Type"), "text/plain")
	content, err := io.ReadAll(plain)
	require.NoError(t, err)
	assert.Equal(t, m.PlainBody, string(content))

	html, err := mr.NextPart()
	require.NoError(t, err)
	assert.Contains(t, html.Header.Get("Content-Type"), "text/html")
	content, err = io.ReadAll(html)
	require.NoError(t, err)
	assert.Equal(t, m.HTMLBody, string(content))

	_, err = mr.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestMessageWrite_MultipleRecipients(t *testing.T) {
	m := &Message{
		From:     "noreply@candorfeedback.com",
		To:       []string{"alice@example.com", "bob@example.com"},
		Subject:  "Feedback Invitation",
		HTMLBody: "<p>hello</p>",
	}

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf))

	parsed, err := mail.ReadMessage(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com, bob@example.com", parsed.Header.Get("To"))
}

func TestMessageWrite_HTMLOnly(t *testing.T) {
	m := &Message{
		From:     "noreply@candorfeedback.com",
		To:       []string{"alice@example.com"},
		Subject:  "Feedback Invitation",
		HTMLBody: "<p>hello</p>",
	}

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf))

	parsed, err := mail.ReadMessage(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	_, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)

	mr := multipart.NewReader(parsed.Body, params["boundary"])

	part, err := mr.NextPart()
	require.NoError(t, err)
	assert.Contains(t, part.Header.Get("Content-Type"), "text/html")

	_, err = mr.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestMessageWrite_LongLinesSurviveEncoding(t *testing.T) {
	// Quoted-printable folds lines above 76 characters, decoding must
	// restore the original byte for byte
	long := strings.Repeat("feedback is a gift, wrap it well. ", 20)
	m := &Message{
		From:      "noreply@candorfeedback.com",
		To:        []string{"alice@example.com"},
		Subject:   "Feedback Invitation",
		PlainBody: long,
	}

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf))

	parsed, err := mail.ReadMessage(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	_, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)

	mr := multipart.NewReader(parsed.Body, params["boundary"])
	part, err := mr.NextPart()
	require.NoError(t, err)
	content, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, long, string(content))
}

func TestInvitationBodyFallback(t *testing.T) {
	// Tests run outside the deployment root, so the HTML template is not
	// on disk and the plain sentence is used instead
	body := invitationBody("https://feedback.example.com/feedback-form?token=abc")
	assert.Equal(t,
		"Click the following link to provide anonymous feedback: https://feedback.example.com/feedback-form?token=abc",
		body)
}
