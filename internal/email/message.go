package email

import (
	"fmt"
	"io"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
)

// Message is a minimal multipart/alternative email: a plain-text body plus
// an HTML rendering of the same content.
type Message struct {
	From      string
	To        []string
	Subject   string
	PlainBody string
	HTMLBody  string
}

// Write renders the full message, headers included, to w.
func (m *Message) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\n",
		m.From, strings.Join(m.To, ", "), m.Subject)
	if err != nil {
		return err
	}

	mw := multipart.NewWriter(w)
	_, err = fmt.Fprintf(w, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", mw.Boundary())
	if err != nil {
		return err
	}

	if m.PlainBody != "" {
		if err := addQuotedPrintablePart(mw, "text/plain; charset=UTF-8", m.PlainBody); err != nil {
			return err
		}
	}
	if m.HTMLBody != "" {
		if err := addQuotedPrintablePart(mw, "text/html; charset=UTF-8", m.HTMLBody); err != nil {
			return err
		}
	}

	return mw.Close()
}

func addQuotedPrintablePart(mw *multipart.Writer, contentType, content string) error {
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Transfer-Encoding": {"quoted-printable"},
		"Content-Type":              {contentType},
	})
	if err != nil {
		return err
	}

	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(content)); err != nil {
		return err
	}
	return qp.Close()
}
