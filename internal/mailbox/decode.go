package mailbox

import (
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/avigneron/winesync/internal/common"
	"github.com/avigneron/winesync/internal/entity"
)

const snippetLen = 200

func init() {
	// Decode non-UTF-8 body and header charsets instead of failing on them.
	message.CharsetReader = charset.Reader
}

var headerDecoder = mime.WordDecoder{CharsetReader: lossyCharsetReader}

// lossyCharsetReader decodes known charsets and passes unknown ones through
// byte for byte, so a bad charset label degrades one word instead of failing
// the whole header.
func lossyCharsetReader(cs string, input io.Reader) (io.Reader, error) {
	if r, err := charset.Reader(cs, input); err == nil {
		return r, nil
	}
	data, err := io.ReadAll(input)
	if err != nil {
		return nil, err
	}
	return strings.NewReader(string(data)), nil
}

// decodeHeader decodes RFC 2047 encoded words fragment by fragment and
// forces the result to valid UTF-8, replacing undecodable bytes. A header
// with malformed encoded-word syntax falls back to its raw value, also with
// replacement.
func decodeHeader(v string) string {
	if v == "" {
		return ""
	}
	decoded, err := headerDecoder.DecodeHeader(v)
	if err != nil {
		decoded = v
	}
	return strings.ToValidUTF8(decoded, "�")
}

// decodeMessage parses one RFC822 message into the normalized shape.
//
// Body selection: the first text/plain inline part wins; with none present,
// the first text/html part; a non-multipart message contributes its single
// payload the same way. Attachments are kept only when the part carries an
// attachment disposition (or a PDF content type) and the decoded filename
// ends in ".pdf" case-insensitively; everything else is dropped.
func decodeMessage(id string, r io.Reader) (entity.Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return entity.Message{}, fmt.Errorf("%w: create mail reader: %v", common.ErrParse, err)
	}

	h := mr.Header
	subject, err := h.Subject()
	if err != nil {
		subject = decodeHeader(h.Get("Subject"))
	}
	from := decodeHeader(h.Get("From"))
	rawDate := h.Get("Date")
	date, _ := h.Date() // zero time when the header is missing or malformed

	var plain, html string
	var attachments []entity.Attachment

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A broken trailing part should not sink the whole message;
			// keep what already decoded.
			break
		}

		switch ph := part.Header.(type) {
		case *mail.InlineHeader:
			ct, params, _ := ph.ContentType()
			switch {
			case ct == "text/plain" && plain == "":
				data, _ := io.ReadAll(part.Body)
				plain = string(data)
			case ct == "text/html" && html == "":
				data, _ := io.ReadAll(part.Body)
				html = string(data)
			case ct == "application/pdf":
				// Inline PDFs count as attachments when they carry a name.
				name := decodeHeader(params["name"])
				if att, ok := readPDFAttachment(name, part.Body); ok {
					attachments = append(attachments, att)
				}
			}
		case *mail.AttachmentHeader:
			filename, _ := ph.Filename()
			if att, ok := readPDFAttachment(decodeHeader(filename), part.Body); ok {
				attachments = append(attachments, att)
			}
		}
	}

	body := plain
	if body == "" {
		body = html
	}
	snippet := body
	if len(snippet) > snippetLen {
		snippet = snippet[:snippetLen]
	}

	return entity.Message{
		ID:          id,
		Subject:     subject,
		From:        from,
		Date:        date,
		RawDate:     rawDate,
		Body:        body,
		Snippet:     snippet,
		Attachments: attachments,
	}, nil
}

func readPDFAttachment(filename string, body io.Reader) (entity.Attachment, bool) {
	if filename == "" || !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return entity.Attachment{}, false
	}
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return entity.Attachment{}, false
	}
	return entity.Attachment{Filename: filename, Data: data}, true
}
