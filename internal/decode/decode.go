// Package decode turns raw RFC 5322 bytes into a structured inbound message.
//
// MIME parsing itself is delegated to emersion/go-message; this package only
// flattens its part tree into the shape the delivery pipeline consumes.
package decode

import (
	"fmt"
	"io"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// Message is a decoded inbound message. All fields are best-effort: a missing
// or malformed header leaves the corresponding field empty rather than
// failing the decode.
type Message struct {
	SenderName    string
	SenderAddress string
	Subject       string

	TextBody string
	HTMLBody string

	To  []string
	Cc  []string
	Bcc []string

	// Literal header values, unparsed.
	DeliveredTo string
	XOriginalTo string

	// Threading metadata, kept as opaque strings.
	MessageID  string
	InReplyTo  string
	References string

	Attachments []Attachment
}

// Attachment is one attachment part with its raw bytes.
type Attachment struct {
	Filename  string
	MediaType string
	ContentID string
	Content   []byte
}

// Read decodes a complete message from r. It fails only when the message
// structure itself cannot be parsed; individual malformed headers are
// tolerated.
func Read(r io.Reader) (*Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	h := mr.Header
	msg := &Message{
		To:          addressList(h, "To"),
		Cc:          addressList(h, "Cc"),
		Bcc:         addressList(h, "Bcc"),
		DeliveredTo: h.Get("Delivered-To"),
		XOriginalTo: h.Get("X-Original-To"),
		MessageID:   h.Get("Message-Id"),
		InReplyTo:   h.Get("In-Reply-To"),
		References:  h.Get("References"),
	}

	if subject, err := h.Subject(); err == nil {
		msg.Subject = subject
	} else {
		msg.Subject = h.Get("Subject")
	}

	if from, err := h.AddressList("From"); err == nil && len(from) > 0 {
		msg.SenderName = from[0].Name
		msg.SenderAddress = from[0].Address
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read message part: %w", err)
		}

		switch ph := p.Header.(type) {
		case *mail.InlineHeader:
			mediaType, _, _ := ph.ContentType()
			switch mediaType {
			case "text/plain":
				body, err := io.ReadAll(p.Body)
				if err != nil {
					return nil, fmt.Errorf("failed to read text body: %w", err)
				}
				if msg.TextBody == "" {
					msg.TextBody = string(body)
				}
			case "text/html":
				body, err := io.ReadAll(p.Body)
				if err != nil {
					return nil, fmt.Errorf("failed to read html body: %w", err)
				}
				if msg.HTMLBody == "" {
					msg.HTMLBody = string(body)
				}
			default:
				// Inline non-text content (e.g. images referenced by cid)
				// is treated as an attachment.
				_, params, _ := ph.ContentType()
				att, err := readPart(ph.Get("Content-Id"), mediaType, inlineName(ph, params), p.Body)
				if err != nil {
					return nil, err
				}
				msg.Attachments = append(msg.Attachments, att)
			}
		case *mail.AttachmentHeader:
			mediaType, _, _ := ph.ContentType()
			filename, _ := ph.Filename()
			att, err := readPart(ph.Get("Content-Id"), mediaType, filename, p.Body)
			if err != nil {
				return nil, err
			}
			msg.Attachments = append(msg.Attachments, att)
		}
	}

	return msg, nil
}

func readPart(contentID, mediaType, filename string, body io.Reader) (Attachment, error) {
	content, err := io.ReadAll(body)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to read attachment %q: %w", filename, err)
	}
	return Attachment{
		Filename:  filename,
		MediaType: mediaType,
		ContentID: strings.Trim(contentID, "<>"),
		Content:   content,
	}, nil
}

func addressList(h mail.Header, key string) []string {
	list, err := h.AddressList(key)
	if err != nil {
		return nil
	}
	addrs := make([]string, 0, len(list))
	for _, a := range list {
		addrs = append(addrs, a.Address)
	}
	return addrs
}

func inlineName(h *mail.InlineHeader, params map[string]string) string {
	if name := params["name"]; name != "" {
		return name
	}
	return strings.Trim(h.Get("Content-Id"), "<>")
}
