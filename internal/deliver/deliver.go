// Package deliver implements the local delivery pipeline: candidate
// extraction, directory resolution and the fan-out write that places one
// stored message into every matched account's inbox.
package deliver

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/themadorg/maildrop/internal/db"
	"github.com/themadorg/maildrop/internal/decode"
)

// defaultSubject is stored when a message carries no Subject header.
const defaultSubject = "(no subject)"

// Agent performs one delivery per call. Instances are stateless between
// calls; the surrounding process may run one Agent per message or share one
// across messages.
type Agent struct {
	db       *gorm.DB
	resolver *Resolver
	log      *zap.Logger
}

func NewAgent(gdb *gorm.DB, log *zap.Logger) *Agent {
	return &Agent{
		db:       gdb,
		resolver: NewResolver(gdb),
		log:      log,
	}
}

// Result describes what a delivery attempt did.
type Result struct {
	// StoredMessageID is empty when the message matched no local account
	// and nothing was written.
	StoredMessageID string

	// Delivered lists account addresses that received an inbox placement.
	Delivered []string

	// Skipped lists resolved accounts that had no inbox mailbox.
	Skipped []string
}

// Deliver runs the full pipeline for one decoded message.
//
// A message with no candidates, or whose candidates match no local account,
// is a terminal no-op: nothing is written and no error is returned. The only
// hard failure is the primary message write; recipient address rows and
// attachment rows are best-effort, and an account without an inbox mailbox
// is skipped without affecting delivery to the others.
func (a *Agent) Deliver(ctx context.Context, msg *decode.Message) (*Result, error) {
	candidates := Candidates(msg)
	if len(candidates) == 0 {
		a.log.Info("message has no recipient addresses, dropping")
		return &Result{}, nil
	}

	users, err := a.resolver.Resolve(ctx, candidates)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		a.log.Info("no candidate matches a local account, dropping",
			zap.Int("candidates", len(candidates)))
		return &Result{}, nil
	}

	body, isHTML := renderBody(msg)
	subject := msg.Subject
	if subject == "" {
		subject = defaultSubject
	}

	stored := db.Message{
		ID:             uuid.New().String(),
		SenderName:     msg.SenderName,
		SenderAddress:  msg.SenderAddress,
		Subject:        subject,
		Body:           body,
		HTML:           isHTML,
		MessageID:      nullable(msg.MessageID),
		InReplyTo:      nullable(msg.InReplyTo),
		References:     nullable(msg.References),
		ToHeader:       strings.Join(msg.To, ", "),
		CcHeader:       strings.Join(msg.Cc, ", "),
		BccHeader:      strings.Join(msg.Bcc, ", "),
		HasAttachments: len(msg.Attachments) > 0,
	}
	if err := a.db.WithContext(ctx).Create(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	a.storeAddresses(ctx, stored.ID, msg)
	a.storeAttachments(ctx, stored.ID, msg.Attachments)

	res := &Result{StoredMessageID: stored.ID}
	for _, u := range users {
		if a.placeInInbox(ctx, stored.ID, u) {
			res.Delivered = append(res.Delivered, u.Email)
		} else {
			res.Skipped = append(res.Skipped, u.Email)
		}
	}

	a.log.Info("message delivered",
		zap.String("stored_id", stored.ID),
		zap.Int("delivered", len(res.Delivered)),
		zap.Int("skipped", len(res.Skipped)))
	return res, nil
}

// storeAddresses records the To/Cc/Bcc addresses exactly as declared, for
// display. Normalization is a lookup concern and stays in candidate
// extraction. Failures are logged and ignored: these rows are enrichment,
// not authoritative for delivery.
func (a *Agent) storeAddresses(ctx context.Context, messageID string, msg *decode.Message) {
	categories := []struct {
		name  string
		addrs []string
	}{
		{db.CategoryTo, msg.To},
		{db.CategoryCc, msg.Cc},
		{db.CategoryBcc, msg.Bcc},
	}
	for _, cat := range categories {
		for _, addr := range cat.addrs {
			rec := db.MessageAddress{
				ID:        uuid.New().String(),
				MessageID: messageID,
				Category:  cat.name,
				Address:   addr,
			}
			if err := a.db.WithContext(ctx).Create(&rec).Error; err != nil {
				a.log.Warn("failed to store recipient address record",
					zap.String("category", cat.name),
					zap.String("address", rec.Address),
					zap.Error(err))
			}
		}
	}
}

// storeAttachments persists attachment parts so they can be fetched later by
// (message, attachment) id. Best-effort, same policy as address records.
func (a *Agent) storeAttachments(ctx context.Context, messageID string, atts []decode.Attachment) {
	for _, att := range atts {
		rec := db.Attachment{
			ID:        uuid.New().String(),
			MessageID: messageID,
			Filename:  att.Filename,
			MediaType: att.MediaType,
			ContentID: att.ContentID,
			Size:      int64(len(att.Content)),
			Content:   att.Content,
		}
		if err := a.db.WithContext(ctx).Create(&rec).Error; err != nil {
			a.log.Warn("failed to store attachment",
				zap.String("filename", att.Filename),
				zap.Error(err))
		}
	}
}

// placeInInbox links the stored message into one account's inbox. Reports
// whether a placement was created; a missing inbox or a failed insert only
// affects this account.
func (a *Agent) placeInInbox(ctx context.Context, messageID string, u db.User) bool {
	var inbox db.Mailbox
	err := a.db.WithContext(ctx).
		Where("user_id = ? AND role = ?", u.ID, db.RoleInbox).
		First(&inbox).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			a.log.Warn("account has no inbox mailbox, skipping",
				zap.String("account", u.Email))
		} else {
			a.log.Error("failed to look up inbox mailbox, skipping account",
				zap.String("account", u.Email),
				zap.Error(err))
		}
		return false
	}

	placement := db.MailboxMessage{
		ID:        uuid.New().String(),
		MessageID: messageID,
		UserID:    u.ID,
		MailboxID: inbox.ID,
		Read:      false,
		Starred:   false,
	}
	if err := a.db.WithContext(ctx).Create(&placement).Error; err != nil {
		a.log.Error("failed to place message in inbox, skipping account",
			zap.String("account", u.Email),
			zap.Error(err))
		return false
	}
	return true
}

// renderBody picks the stored body: the HTML body when present, otherwise
// the plain text escaped and wrapped in a preformatted block. Always
// non-empty, even for a message with no body at all.
func renderBody(msg *decode.Message) (body string, isHTML bool) {
	if msg.HTMLBody != "" {
		return msg.HTMLBody, true
	}
	return "<pre>" + html.EscapeString(msg.TextBody) + "</pre>", false
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
