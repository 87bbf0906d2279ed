package db

import (
	"time"
)

// RoleInbox marks the system-reserved inbox mailbox: every account is
// expected to have exactly one, created together with the account.
const RoleInbox = "inbox"

// Address categories for MessageAddress rows.
const (
	CategoryTo  = "to"
	CategoryCc  = "cc"
	CategoryBcc = "bcc"
)

// User is a local account, keyed by its unique normalized email address.
// Accounts are managed by operator tooling; delivery only reads them.
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	Email     string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Mailbox belongs to one User. Role distinguishes system mailboxes from
// user-created folders.
type Mailbox struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `gorm:"type:varchar(36);index;not null"`
	Name      string    `gorm:"not null"`
	Role      string    `gorm:"index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Message is the single durable record of an inbound message, independent of
// any recipient. Fan-out to accounts happens through MailboxMessage rows; the
// body is never duplicated.
type Message struct {
	ID             string `gorm:"primaryKey;type:varchar(36)"`
	SenderName     string
	SenderAddress  string `gorm:"index"`
	Subject        string
	Body           string `gorm:"not null"`
	HTML           bool
	MessageID      *string `gorm:"index"`
	InReplyTo      *string
	References     *string
	ToHeader       string
	CcHeader       string
	BccHeader      string
	HasAttachments bool
	Draft          bool
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// MessageAddress records one declared recipient address of a message, tagged
// with the header category it came from. Display metadata only; which
// accounts actually received the message is recorded by MailboxMessage.
type MessageAddress struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	MessageID string `gorm:"type:varchar(36);index;not null"`
	Category  string `gorm:"not null"`
	Address   string `gorm:"not null"`
}

// MailboxMessage places one Message into one account's mailbox. Per-recipient
// state (read, starred) lives here, not on the shared Message row.
type MailboxMessage struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	MessageID string    `gorm:"type:varchar(36);index;not null"`
	UserID    string    `gorm:"type:varchar(36);index;not null"`
	MailboxID string    `gorm:"type:varchar(36);index;not null"`
	Read      bool      `gorm:"not null"`
	Starred   bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Attachment stores one attachment part of a message, bytes included. The
// collection of a message's rows (without Content) forms its manifest.
type Attachment struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	MessageID string `gorm:"type:varchar(36);index;not null"`
	Filename  string
	MediaType string `gorm:"type:varchar(255)"`
	ContentID string `gorm:"type:varchar(255)"`
	Size      int64
	Content   []byte
}
