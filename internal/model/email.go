package model

// Address is an email address with an optional display name, matching the
// email bridge's wire format.
type Address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// Email is a message as returned by the email bridge.
type Email struct {
	ID             string       `json:"id"`
	AccountID      string       `json:"account_id"`
	MessageID      string       `json:"message_id"`
	Folder         string       `json:"folder"`
	From           Address      `json:"from"`
	To             []Address    `json:"to"`
	Cc             []Address    `json:"cc,omitempty"`
	Bcc            []Address    `json:"bcc,omitempty"`
	Subject        string       `json:"subject"`
	TextContent    string       `json:"text_content"`
	HTMLContent    string       `json:"html_content,omitempty"`
	Date           string       `json:"date"`
	IsRead         bool         `json:"is_read"`
	HasAttachments bool         `json:"has_attachments"`
	Attachments    []Attachment `json:"attachments,omitempty"`
}

// Attachment is attachment metadata from the email bridge. Path is the
// bridge-local storage path populated on download.
type Attachment struct {
	ID          string `json:"id"`
	EmailID     string `json:"email_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Path        string `json:"path,omitempty"`
}

// Folder is an email folder as returned by the bridge.
type Folder struct {
	Name        string `json:"name"`
	TotalCount  int    `json:"total_count"`
	UnreadCount int    `json:"unread_count"`
}

// EmailSearchParams filters an email search. Pointer fields are omitted from
// the bridge query when nil so the bridge applies its own defaults.
type EmailSearchParams struct {
	Query          string `json:"query,omitempty"`
	Folder         string `json:"folder,omitempty"`
	FromAddress    string `json:"from_address,omitempty"`
	ToAddress      string `json:"to_address,omitempty"`
	Subject        string `json:"subject,omitempty"`
	AfterDate      string `json:"after_date,omitempty"`
	BeforeDate     string `json:"before_date,omitempty"`
	HasAttachments *bool  `json:"has_attachments,omitempty"`
	IsRead         *bool  `json:"is_read,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
}

// EmailCompose is the payload for sending a new email.
type EmailCompose struct {
	To              []Address `json:"to"`
	Cc              []Address `json:"cc,omitempty"`
	Bcc             []Address `json:"bcc,omitempty"`
	Subject         string    `json:"subject"`
	TextContent     string    `json:"text_content"`
	HTMLContent     string    `json:"html_content,omitempty"`
	AttachmentPaths []string  `json:"attachment_paths,omitempty"`
}

// EmailReply is the payload for replying to an existing email.
type EmailReply struct {
	EmailID         string   `json:"email_id"`
	ReplyAll        bool     `json:"reply_all"`
	TextContent     string   `json:"text_content"`
	HTMLContent     string   `json:"html_content,omitempty"`
	AttachmentPaths []string `json:"attachment_paths,omitempty"`
}

// EmailForward is the payload for forwarding an existing email.
type EmailForward struct {
	EmailID         string    `json:"email_id"`
	To              []Address `json:"to"`
	Cc              []Address `json:"cc,omitempty"`
	Bcc             []Address `json:"bcc,omitempty"`
	TextContent     string    `json:"text_content,omitempty"`
	HTMLContent     string    `json:"html_content,omitempty"`
	AttachmentPaths []string  `json:"attachment_paths,omitempty"`
}

// EmailListResult is the tool-facing result of a search_emails call,
// mirroring the bridge's list response.
type EmailListResult struct {
	Success    bool    `json:"success"`
	Emails     []Email `json:"emails"`
	TotalCount int     `json:"total_count"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
}

// EmailResult is the tool-facing result of a get_email call.
type EmailResult struct {
	Success bool  `json:"success"`
	Email   Email `json:"email"`
}

// SendResult is the tool-facing result of send/reply/forward calls.
type SendResult struct {
	Success bool   `json:"success"`
	EmailID string `json:"email_id,omitempty"`
	Message string `json:"message,omitempty"`
}

// FolderListResult is the tool-facing result of a list_folders call.
type FolderListResult struct {
	Success bool     `json:"success"`
	Folders []Folder `json:"folders"`
}

// AttachmentResult is the tool-facing result of a download_attachment call.
type AttachmentResult struct {
	Success    bool       `json:"success"`
	Attachment Attachment `json:"attachment"`
}
