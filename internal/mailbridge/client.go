package mailbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/parthpandya1729/giarecon/internal/config"
	"github.com/parthpandya1729/giarecon/internal/logger"
	"github.com/parthpandya1729/giarecon/internal/model"
	"github.com/parthpandya1729/giarecon/pkg/errors"

	"github.com/rs/zerolog"
)

// Client talks to the email bridge REST API. The bridge runs next to this
// service and is unauthenticated; all failures normalize to the same
// network/remote taxonomy as the recon client.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.EmailBridge.Timeout),
		},
		log: logger.Get(),
	}
}

// Search lists emails matching the given criteria. Only parameters the
// caller provided are sent so the bridge applies its own defaults.
func (c *Client) Search(ctx context.Context, params model.EmailSearchParams) (*model.EmailListResult, error) {
	query := url.Values{}
	if params.Query != "" {
		query.Set("query", params.Query)
	}
	if params.Folder != "" {
		query.Set("folder", params.Folder)
	}
	if params.FromAddress != "" {
		query.Set("from", params.FromAddress)
	}
	if params.ToAddress != "" {
		query.Set("to", params.ToAddress)
	}
	if params.Subject != "" {
		query.Set("subject", params.Subject)
	}
	if params.AfterDate != "" {
		query.Set("after_date", params.AfterDate)
	}
	if params.BeforeDate != "" {
		query.Set("before_date", params.BeforeDate)
	}
	if params.HasAttachments != nil {
		query.Set("has_attachments", strconv.FormatBool(*params.HasAttachments))
	}
	if params.IsRead != nil {
		query.Set("is_read", strconv.FormatBool(*params.IsRead))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		query.Set("offset", strconv.Itoa(params.Offset))
	}

	endpoint := c.cfg.EmailBridge.BaseURL + "/emails"
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	c.log.Debug().Str("url", endpoint).Msg("Searching emails")

	result := &model.EmailListResult{}
	if err := c.getJSON(ctx, endpoint, "email search", result); err != nil {
		return nil, err
	}
	result.Success = true
	if result.Emails == nil {
		result.Emails = []model.Email{}
	}
	return result, nil
}

// Get fetches a single email by id.
func (c *Client) Get(ctx context.Context, emailID string) (*model.EmailResult, error) {
	if emailID == "" {
		return nil, errors.Precondition("email_id is required")
	}

	var email model.Email
	endpoint := c.cfg.EmailBridge.BaseURL + "/emails/" + url.PathEscape(emailID)
	if err := c.getJSON(ctx, endpoint, "get email", &email); err != nil {
		return nil, err
	}
	return &model.EmailResult{Success: true, Email: email}, nil
}

// Send composes and sends a new email through the bridge.
func (c *Client) Send(ctx context.Context, compose model.EmailCompose) (*model.SendResult, error) {
	if len(compose.To) == 0 {
		return nil, errors.Precondition("at least one recipient is required")
	}
	return c.postSend(ctx, c.cfg.EmailBridge.BaseURL+"/emails", "send email", compose)
}

// Reply replies to an existing email, optionally to all recipients.
func (c *Client) Reply(ctx context.Context, reply model.EmailReply) (*model.SendResult, error) {
	if reply.EmailID == "" {
		return nil, errors.Precondition("email_id is required")
	}
	endpoint := c.cfg.EmailBridge.BaseURL + "/emails/" + url.PathEscape(reply.EmailID) + "/reply"
	return c.postSend(ctx, endpoint, "reply", reply)
}

// Forward forwards an existing email to new recipients.
func (c *Client) Forward(ctx context.Context, forward model.EmailForward) (*model.SendResult, error) {
	if forward.EmailID == "" {
		return nil, errors.Precondition("email_id is required")
	}
	if len(forward.To) == 0 {
		return nil, errors.Precondition("at least one recipient is required")
	}
	endpoint := c.cfg.EmailBridge.BaseURL + "/emails/" + url.PathEscape(forward.EmailID) + "/forward"
	return c.postSend(ctx, endpoint, "forward", forward)
}

// Folders lists the available email folders.
func (c *Client) Folders(ctx context.Context) (*model.FolderListResult, error) {
	var resp struct {
		Folders []model.Folder `json:"folders"`
	}
	if err := c.getJSON(ctx, c.cfg.EmailBridge.BaseURL+"/folders", "list folders", &resp); err != nil {
		return nil, err
	}
	if resp.Folders == nil {
		resp.Folders = []model.Folder{}
	}
	return &model.FolderListResult{Success: true, Folders: resp.Folders}, nil
}

// Attachment asks the bridge to stage an attachment locally and returns its
// metadata, including the bridge-local path.
func (c *Client) Attachment(ctx context.Context, attachmentID string) (*model.AttachmentResult, error) {
	if attachmentID == "" {
		return nil, errors.Precondition("attachment_id is required")
	}

	var attachment model.Attachment
	endpoint := c.cfg.EmailBridge.BaseURL + "/attachments/" + url.PathEscape(attachmentID)
	if err := c.getJSON(ctx, endpoint, "download attachment", &attachment); err != nil {
		return nil, err
	}
	return &model.AttachmentResult{Success: true, Attachment: attachment}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, op string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Network(err, "failed to create "+op+" request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Network(err, "network error during "+op)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp, op, v)
}

func (c *Client) postSend(ctx context.Context, endpoint, op string, payload interface{}) (*model.SendResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.PreconditionWrap(err, "failed to marshal "+op+" payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, errors.Network(err, "failed to create "+op+" request")
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug().Str("url", endpoint).Msg("Posting to email bridge")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Network(err, "network error during "+op)
	}
	defer resp.Body.Close()

	result := &model.SendResult{}
	if err := c.handleResponse(resp, op, result); err != nil {
		return nil, err
	}
	result.Success = true
	return result, nil
}

func (c *Client) handleResponse(resp *http.Response, op string, v interface{}) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Network(err, "failed to read "+op+" response")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.log.Error().Int("status", resp.StatusCode).Str("op", op).Msg("Email bridge rejected request")
		return errors.Remote(fmt.Sprintf("%s failed with status %d", op, resp.StatusCode), parseDetail(body))
	}

	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Remote("failed to decode "+op+" response", string(body))
	}
	return nil
}

func parseDetail(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	var detail interface{}
	if err := json.Unmarshal(body, &detail); err != nil {
		return string(body)
	}
	return detail
}
