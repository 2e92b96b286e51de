package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
)

const gmailAPIBase = "https://gmail.googleapis.com/gmail/v1/users/me"

// snippetLength bounds the preview text carried into scoring prompts.
const snippetLength = 150

// GmailSource fetches messages through the Gmail REST API. Message bodies
// arrive as raw RFC 822 and are parsed with enmime.
type GmailSource struct {
	account      *models.EmailAccount
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client // test override; nil means OAuth client
}

// NewGmailSource creates a GmailSource for the account.
func NewGmailSource(account *models.EmailAccount, clientID, clientSecret string) *GmailSource {
	return &GmailSource{
		account:      account,
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      gmailAPIBase,
	}
}

type gmailListResponse struct {
	Messages []struct {
		ID       string `json:"id"`
		ThreadID string `json:"threadId"`
	} `json:"messages"`
	NextPageToken string `json:"nextPageToken"`
}

type gmailMessage struct {
	ID           string   `json:"id"`
	ThreadID     string   `json:"threadId"`
	LabelIDs     []string `json:"labelIds"`
	Snippet      string   `json:"snippet"`
	InternalDate string   `json:"internalDate"`
	Raw          string   `json:"raw"`
}

// GetMessagesWithPagination lists message ids matching the options, then
// fetches each message in raw format and parses it into a ParsedMessage.
func (s *GmailSource) GetMessagesWithPagination(ctx context.Context, opts ListOptions) (*ListResult, error) {
	client := s.httpClient
	if client == nil {
		var err error
		client, err = oauthHTTPClient(ctx, s.account, s.clientID, s.clientSecret)
		if err != nil {
			return nil, err
		}
	}

	query := opts.Query
	if !opts.After.IsZero() {
		query = strings.TrimSpace(query + fmt.Sprintf(" after:%d", opts.After.Unix()))
	}
	if !opts.Before.IsZero() {
		query = strings.TrimSpace(query + fmt.Sprintf(" before:%d", opts.Before.Unix()))
	}

	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if opts.MaxResults > 0 {
		params.Set("maxResults", strconv.Itoa(opts.MaxResults))
	}

	var list gmailListResponse
	if err := s.getJSON(ctx, client, s.baseURL+"/messages?"+params.Encode(), &list); err != nil {
		return nil, fmt.Errorf("gmail list failed: %w", err)
	}

	messages := make([]models.ParsedMessage, 0, len(list.Messages))
	for _, ref := range list.Messages {
		var raw gmailMessage
		if err := s.getJSON(ctx, client, s.baseURL+"/messages/"+ref.ID+"?format=raw", &raw); err != nil {
			return nil, fmt.Errorf("gmail fetch %s failed: %w", ref.ID, err)
		}
		parsed, err := parseGmailMessage(&raw)
		if err != nil {
			// A single unparseable message should not sink the page.
			continue
		}
		messages = append(messages, *parsed)
	}

	return &ListResult{Messages: messages}, nil
}

// getJSON performs a GET and decodes the JSON body, mapping auth failures
// to recognizable error text.
func (s *GmailSource) getJSON(ctx context.Context, client *http.Client, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("invalid_grant: gmail rejected credentials (status %d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gmail returned status %d", resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}

// parseGmailMessage decodes the raw RFC 822 payload into a ParsedMessage.
func parseGmailMessage(msg *gmailMessage) (*models.ParsedMessage, error) {
	data, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(msg.Raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode raw message: %w", err)
	}

	env, err := enmime.ReadEnvelope(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	parsed := &models.ParsedMessage{
		ID:       msg.ID,
		ThreadID: msg.ThreadID,
		Headers: models.MessageHeaders{
			From:       env.GetHeader("From"),
			To:         splitAddresses(env.GetHeader("To")),
			Cc:         splitAddresses(env.GetHeader("Cc")),
			Bcc:        splitAddresses(env.GetHeader("Bcc")),
			Subject:    env.GetHeader("Subject"),
			Date:       env.GetHeader("Date"),
			MessageID:  env.GetHeader("Message-Id"),
			References: env.GetHeader("References"),
		},
		Snippet:  msg.Snippet,
		BodyText: env.Text,
		BodyHTML: env.HTML,
		Labels:   msg.LabelIDs,
	}

	if parsed.Snippet == "" && env.Text != "" {
		snippet := strings.TrimSpace(env.Text)
		if len(snippet) > snippetLength {
			snippet = snippet[:snippetLength]
		}
		parsed.Snippet = snippet
	}

	for _, att := range env.Attachments {
		parsed.Attachments = append(parsed.Attachments, models.MessageAttachment{
			Filename:    att.FileName,
			ContentType: att.ContentType,
			Size:        len(att.Content),
		})
	}

	if ms, err := strconv.ParseInt(msg.InternalDate, 10, 64); err == nil && ms > 0 {
		parsed.ReceivedAt = time.UnixMilli(ms).UTC()
	}

	return parsed, nil
}

func splitAddresses(header string) []string {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
