package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
)

const graphAPIBase = "https://graph.microsoft.com/v1.0/me"

// OutlookSource fetches messages through the Microsoft Graph API.
type OutlookSource struct {
	account      *models.EmailAccount
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client // test override; nil means OAuth client
}

// NewOutlookSource creates an OutlookSource for the account.
func NewOutlookSource(account *models.EmailAccount, clientID, clientSecret string) *OutlookSource {
	return &OutlookSource{
		account:      account,
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      graphAPIBase,
	}
}

type graphAddress struct {
	EmailAddress struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"emailAddress"`
}

type graphMessage struct {
	ID               string         `json:"id"`
	ConversationID   string         `json:"conversationId"`
	Subject          string         `json:"subject"`
	BodyPreview      string         `json:"bodyPreview"`
	From             graphAddress   `json:"from"`
	ToRecipients     []graphAddress `json:"toRecipients"`
	CcRecipients     []graphAddress `json:"ccRecipients"`
	ReceivedDateTime time.Time      `json:"receivedDateTime"`
	HasAttachments   bool           `json:"hasAttachments"`
	Body             struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
	InternetMessageID string `json:"internetMessageId"`
}

type graphListResponse struct {
	Value []graphMessage `json:"value"`
}

// GetMessagesWithPagination lists inbox messages, newest first, bounded
// by the receivedDateTime range when one is given.
func (s *OutlookSource) GetMessagesWithPagination(ctx context.Context, opts ListOptions) (*ListResult, error) {
	client := s.httpClient
	if client == nil {
		var err error
		client, err = oauthHTTPClient(ctx, s.account, s.clientID, s.clientSecret)
		if err != nil {
			return nil, err
		}
	}

	params := url.Values{}
	if opts.MaxResults > 0 {
		params.Set("$top", strconv.Itoa(opts.MaxResults))
	}
	params.Set("$orderby", "receivedDateTime desc")

	var filters []string
	if !opts.After.IsZero() {
		filters = append(filters, "receivedDateTime ge "+opts.After.UTC().Format(time.RFC3339))
	}
	if !opts.Before.IsZero() {
		filters = append(filters, "receivedDateTime le "+opts.Before.UTC().Format(time.RFC3339))
	}
	if len(filters) > 0 {
		params.Set("$filter", strings.Join(filters, " and "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/mailFolders/inbox/messages?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph list failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("invalid_grant: graph rejected credentials (status %d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph returned status %d", resp.StatusCode)
	}

	var list graphListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode graph response: %w", err)
	}

	messages := make([]models.ParsedMessage, 0, len(list.Value))
	for i := range list.Value {
		messages = append(messages, *parseGraphMessage(&list.Value[i]))
	}

	return &ListResult{Messages: messages}, nil
}

// parseGraphMessage converts a Graph message into a ParsedMessage.
func parseGraphMessage(msg *graphMessage) *models.ParsedMessage {
	parsed := &models.ParsedMessage{
		ID:       msg.ID,
		ThreadID: msg.ConversationID,
		Headers: models.MessageHeaders{
			From:      formatGraphAddress(msg.From),
			To:        formatGraphAddresses(msg.ToRecipients),
			Cc:        formatGraphAddresses(msg.CcRecipients),
			Subject:   msg.Subject,
			Date:      msg.ReceivedDateTime.Format(time.RFC1123Z),
			MessageID: msg.InternetMessageID,
		},
		Snippet:    msg.BodyPreview,
		ReceivedAt: msg.ReceivedDateTime.UTC(),
	}

	if strings.EqualFold(msg.Body.ContentType, "html") {
		parsed.BodyHTML = msg.Body.Content
	} else {
		parsed.BodyText = msg.Body.Content
	}

	if len(parsed.Snippet) > snippetLength {
		parsed.Snippet = parsed.Snippet[:snippetLength]
	}

	return parsed
}

func formatGraphAddress(addr graphAddress) string {
	if addr.EmailAddress.Name != "" {
		return fmt.Sprintf("%s <%s>", addr.EmailAddress.Name, addr.EmailAddress.Address)
	}
	return addr.EmailAddress.Address
}

func formatGraphAddresses(addrs []graphAddress) []string {
	if len(addrs) == 0 {
		return nil
	}
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, formatGraphAddress(a))
	}
	return out
}
