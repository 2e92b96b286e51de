package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/welldanyogia/webrana-briefing-backend/internal/config"
	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		GoogleClientID:        "google-client",
		GoogleClientSecret:    "google-secret",
		MicrosoftClientID:     "ms-client",
		MicrosoftClientSecret: "ms-secret",
	}
}

func newOutlookTestSource(t *testing.T, handler http.Handler) *OutlookSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	source := NewOutlookSource(testAccount(models.ProviderMicrosoft), "client-id", "client-secret")
	source.baseURL = server.URL
	source.httpClient = server.Client()
	return source
}

const graphListBody = `{
	"value": [
		{
			"id": "m1",
			"conversationId": "c1",
			"subject": "Budget approval needed",
			"bodyPreview": "The Q4 budget requires your sign-off",
			"from": {"emailAddress": {"name": "Carol", "address": "carol@example.com"}},
			"toRecipients": [{"emailAddress": {"address": "me@example.com"}}],
			"receivedDateTime": "2026-08-28T09:15:00Z",
			"internetMessageId": "<g1@example.com>",
			"body": {"contentType": "html", "content": "<p>Please approve</p>"}
		}
	]
}`

func TestOutlookSource_ListsAndParsesMessages(t *testing.T) {
	var query string
	source := newOutlookTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mailFolders/inbox/messages", r.URL.Path)
		query = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(graphListBody))
	}))

	result, err := source.GetMessagesWithPagination(context.Background(), ListOptions{MaxResults: 100})

	require.NoError(t, err)
	require.Len(t, result.Messages, 1)
	assert.Contains(t, query, "%24top=100")
	assert.Contains(t, query, "receivedDateTime+desc")

	msg := result.Messages[0]
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "c1", msg.ThreadID)
	assert.Equal(t, "Carol <carol@example.com>", msg.Headers.From)
	assert.Equal(t, []string{"me@example.com"}, msg.Headers.To)
	assert.Equal(t, "Budget approval needed", msg.Headers.Subject)
	assert.Equal(t, "<p>Please approve</p>", msg.BodyHTML)
	assert.Empty(t, msg.BodyText)
	assert.Equal(t, time.Date(2026, 8, 28, 9, 15, 0, 0, time.UTC), msg.ReceivedAt)
}

func TestOutlookSource_TimeWindowFilter(t *testing.T) {
	after := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	before := after.Add(24 * time.Hour)

	var filter string
	source := newOutlookTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filter = r.URL.Query().Get("$filter")
		w.Write([]byte(`{"value":[]}`))
	}))

	_, err := source.GetMessagesWithPagination(context.Background(), ListOptions{After: after, Before: before})

	require.NoError(t, err)
	assert.Contains(t, filter, "receivedDateTime ge 2026-08-20T00:00:00Z")
	assert.Contains(t, filter, "receivedDateTime le 2026-08-21T00:00:00Z")
	assert.Contains(t, filter, " and ")
}

func TestOutlookSource_UnauthorizedMapsToInvalidGrant(t *testing.T) {
	source := newOutlookTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := source.GetMessagesWithPagination(context.Background(), ListOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestOutlookSource_NoRefreshToken(t *testing.T) {
	account := testAccount(models.ProviderMicrosoft)
	empty := ""
	account.RefreshToken = &empty
	source := NewOutlookSource(account, "client-id", "client-secret")

	_, err := source.GetMessagesWithPagination(context.Background(), ListOptions{})

	assert.ErrorIs(t, err, ErrNoRefreshToken)
}

func TestParseGraphMessage_TextBodyAndSnippetTruncation(t *testing.T) {
	msg := &graphMessage{
		ID:          "m2",
		BodyPreview: strings.Repeat("preview ", 30),
	}
	msg.Body.ContentType = "text"
	msg.Body.Content = "plain text body"

	parsed := parseGraphMessage(msg)

	assert.Equal(t, "plain text body", parsed.BodyText)
	assert.Empty(t, parsed.BodyHTML)
	assert.Len(t, parsed.Snippet, snippetLength)
}

func TestFactory_SourceFor(t *testing.T) {
	factory := NewFactory(testConfig())

	gmail, err := factory.SourceFor(testAccount(models.ProviderGoogle))
	require.NoError(t, err)
	assert.IsType(t, &GmailSource{}, gmail)

	outlook, err := factory.SourceFor(testAccount(models.ProviderMicrosoft))
	require.NoError(t, err)
	assert.IsType(t, &OutlookSource{}, outlook)

	_, err = factory.SourceFor(testAccount("yahoo"))
	assert.Error(t, err)
}
