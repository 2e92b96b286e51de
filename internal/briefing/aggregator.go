package briefing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
	"github.com/welldanyogia/webrana-briefing-backend/internal/provider"
	"github.com/welldanyogia/webrana-briefing-backend/internal/repository"
)

// Mode selects how the aggregator fetches messages.
type Mode string

const (
	// ModeInbox fetches current inbox contents with no time bound.
	ModeInbox Mode = "inbox"

	// ModeHistory fetches messages within one UTC day.
	ModeHistory Mode = "history"
)

// gmailInboxQuery restricts inbox-mode fetches for Google accounts.
const gmailInboxQuery = "in:inbox -in:trash -in:spam"

// Aggregator fans briefing generation out across all of a user's
// accounts. Accounts are processed concurrently and failures stay
// isolated: one account's error never aborts the others or the request.
type Aggregator struct {
	accounts   repository.AccountRepository
	factory    provider.Factory
	scorer     *Scorer
	fetchLimit int
	logger     *slog.Logger
}

// NewAggregator creates an Aggregator.
func NewAggregator(accounts repository.AccountRepository, factory provider.Factory, scorer *Scorer, fetchLimit int, logger *slog.Logger) *Aggregator {
	if fetchLimit < 1 {
		fetchLimit = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		accounts:   accounts,
		factory:    factory,
		scorer:     scorer,
		fetchLimit: fetchLimit,
		logger:     logger,
	}
}

// Generate produces a BriefingResponse for the user. Output order follows
// account creation order regardless of which goroutine finishes first:
// each goroutine writes into its own slot of the results slice.
func (a *Aggregator) Generate(ctx context.Context, userID string, mode Mode, start, end time.Time) (*models.BriefingResponse, error) {
	accounts, err := a.accounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	if len(accounts) == 0 {
		return &models.BriefingResponse{Accounts: []models.AccountResult{}}, nil
	}

	results := make([]models.AccountResult, len(accounts))
	var wg sync.WaitGroup
	for i := range accounts {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = a.processAccount(ctx, &accounts[idx], mode, start, end)
		}(i)
	}
	wg.Wait()

	totalShown := 0
	for i := range results {
		totalShown += len(results[i].Emails)
	}

	return &models.BriefingResponse{
		Accounts:     results,
		TotalScanned: len(accounts),
		TotalShown:   totalShown,
	}, nil
}

// processAccount runs the fetch-score-filter pipeline for one account.
// All failure paths, including panics, collapse into an error result that
// still carries the account's identity.
func (a *Aggregator) processAccount(ctx context.Context, account *models.EmailAccount, mode Mode, start, end time.Time) (result models.AccountResult) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("account processing panicked",
				slog.String("email_account_id", account.ID),
				slog.Any("panic", r))
			result = a.errorResult(account, models.ErrorTypeOther)
		}
	}()

	emails, atLimit, err := a.fetchAndScore(ctx, account, mode, start, end)
	if err != nil {
		errorType := ClassifyAccountError(err)
		if errorType == models.ErrorTypeAuthRequired {
			a.logger.Warn("credential error detected, cleaning up tokens",
				slog.String("email_account_id", account.ID),
				slog.String("error", err.Error()))
			if cleanupErr := a.accounts.ClearTokens(ctx, account.ID, "invalid_grant"); cleanupErr != nil {
				a.logger.Error("token cleanup failed",
					slog.String("email_account_id", account.ID),
					slog.String("error", cleanupErr.Error()))
			}
		} else {
			a.logger.Error("failed to process account",
				slog.String("email_account_id", account.ID),
				slog.String("error", err.Error()))
		}
		return a.errorResult(account, errorType)
	}

	hasUrgent := false
	for i := range emails {
		if emails[i].Score >= models.ScoreUrgentThreshold {
			hasUrgent = true
			break
		}
	}

	return models.AccountResult{
		Account: account.Summary(),
		Emails:  emails,
		Badge: models.Badge{
			Count:     len(emails),
			HasUrgent: hasUrgent,
		},
		AtLimit: atLimit,
	}
}

// fetchAndScore fetches messages per the mode, scores them, and returns
// the retained emails sorted by descending score. The sort is stable so
// equal scores keep the provider's fetch order.
func (a *Aggregator) fetchAndScore(ctx context.Context, account *models.EmailAccount, mode Mode, start, end time.Time) ([]models.ScoredEmail, bool, error) {
	source, err := a.factory.SourceFor(account)
	if err != nil {
		return nil, false, err
	}

	opts := provider.ListOptions{MaxResults: a.fetchLimit}
	if mode == ModeInbox {
		if account.IsGoogle() {
			opts.Query = gmailInboxQuery
		}
	} else {
		opts.After = start
		opts.Before = end
	}

	result, err := source.GetMessagesWithPagination(ctx, opts)
	if err != nil {
		return nil, false, err
	}

	messages := result.Messages
	atLimit := len(messages) >= a.fetchLimit

	scores := a.scorer.ScoreEmails(ctx, messages, account)

	retained := make([]models.ScoredEmail, 0, len(messages))
	for i := range messages {
		score, ok := scores[messages[i].ID]
		if !ok {
			score = models.ScoreDefault
		}
		if score >= models.ScoreShownThreshold {
			retained = append(retained, models.ScoredEmail{
				ParsedMessage: messages[i],
				Score:         score,
			})
		}
	}

	sort.SliceStable(retained, func(i, j int) bool {
		return retained[i].Score > retained[j].Score
	})

	return retained, atLimit, nil
}

// errorResult builds the zero-email result reported for a failed account.
func (a *Aggregator) errorResult(account *models.EmailAccount, errorType string) models.AccountResult {
	return models.AccountResult{
		Account:   account.Summary(),
		Emails:    []models.ScoredEmail{},
		Badge:     models.Badge{},
		HasError:  true,
		ErrorType: errorType,
	}
}
