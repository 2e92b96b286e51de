package linking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
	"github.com/welldanyogia/webrana-briefing-backend/internal/oauth"
	"github.com/welldanyogia/webrana-briefing-backend/internal/repository"
	"golang.org/x/oauth2"
)

// Stable outcome codes surfaced to the UI via redirect query parameters.
const (
	SuccessAccountLinked = "account_created_and_linked"
	SuccessAccountMerged = "account_merged"

	ErrCodeUserCancelled           = "user_cancelled"
	ErrCodeCodeAlreadyRedeemed     = "oauth_code_already_redeemed"
	ErrCodeLinkFailed              = "link_failed"
	ErrCodeInvalidState            = "invalid_state"
	ErrCodeInvalidStateFormat      = "invalid_state_format"
	ErrCodeUserMismatch            = "user_mismatch"
	ErrCodeMissingCode             = "missing_code"
	ErrCodeTokenExchangeFailed     = "token_exchange_failed"
	ErrCodeProfileFetchFailed      = "profile_fetch_failed"
	ErrCodeIncompleteProfile       = "incomplete_profile"
	ErrCodeAccountNotFound         = "account_not_found_for_merge"
	ErrCodeAlreadyLinkedToSelf     = "already_linked_to_self"
	ErrCodeDuplicateRequestTimeout = "duplicate_request_timeout"
	ErrCodeUnauthorized            = "unauthorized"
)

// CallbackParams carries everything the linking callback received.
type CallbackParams struct {
	Provider            string
	Code                string
	UpstreamError       string
	UpstreamErrorDesc   string
	ReceivedState       string
	StoredState         string
	AuthenticatedUserID string
}

// Service runs the account-linking callback flow behind the idempotency
// guard.
type Service struct {
	accounts  repository.AccountRepository
	users     repository.UserRepository
	exchanger Exchanger
	guard     *Guard
	logger    *slog.Logger
}

// NewService creates a linking Service.
func NewService(accounts repository.AccountRepository, users repository.UserRepository, exchanger Exchanger, guard *Guard, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		accounts:  accounts,
		users:     users,
		exchanger: exchanger,
		guard:     guard,
		logger:    logger,
	}
}

// HandleCallback processes one linking callback and returns its outcome.
// Every terminal outcome for a valid nonce is cached, so a duplicate
// callback replays the first one's result instead of redeeming the code
// a second time.
func (s *Service) HandleCallback(ctx context.Context, params CallbackParams) Outcome {
	// Upstream provider errors come before state validation: the
	// authorization server already decided this flow's fate.
	if params.UpstreamError != "" {
		return s.handleUpstreamError(ctx, params)
	}

	if params.StoredState == "" || params.ReceivedState == "" || params.StoredState != params.ReceivedState {
		s.logger.Warn("invalid state during linking callback",
			slog.String("provider", params.Provider),
			slog.Bool("has_stored_state", params.StoredState != ""))
		return Outcome{Error: ErrCodeInvalidState}
	}

	state, err := oauth.ParseState(params.StoredState)
	if err != nil {
		s.logger.Error("failed to decode state", slog.String("error", err.Error()))
		return Outcome{Error: ErrCodeInvalidStateFormat}
	}

	if params.AuthenticatedUserID == "" {
		return Outcome{Error: ErrCodeUnauthorized}
	}
	if params.AuthenticatedUserID != state.UserID {
		s.logger.Error("user mismatch in linking callback",
			slog.String("authenticated_user_id", params.AuthenticatedUserID),
			slog.String("target_user_id", state.UserID))
		return Outcome{
			Error:            ErrCodeUserMismatch,
			ErrorDescription: "Session expired. Please try again.",
		}
	}

	if params.Code == "" {
		return Outcome{Error: ErrCodeMissingCode}
	}

	// Idempotency guard: replay a completed flow for this nonce.
	if cached, err := s.guard.CachedOutcome(ctx, params.Provider, state.Nonce); err == nil && cached != nil {
		s.logger.Info("returning cached OAuth outcome for duplicate request",
			slog.String("nonce", state.Nonce))
		return *cached
	}

	acquired, err := s.guard.AcquireLock(ctx, params.Provider, state.Nonce)
	if err != nil {
		s.logger.Error("failed to acquire OAuth lock", slog.String("error", err.Error()))
		return Outcome{Error: ErrCodeLinkFailed, ErrorDescription: err.Error()}
	}

	if !acquired {
		// Another request holds the lock; wait for its outcome.
		s.logger.Info("duplicate request detected, waiting for first request",
			slog.String("nonce", state.Nonce))
		outcome, err := s.guard.AwaitOutcome(ctx, params.Provider, state.Nonce)
		if err == nil && outcome != nil {
			return *outcome
		}
		s.logger.Warn("timeout waiting for first OAuth request to complete",
			slog.String("nonce", state.Nonce))
		return Outcome{Error: ErrCodeDuplicateRequestTimeout}
	}

	outcome := s.runLink(ctx, params.Provider, params.Code, state)

	// Terminal outcome: cache it for duplicates and release the lock so
	// the nonce is never wedged.
	s.guard.SaveOutcome(ctx, params.Provider, state.Nonce, outcome)
	s.guard.ReleaseLock(ctx, params.Provider, state.Nonce)

	return outcome
}

// handleUpstreamError maps authorization-server errors to stable codes
// and caches them against the nonce when the state is intact, making
// even error outcomes idempotent.
func (s *Service) handleUpstreamError(ctx context.Context, params CallbackParams) Outcome {
	s.logger.Warn("OAuth error in linking callback",
		slog.String("provider", params.Provider),
		slog.String("error", params.UpstreamError),
		slog.String("description", params.UpstreamErrorDesc))

	mapped := ErrCodeLinkFailed
	switch {
	case params.UpstreamError == "access_denied":
		mapped = ErrCodeUserCancelled
	case strings.Contains(params.UpstreamErrorDesc, "AADSTS54005"),
		strings.Contains(params.UpstreamErrorDesc, "already redeemed"):
		mapped = ErrCodeCodeAlreadyRedeemed
	}

	outcome := Outcome{Error: mapped, ErrorDescription: params.UpstreamErrorDesc}
	if outcome.ErrorDescription == "" {
		outcome.ErrorDescription = params.UpstreamError
	}

	// Cache opportunistically if the nonce is recoverable.
	if params.StoredState != "" && params.StoredState == params.ReceivedState {
		if state, err := oauth.ParseState(params.StoredState); err == nil {
			s.guard.SaveOutcome(ctx, params.Provider, state.Nonce, outcome)
		}
	}

	return outcome
}

// runLink executes the full linking/merge flow while holding the lock:
// token exchange, profile fetch, then account create-or-merge.
func (s *Service) runLink(ctx context.Context, provider, code string, state oauth.State) Outcome {
	token, err := s.exchanger.Exchange(ctx, provider, code)
	if err != nil {
		s.logger.Error("token exchange failed", slog.String("error", err.Error()))
		return Outcome{Error: ErrCodeTokenExchangeFailed, ErrorDescription: err.Error()}
	}

	profile, err := s.exchanger.FetchProfile(ctx, provider, token)
	if err != nil {
		s.logger.Error("profile fetch failed", slog.String("error", err.Error()))
		code := ErrCodeProfileFetchFailed
		if strings.Contains(err.Error(), "missing required") {
			code = ErrCodeIncompleteProfile
		}
		return Outcome{Error: code, ErrorDescription: err.Error()}
	}

	existing, err := s.accounts.GetByProviderAccountID(ctx, provider, profile.ProviderAccountID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return Outcome{Error: ErrCodeLinkFailed, ErrorDescription: err.Error()}
	}

	if existing == nil {
		if state.Action == oauth.ActionMerge {
			s.logger.Warn("merge failed: provider account not found",
				slog.String("email", profile.Email))
			return Outcome{Error: ErrCodeAccountNotFound}
		}
		return s.createAccount(ctx, provider, token, profile, state.UserID)
	}

	if existing.UserID == state.UserID {
		s.logger.Warn("account already linked to this user",
			slog.String("email", profile.Email),
			slog.String("user_id", state.UserID))
		return Outcome{Error: ErrCodeAlreadyLinkedToSelf}
	}

	return s.mergeAccount(ctx, token, profile, existing, state.UserID)
}

// createAccount links a brand-new provider account to the user. Linking
// an email the user already has returns success without a second row.
func (s *Service) createAccount(ctx context.Context, provider string, token *oauth2.Token, profile *Profile, targetUserID string) Outcome {
	if dup, err := s.accounts.FindByUserAndEmail(ctx, targetUserID, profile.Email); err == nil && dup != nil {
		s.logger.Info("account already exists for user, returning success",
			slog.String("email", profile.Email),
			slog.String("email_account_id", dup.ID))
		return Outcome{Success: SuccessAccountLinked}
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return Outcome{Error: ErrCodeLinkFailed, ErrorDescription: err.Error()}
	}

	s.logger.Info("creating new linked account",
		slog.String("provider", provider),
		slog.String("email", profile.Email),
		slog.String("user_id", targetUserID))

	account := &models.EmailAccount{
		ID:                uuid.NewString(),
		UserID:            targetUserID,
		Email:             profile.Email,
		Provider:          provider,
		ProviderAccountID: profile.ProviderAccountID,
		Image:             profile.Image,
	}
	if profile.Name != "" {
		account.Name = &profile.Name
	}
	applyTokens(account, token)

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			// Lost a race against another linking flow for the same
			// provider account; the account exists, so report success.
			return Outcome{Success: SuccessAccountLinked}
		}
		return Outcome{Error: ErrCodeLinkFailed, ErrorDescription: err.Error()}
	}

	s.logger.Info("linked new account",
		slog.String("email", profile.Email),
		slog.String("email_account_id", account.ID))
	return Outcome{Success: SuccessAccountLinked}
}

// mergeAccount moves an account linked to another user over to the
// target user: premium transfers first, then fresh tokens are saved, then
// every account of the source user is reassigned and the source user
// deleted.
func (s *Service) mergeAccount(ctx context.Context, token *oauth2.Token, profile *Profile, existing *models.EmailAccount, targetUserID string) Outcome {
	s.logger.Info("merging account into user",
		slog.String("email", profile.Email),
		slog.String("source_user_id", existing.UserID),
		slog.String("target_user_id", targetUserID))

	if err := s.users.TransferPremium(ctx, existing.UserID, targetUserID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return Outcome{Error: ErrCodeLinkFailed, ErrorDescription: fmt.Sprintf("premium transfer failed: %v", err)}
	}

	applyTokens(existing, token)
	if err := s.accounts.UpdateTokens(ctx, existing); err != nil {
		return Outcome{Error: ErrCodeLinkFailed, ErrorDescription: fmt.Sprintf("token update failed: %v", err)}
	}

	sourceUser, err := s.users.GetByID(ctx, existing.UserID)
	if err != nil {
		return Outcome{Error: ErrCodeLinkFailed, ErrorDescription: fmt.Sprintf("source user lookup failed: %v", err)}
	}

	var newName, newEmail *string
	if sourceUser.Name != "" {
		newName = &sourceUser.Name
	}
	if sourceUser.Email != "" {
		newEmail = &sourceUser.Email
	}
	if err := s.accounts.ReassignToUser(ctx, existing.UserID, targetUserID, existing.ID, newName, newEmail); err != nil {
		return Outcome{Error: ErrCodeLinkFailed, ErrorDescription: fmt.Sprintf("account reassignment failed: %v", err)}
	}

	s.logger.Info("account re-assigned to user",
		slog.String("email", profile.Email),
		slog.String("target_user_id", targetUserID))
	return Outcome{Success: SuccessAccountMerged}
}

// applyTokens copies exchanged OAuth tokens onto an account.
func applyTokens(account *models.EmailAccount, token *oauth2.Token) {
	if token == nil {
		return
	}
	if token.AccessToken != "" {
		access := token.AccessToken
		account.AccessToken = &access
	}
	if token.RefreshToken != "" {
		refresh := token.RefreshToken
		account.RefreshToken = &refresh
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry.UTC()
		account.TokenExpiresAt = &expiry
	}
}
