package briefing

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/welldanyogia/webrana-briefing-backend/internal/llm"
	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
)

const (
	// DefaultChunkSize bounds how many emails go into one scoring prompt.
	DefaultChunkSize = 50

	scoreMaxTokens   = 200
	scoreTemperature = 0.3
	previewLength    = 150
)

// scoreLine matches "N: score" lines in model output.
var scoreLine = regexp.MustCompile(`^\s*(\d+)\s*:\s*(\d+)`)

// Scorer assigns 1-10 importance scores to emails via a language model.
type Scorer struct {
	generator llm.TextGenerator
	chunkSize int
	logger    *slog.Logger
}

// NewScorer creates a Scorer. A chunkSize below 1 falls back to the
// default.
func NewScorer(generator llm.TextGenerator, chunkSize int, logger *slog.Logger) *Scorer {
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{
		generator: generator,
		chunkSize: chunkSize,
		logger:    logger,
	}
}

// ScoreEmails scores every message and returns a complete id-to-score
// mapping. It never fails for non-empty input: a chunk whose model call
// or parse goes wrong degrades to the default score for that chunk, and
// any message left unscored afterwards also receives the default.
func (s *Scorer) ScoreEmails(ctx context.Context, emails []models.ParsedMessage, account *models.EmailAccount) map[string]int {
	scores := make(map[string]int, len(emails))
	if len(emails) == 0 {
		return scores
	}

	guidance := strings.TrimSpace(account.Guidance())
	if guidance == "" {
		guidance = DefaultGuidance
	}
	about := "None"
	if account.About != nil && strings.TrimSpace(*account.About) != "" {
		about = *account.About
	}

	for start := 0; start < len(emails); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(emails) {
			end = len(emails)
		}
		chunk := emails[start:end]

		prompt := buildScoringPrompt(chunk, about, guidance)

		text, err := s.generator.GenerateText(ctx, llm.GenerateRequest{
			Prompt:      prompt,
			MaxTokens:   scoreMaxTokens,
			Temperature: scoreTemperature,
		})
		if err != nil {
			s.logger.Error("scoring failed for chunk",
				slog.Int("chunk_size", len(chunk)),
				slog.String("email_account_id", account.ID),
				slog.String("error", err.Error()))
			for i := range chunk {
				scores[chunk[i].ID] = models.ScoreDefault
			}
			continue
		}

		parseChunkScores(text, chunk, scores)
	}

	// Backfill: parsing misses must not leave gaps in the mapping.
	for i := range emails {
		if _, ok := scores[emails[i].ID]; !ok {
			scores[emails[i].ID] = models.ScoreDefault
		}
	}

	return scores
}

// parseChunkScores reads "N: score" lines and assigns the clamped score
// to the message at 1-based position N within the chunk. Non-matching
// lines and out-of-range positions are ignored; duplicate positions keep
// the last value.
func parseChunkScores(text string, chunk []models.ParsedMessage, scores map[string]int) {
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		m := scoreLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		pos, err := strconv.Atoi(m[1])
		if err != nil || pos < 1 || pos > len(chunk) {
			continue
		}
		score, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		scores[chunk[pos-1].ID] = clampScore(score)
	}
}

func clampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

// buildScoringPrompt renders the rubric prompt for one chunk.
func buildScoringPrompt(chunk []models.ParsedMessage, about, guidance string) string {
	var list strings.Builder
	for i := range chunk {
		preview := chunk[i].Snippet
		if len(preview) > previewLength {
			preview = preview[:previewLength]
		}
		fmt.Fprintf(&list, "%d. From: %s\n   Subject: %s\n   Preview: %s\n\n",
			i+1, chunk[i].Headers.From, chunk[i].Headers.Subject, preview)
	}

	return fmt.Sprintf(`You are scoring emails for a daily briefing.

User context: %s

User's guidance:
%s

Score these %d emails 1-10:
- 9-10: Critical/urgent, must see today
- 7-8: Important, should see soon
- 5-6: Relevant but not time-sensitive
- 3-4: Low priority
- 1-2: Not important

Emails:
%s
Return format (one line per email, no explanation):
1: [score]
2: [score]
...`, about, guidance, len(chunk), list.String())
}
