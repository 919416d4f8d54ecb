// Package namecheck validates customer name fields. Cheap static rules catch
// the obvious garbage; whatever survives them is judged by an LLM. Without an
// API key the checker degrades to the static rules alone.
package namecheck

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
)

type Config struct {
	APIKey string `envconfig:"API_KEY"`
	Model  string `default:"gpt-3.5-turbo"`
}

// Field names the name part under validation; the wording feeds the prompt.
type Field string

const (
	FieldFirstName  Field = "first name"
	FieldLastName   Field = "last name"
	FieldPatronymic Field = "patronymic"
)

// Reason labels, kept to a fixed taxonomy so report lines stay uniform.
const (
	ReasonOK             = "OK"
	ReasonEmpty          = "empty or missing"
	ReasonTooShort       = "too short"
	ReasonTooLong        = "too long"
	ReasonDigitsOnly     = "contains digits"
	ReasonNoLetters      = "no letters"
	ReasonContainsSpaces = "contains spaces"
	ReasonSkipped        = "check skipped"
)

type Verdict struct {
	Valid  bool
	Reason string
}

type Checker struct {
	client  openai.Client
	model   string
	enabled bool
}

func New(cfg Config) *Checker {
	if cfg.APIKey == "" {
		return &Checker{}
	}
	return &Checker{
		client:  openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:   cfg.Model,
		enabled: true,
	}
}

const systemPrompt = "You are an assistant verifying the correctness of Russian first names, " +
	"last names, and patronymics. Pay close attention to typos and grammatical errors in " +
	"Russian words, and recognize and accept transliterated Russian names."

// Check validates one name part. lastNameEmpty loosens the first-name prompt:
// when no last name was captured, the single field may legitimately hold
// either.
func (c *Checker) Check(ctx context.Context, text string, field Field, lastNameEmpty bool) Verdict {
	cleaned := strings.TrimSpace(text)

	switch {
	case cleaned == "":
		return Verdict{Valid: false, Reason: ReasonEmpty}
	// Operators mark junk leads with a literal "spam" placeholder; that is
	// a sanctioned value, not a bad name.
	case strings.EqualFold(cleaned, "спам"):
		return Verdict{Valid: true, Reason: ReasonOK}
	case len([]rune(cleaned)) < 2:
		return Verdict{Valid: false, Reason: ReasonTooShort}
	case len([]rune(cleaned)) > 70:
		return Verdict{Valid: false, Reason: ReasonTooLong}
	case isDigits(cleaned):
		return Verdict{Valid: false, Reason: ReasonDigitsOnly}
	case !hasLetter(cleaned):
		return Verdict{Valid: false, Reason: ReasonNoLetters}
	case field == FieldFirstName && strings.Contains(cleaned, " "):
		return Verdict{Valid: false, Reason: ReasonContainsSpaces}
	}

	if !c.enabled {
		return Verdict{Valid: true, Reason: ReasonSkipped}
	}
	return c.checkWithModel(ctx, cleaned, field, lastNameEmpty)
}

func (c *Checker) checkWithModel(ctx context.Context, text string, field Field, lastNameEmpty bool) Verdict {
	var extra string
	if field == FieldFirstName {
		if lastNameEmpty {
			extra = " It can be a first name or a last name if no last name is provided."
		} else {
			extra = " It must be a first name, not a last name."
		}
	}

	userPrompt := "Evaluate '" + text + "' as a " + string(field) + "." + extra +
		" Identify typos, grammar issues, meaningless characters, URLs, emails, nicknames. " +
		"It must resemble a real Russian name, last name, or patronymic (or their transliteration). " +
		"Do not accept initials ('VA', 'DM', 'A.V.'), abbreviations, or generic words ('client', 'test'). " +
		"Respond 'OK' or briefly describe the single most relevant issue (max 5 words) " +
		"using one of these phrases: 'not a real name', 'not a real last name', " +
		"'not a real patronymic', 'typo or grammatical error', 'nickname', " +
		"'meaningless characters', 'url', 'email', 'initials/abbreviation', " +
		"'generic word', 'test value'."

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		MaxTokens:   param.NewOpt(int64(20)),
		Temperature: param.NewOpt(0.1),
	})
	if err != nil {
		// A classifier outage should not fail the report or flag valid
		// names; the record passes unchecked.
		slog.WarnContext(ctx, "name check skipped", "field", field, "error", err)
		return Verdict{Valid: true, Reason: ReasonSkipped}
	}
	if len(resp.Choices) == 0 {
		return Verdict{Valid: true, Reason: ReasonSkipped}
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if strings.EqualFold(strings.TrimRight(answer, "."), ReasonOK) {
		return Verdict{Valid: true, Reason: ReasonOK}
	}
	return Verdict{Valid: false, Reason: answer}
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
