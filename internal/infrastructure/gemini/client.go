package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
)

// Client wraps the Gemini model used for revelation prompt suggestions
// and connection insights. All output is opaque text to the core.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewClient(apiKey string) (*Client, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-1.5-pro")
	model.SetTemperature(0.7)

	return &Client{
		client: client,
		model:  model,
	}, nil
}

func (c *Client) Close() {
	c.client.Close()
}

// fallbackPrompts is used when the API is unavailable, so the daily
// flow never blocks on the model.
var fallbackPrompts = map[domain.RevelationType]string{
	domain.RevelationPersonalValue:        "Share a value you would never compromise on, and the moment you learned it mattered.",
	domain.RevelationMeaningfulExperience: "Describe an experience that changed how you see the world.",
	domain.RevelationHopeDream:            "What is a dream you have not said out loud in a long time?",
	domain.RevelationHumor:                "Tell the story of the hardest you have ever laughed.",
	domain.RevelationChallengeOvercome:    "Share a challenge you overcame and what it taught you about yourself.",
	domain.RevelationIdealConnection:      "What does a deeply connected relationship look like to you, day to day?",
}

// GenerateRevelationPrompt suggests a writing prompt for the given
// revelation type and day. Falls back to a canned prompt on API errors.
func (c *Client) GenerateRevelationPrompt(ctx context.Context, revType domain.RevelationType, dayNumber int) (string, error) {
	prompt := fmt.Sprintf(`
		You write prompts for a dating app where matched pairs exchange one
		written revelation per day before ever seeing photos.
		Revelation category: %s
		Day of the exchange: %d (pacing: deeper topics on later days)

		Task: Write one warm, specific prompt (a single question or
		invitation, max 2 sentences) the sender can answer in free text.
		Output: just the prompt text.
	`, revType, dayNumber)

	text, err := c.generate(ctx, prompt)
	if err != nil || text == "" {
		if fallback, ok := fallbackPrompts[revType]; ok {
			return fallback, nil
		}
		return "", err
	}
	return text, nil
}

// GenerateConnectionInsight writes a short note on what made two
// profiles resonate, shown once photos are revealed.
func (c *Client) GenerateConnectionInsight(ctx context.Context, interests1, interests2 []string, sharedValues []string) (string, error) {
	prompt := fmt.Sprintf(`
		Two people matched on a slow-reveal dating app and have just
		unlocked each other's photos after a week of written exchanges.
		Person 1 interests: %v
		Person 2 interests: %v
		Values they share: %v

		Task: Write a short, engaging note (1-2 sentences) on what makes
		this pairing promising. Focus on shared ground and complementarity.
		Output: just the note text.
	`, interests1, interests2, sharedValues)

	return c.generate(ctx, prompt)
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
