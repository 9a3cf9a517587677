package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// CoachService wraps the generative-text API behind the AI-coach features.
// Every call is best-effort: one request, a timeout, and a static fallback
// on any failure. Failures never reach the user as errors.
type CoachService struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// Fallback content served whenever the generative-text call fails or the
// service is not configured.
const (
	FallbackQuote = "Success is the sum of small efforts, repeated day in and day out. Keep going!"
	FallbackReply = "Sorry, I can't answer right now. Please try again later."
)

func NewCoachService(apiKey, baseURL, model string) *CoachService {
	return &CoachService{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether an API key is present.
func (s *CoachService) Configured() bool {
	return s.apiKey != ""
}

// HabitSuggestion is one AI-proposed habit from a goal breakdown.
type HabitSuggestion struct {
	Title     string `json:"title"`
	Category  string `json:"category"`
	Frequency string `json:"frequency"`
}

// MotivationalQuote returns a short coaching line tailored to the user's
// current stats.
func (s *CoachService) MotivationalQuote(ctx context.Context, userContext string) string {
	prompt := fmt.Sprintf(
		"You are a professional psychologist and coach. User context: %s.\n"+
			"Write one short, strong, inspiring piece of advice or quote. "+
			"Be warm, not formal. Two sentences maximum.",
		userContext,
	)

	text, err := s.generate(ctx, prompt, "")
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			log.Printf("coach quote error: %v", err)
		}
		return FallbackQuote
	}
	return strings.TrimSpace(text)
}

// HabitPlan asks the model to break a goal into three concrete habits.
// Returns nil when the call or the JSON parse fails; the handler presents
// that as an empty suggestion list, never an error.
func (s *CoachService) HabitPlan(ctx context.Context, goal string) []HabitSuggestion {
	prompt := fmt.Sprintf(
		"User goal: %q.\n"+
			"Produce a JSON array of exactly 3 concrete, measurable habits that work toward this goal. "+
			"Return ONLY the JSON array, no prose.\n"+
			"Format: [{\"title\": \"...\", \"category\": \"Work\" | \"Study\" | \"Fitness\" | \"Personal\", "+
			"\"frequency\": \"Daily\" | \"Weekly\"}]",
		goal,
	)

	text, err := s.generate(ctx, prompt, "application/json")
	if err != nil {
		log.Printf("coach plan error: %v", err)
		return nil
	}

	// Models sometimes wrap JSON in a markdown code fence.
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	var plan []HabitSuggestion
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		log.Printf("coach plan parse error: %v", err)
		return nil
	}
	return plan
}

// Chat answers a free-form coaching question with recent history as context.
func (s *CoachService) Chat(ctx context.Context, message string, history []string) string {
	prompt := fmt.Sprintf(
		"You are the smart assistant of a habit-tracking platform.\n"+
			"Conversation history:\n%s\n\n"+
			"User question: %s\n\n"+
			"Give short, specific, useful advice on habit building, time management, and motivation.",
		strings.Join(history, "\n"),
		message,
	)

	text, err := s.generate(ctx, prompt, "")
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			log.Printf("coach chat error: %v", err)
		}
		return FallbackReply
	}
	return strings.TrimSpace(text)
}

// generateContent request/response shapes for the generative-text API.
type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// generate performs a single generateContent call and extracts the first
// candidate's text.
func (s *CoachService) generate(ctx context.Context, prompt, mimeType string) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("generative-text API key not configured")
	}

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	if mimeType != "" {
		reqBody.GenerationConfig = &generationConfig{ResponseMimeType: mimeType}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", s.baseURL, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Never log the response body; it may echo the prompt.
		return "", fmt.Errorf("generative-text API returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generative-text API returned no candidates")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
