package services

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// ModerationService produces the rephrased candidate for a buyer-seller
// message via the OpenAI chat completions API. The engine treats it as an
// external collaborator: on any failure it falls back to the original text
// with an unavailability tag so sends never block on the collaborator.
type ModerationService struct {
	client *http.Client
}

func NewModerationService() *ModerationService {
	return &ModerationService{client: &http.Client{Timeout: 20 * time.Second}}
}

const rephraseSystemPrompt = "You are a professional real estate communication assistant. " +
	"Your task is to rephrase messages to be more professional and appropriate for property transactions."

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Rephrase returns the filtered candidate for the given message text.
func (ms *ModerationService) Rephrase(text string) string {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("moderation: OPENAI_API_KEY not set")
		return "[AI moderation unavailable] " + text
	}

	prompt := "Please rephrase the following message to be more professional and appropriate " +
		"for a property transaction context. Keep the main points but make it more formal and " +
		"business-like:\n\nOriginal message: " + text + "\n\nRephrased message:"

	reqBody, _ := json.Marshal(chatCompletionRequest{
		Model: "gpt-3.5-turbo",
		Messages: []chatMessage{
			{Role: "system", Content: rephraseSystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   500,
		Temperature: 0.7,
	})

	req, err := http.NewRequest("POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		log.Printf("moderation: failed to create request: %v", err)
		return "[AI moderation unavailable] " + text
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	res, err := ms.client.Do(req)
	if err != nil {
		log.Printf("moderation: rephrasing request failed: %v", err)
		return "[AI moderation unavailable] " + text
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil || res.StatusCode != 200 {
		log.Printf("moderation: rephrasing failed with status %d", res.StatusCode)
		return "[AI moderation unavailable] " + text
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil || len(completion.Choices) == 0 {
		log.Printf("moderation: failed to parse completion: %v", err)
		return "[AI moderation unavailable] " + text
	}
	if completion.Error.Message != "" {
		log.Printf("moderation: %s", completion.Error.Message)
		return "[AI moderation unavailable] " + text
	}

	rephrased := strings.TrimSpace(completion.Choices[0].Message.Content)
	// The model sometimes echoes a "Rephrased message:" prefix; keep only the
	// text after the last colon.
	if i := strings.LastIndex(rephrased, ":"); i != -1 {
		rephrased = strings.TrimSpace(rephrased[i+1:])
	}
	if rephrased == "" {
		return "[AI moderation unavailable] " + text
	}
	return rephrased
}
