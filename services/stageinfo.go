package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"context"

	"conveyancing-server/models"
	"conveyancing-server/storage"
)

// StageInfoService serves per-(stage, role) plain-English explanations of
// conveyancing stages. Postgres is the durable cache, Redis sits in front;
// the OpenAI collaborator only runs on a full miss.
type StageInfoService struct {
	client *http.Client
}

func NewStageInfoService() *StageInfoService {
	return &StageInfoService{client: &http.Client{Timeout: 20 * time.Second}}
}

func stageInfoCacheKey(stage, role string) string {
	return fmt.Sprintf("stageinfo:%s:%s", role, stage)
}

// Explain returns the cached or freshly generated explanation for the stage
// from the given role's perspective. role must be buyer or seller.
func (s *StageInfoService) Explain(ctx context.Context, stage, role string) (string, error) {
	key := stageInfoCacheKey(stage, role)
	if cached, err := storage.Redis.Get(ctx, key).Result(); err == nil && cached != "" {
		return cached, nil
	}

	var info models.StageInfo
	if err := storage.DB.Where("stage = ? AND role = ?", stage, role).First(&info).Error; err == nil {
		storage.Redis.Set(ctx, key, info.Explanation, 24*time.Hour)
		return info.Explanation, nil
	}

	explanation, err := s.generate(stage, role)
	if err != nil {
		return "", err
	}

	storage.DB.Create(&models.StageInfo{Stage: stage, Role: role, Explanation: explanation})
	storage.Redis.Set(ctx, key, explanation, 24*time.Hour)
	return explanation, nil
}

// SeedPlaceholder inserts a placeholder explanation for a new stage unless
// one already exists, so every (stage, role) pair has a row from creation.
func (s *StageInfoService) SeedPlaceholder(stage string) {
	for _, role := range []string{"buyer", "seller"} {
		var existing models.StageInfo
		if err := storage.DB.Where("stage = ? AND role = ?", stage, role).First(&existing).Error; err != nil {
			storage.DB.Create(&models.StageInfo{
				Stage:       stage,
				Role:        role,
				Explanation: fmt.Sprintf("Explain the %s", stage),
			})
		}
	}
}

func (s *StageInfoService) generate(stage, role string) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}

	prompt := fmt.Sprintf("Explain what happens specifically during the '%s' stage of a UK house purchase, "+
		"from the perspective of a %s. Focus ONLY on the immediate actions and responsibilities of this "+
		"specific stage. Keep the explanation under 100 words and make it clear what the %s needs to do "+
		"right now, with a rough estimate of how long this stage typically takes.", stage, role, role)

	reqBody, _ := json.Marshal(chatCompletionRequest{
		Model: "gpt-3.5-turbo",
		Messages: []chatMessage{
			{Role: "system", Content: "You are a helpful assistant explaining UK property purchase stages. Your explanations should be focused, specific, and only cover the current stage."},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   300,
		Temperature: 0,
	})

	req, err := http.NewRequest("POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	res, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode != 200 {
		log.Printf("stage info: generation failed with status %d: %s", res.StatusCode, string(body))
		return "", fmt.Errorf("stage info generation failed with status %d", res.StatusCode)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
