package services

import (
	"context"

	"ViralTrends-admin/internal/models"
)

// Fetcher 介面定義了單一平台的候選影片擷取
type Fetcher interface {
	Fetch(ctx context.Context, source models.Source) ([]models.Candidate, error)
}

// LLMClient 介面定義了文字生成服務的呼叫；回傳內容期望是 JSON，但不保證
type LLMClient interface {
	ScoreCandidate(ctx context.Context, prompt string) (string, error)
}
