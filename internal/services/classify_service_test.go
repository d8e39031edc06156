package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"ViralTrends-admin/internal/config"
	"ViralTrends-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClassifier(t *testing.T, llm LLMClient, threshold int) *ClassifyService {
	t.Helper()
	cfg := config.IngestionConfig{RequestTimeoutSecs: 5, ViralScoreThreshold: threshold}
	svc, err := NewClassifyService(llm, cfg)
	require.NoError(t, err)
	return svc
}

func TestNewClassifyServiceRejectsInvalidThreshold(t *testing.T) {
	_, err := NewClassifyService(&fakeLLM{}, config.IngestionConfig{ViralScoreThreshold: 0})
	assert.Error(t, err)
	_, err = NewClassifyService(&fakeLLM{}, config.IngestionConfig{ViralScoreThreshold: 11})
	assert.Error(t, err)
}

func TestClassifyParsesWellFormedResponse(t *testing.T) {
	svc := newClassifier(t, &fakeLLM{resp: `{"is_viral": true, "score": 8, "summary": "舞蹈挑戰"}`}, 7)
	result := svc.Classify(context.Background(), models.Candidate{ExternalID: "x"}, nil)
	assert.False(t, result.Failed)
	assert.Equal(t, 8, result.Score)
	assert.True(t, result.IsViral)
	assert.Equal(t, "舞蹈挑戰", result.Summary)
}

func TestClassifyAcceptsMarkdownWrappedJSON(t *testing.T) {
	raw := "Here is my analysis:\n```json\n{\"is_viral\": false, \"score\": 6, \"summary\": \"尚可\"}\n```\n"
	svc := newClassifier(t, &fakeLLM{resp: raw}, 7)
	result := svc.Classify(context.Background(), models.Candidate{ExternalID: "x"}, nil)
	assert.False(t, result.Failed)
	assert.Equal(t, 6, result.Score)
	assert.False(t, result.IsViral)
}

func TestClassifyAcceptsStringScore(t *testing.T) {
	svc := newClassifier(t, &fakeLLM{resp: `{"is_viral": true, "score": "9", "summary": "爆紅"}`}, 7)
	result := svc.Classify(context.Background(), models.Candidate{ExternalID: "x"}, nil)
	assert.False(t, result.Failed)
	assert.Equal(t, 9, result.Score)
	assert.True(t, result.IsViral)
}

func TestClassifyClampsOutOfRangeScore(t *testing.T) {
	svc := newClassifier(t, &fakeLLM{resp: `{"score": 42, "summary": "超標"}`}, 7)
	result := svc.Classify(context.Background(), models.Candidate{ExternalID: "x"}, nil)
	assert.Equal(t, 10, result.Score)

	svc = newClassifier(t, &fakeLLM{resp: `{"score": -3, "summary": "負數"}`}, 7)
	result = svc.Classify(context.Background(), models.Candidate{ExternalID: "x"}, nil)
	assert.Equal(t, 1, result.Score)
}

func TestClassifyFallsBackToRegexScore(t *testing.T) {
	svc := newClassifier(t, &fakeLLM{resp: `The video deserves score: 7 because it is trending.`}, 7)
	result := svc.Classify(context.Background(), models.Candidate{ExternalID: "x"}, nil)
	assert.False(t, result.Failed)
	assert.Equal(t, 7, result.Score)
	assert.True(t, result.IsViral)
}

func TestClassifyNeutralFallbackOnGarbage(t *testing.T) {
	svc := newClassifier(t, &fakeLLM{resp: "完全無法解析的回應"}, 7)
	result := svc.Classify(context.Background(), models.Candidate{ExternalID: "x"}, nil)
	assert.True(t, result.Failed)
	assert.Equal(t, 5, result.Score)
	assert.False(t, result.IsViral)
	assert.NotEmpty(t, result.Reason)
}

func TestClassifyNeutralFallbackOnLLMError(t *testing.T) {
	svc := newClassifier(t, &fakeLLM{err: fmt.Errorf("連線逾時")}, 7)
	result := svc.Classify(context.Background(), models.Candidate{ExternalID: "x"}, nil)
	assert.True(t, result.Failed)
	assert.Equal(t, 5, result.Score)
	assert.False(t, result.IsViral)
	assert.Contains(t, result.Reason, "連線逾時")
}

func TestClassifyNeutralFallbackWithoutLLM(t *testing.T) {
	svc := newClassifier(t, nil, 7)
	result := svc.Classify(context.Background(), models.Candidate{ExternalID: "x"}, nil)
	assert.True(t, result.Failed)
	assert.Equal(t, 5, result.Score)
	assert.False(t, result.IsViral)
}

func TestClassifyViralThresholdBoundary(t *testing.T) {
	svc := newClassifier(t, &fakeLLM{resp: `{"score": 7, "summary": ""}`}, 7)
	result := svc.Classify(context.Background(), models.Candidate{ExternalID: "x"}, nil)
	assert.True(t, result.IsViral, "等於門檻的評分應視為病毒式")

	svc = newClassifier(t, &fakeLLM{resp: `{"score": 6, "summary": ""}`}, 7)
	result = svc.Classify(context.Background(), models.Candidate{ExternalID: "x"}, nil)
	assert.False(t, result.IsViral)
}

func TestClassifyIgnoresModelViralFlag(t *testing.T) {
	// 病毒式與否只由評分對門檻決定，模型自己的 is_viral 不採信
	svc := newClassifier(t, &fakeLLM{resp: `{"is_viral": true, "score": 3, "summary": "模型過度樂觀"}`}, 7)
	result := svc.Classify(context.Background(), models.Candidate{ExternalID: "x"}, nil)
	assert.Equal(t, 3, result.Score)
	assert.False(t, result.IsViral)
}

func TestBuildClassifyPromptIncludesTopicsAndCandidate(t *testing.T) {
	topics := []models.Topic{
		{Keyword: "料理", Description: models.NullString("快手家常菜")},
		{Keyword: "健身"},
	}
	candidate := models.Candidate{Title: "三分鐘炒飯", Description: "超快料理教學"}
	prompt := buildClassifyPrompt(candidate, topics)
	assert.Contains(t, prompt, "料理: 快手家常菜")
	assert.Contains(t, prompt, "健身")
	assert.Contains(t, prompt, "三分鐘炒飯")
	assert.Contains(t, prompt, `{"is_viral": true/false, "score": 1-10, "summary": "brief summary"}`)
}

func TestBuildClassifyPromptTruncatesLongDescription(t *testing.T) {
	candidate := models.Candidate{Title: "t", Description: strings.Repeat("長", 3000)}
	prompt := buildClassifyPrompt(candidate, nil)
	assert.Less(t, len([]rune(prompt)), 1500)
}
