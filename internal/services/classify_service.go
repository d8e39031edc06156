package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"ViralTrends-admin/internal/config"
	"ViralTrends-admin/internal/models"
)

// defaultNeutralScore 是分類失敗時使用的中性評分；資料不會因為評分失敗而被丟棄
const defaultNeutralScore = 5

// Classification 是對單一候選影片的分類結果
type Classification struct {
	Score   int
	IsViral bool
	Summary string
	Failed  bool   // 分類呼叫或解析失敗，使用了回退值
	Reason  string // Failed 為 true 時記錄原因
}

// ClassifyService 負責對候選影片進行病毒式評分
type ClassifyService struct {
	llm       LLMClient
	cfg       config.IngestionConfig
	threshold int
}

// NewClassifyService 建立 ClassifyService 實例
func NewClassifyService(llm LLMClient, cfg config.IngestionConfig) (*ClassifyService, error) {
	threshold := cfg.ViralScoreThreshold
	if threshold < 1 || threshold > 10 {
		return nil, fmt.Errorf("無效的病毒式評分門檻: %d (必須在 1 到 10 之間)", threshold)
	}
	log.Printf("資訊：ClassifyService 初始化完成 (門檻: %d)。\n", threshold)
	return &ClassifyService{llm: llm, cfg: cfg, threshold: threshold}, nil
}

// Classify 對一個候選影片評分。永不失敗：任何錯誤都回退為中性評分，
// 並在結果中記錄分類失敗的原因。
func (s *ClassifyService) Classify(ctx context.Context, candidate models.Candidate, topics []models.Topic) Classification {
	// 分類失敗的候選影片仍會入庫：中性評分、非病毒式，rationale 記錄失敗原因
	fallback := Classification{
		Score:   defaultNeutralScore,
		IsViral: false,
		Failed:  true,
	}
	if s.llm == nil {
		fallback.Reason = "分類失敗：LLM 客戶端未設定"
		return fallback
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout())
	defer cancel()
	raw, err := s.llm.ScoreCandidate(callCtx, buildClassifyPrompt(candidate, topics))
	if err != nil {
		log.Printf("錯誤：[Classify] 影片 '%s' 分類呼叫失敗: %v", candidate.ExternalID, err)
		fallback.Reason = fmt.Sprintf("分類失敗：%v", err)
		return fallback
	}

	score, summary, ok := parseClassification(raw)
	if !ok {
		log.Printf("警告：[Classify] 影片 '%s' 的回應無法解析，使用中性評分。", candidate.ExternalID)
		fallback.Reason = "分類失敗：回應無法解析"
		return fallback
	}
	return Classification{
		Score:   score,
		IsViral: score >= s.threshold,
		Summary: summary,
	}
}

// buildClassifyPrompt 組合分類提示；主題集合可為空
func buildClassifyPrompt(candidate models.Candidate, topics []models.Topic) string {
	var topicParts []string
	for _, t := range topics {
		if t.Keyword == "" {
			continue
		}
		topicParts = append(topicParts, fmt.Sprintf("%s: %s", t.Keyword, t.Description.String))
	}
	description := candidate.Description
	if runes := []rune(description); len(runes) > 1000 {
		description = string(runes[:1000])
	}
	return fmt.Sprintf(`Analyze if this video fits the topics: %s

Video:
Title: %s
Description: %s

Return ONLY valid JSON in this exact format, no other text:
{"is_viral": true/false, "score": 1-10, "summary": "brief summary"}
`, strings.Join(topicParts, ", "), candidate.Title, description)
}

var (
	jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)
	scoreRe      = regexp.MustCompile(`(?i)"?score"?\s*[:=]\s*"?(\d{1,2})`)
)

type classifyResponse struct {
	IsViral bool            `json:"is_viral"`
	Score   json.RawMessage `json:"score"`
	Summary string          `json:"summary"`
}

// parseClassification 防禦性地從自由格式文字中解析評分與摘要。
// 任何解析失敗回傳 ok=false，由呼叫端套用回退值，絕不讓解析錯誤向外傳播。
func parseClassification(raw string) (score int, summary string, ok bool) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return 0, "", false
	}
	// LLM 可能在 JSON 外包裹多餘文字或 markdown 代碼塊
	if m := jsonObjectRe.FindString(content); m != "" {
		content = m
	}

	var resp classifyResponse
	if err := json.Unmarshal([]byte(content), &resp); err == nil {
		if s, sok := coerceScore(resp.Score); sok {
			summary = resp.Summary
			if runes := []rune(summary); len(runes) > 2000 {
				summary = string(runes[:2000])
			}
			return s, summary, true
		}
	}

	// JSON 解析失敗時，退而求其次從文字中擷取數字評分
	if m := scoreRe.FindStringSubmatch(raw); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return clampScore(n), "", true
		}
	}
	return 0, "", false
}

// coerceScore 接受數字或數字字串格式的評分
func coerceScore(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return clampScore(int(n)), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, convErr := strconv.Atoi(strings.TrimSpace(s)); convErr == nil {
			return clampScore(v), true
		}
	}
	return 0, false
}

func clampScore(n int) int {
	if n < 1 {
		return 1
	}
	if n > 10 {
		return 10
	}
	return n
}
