package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client 結構用於與 Gemini API 互動
type Client struct {
	model *genai.GenerativeModel
}

// NewClient 建立一個 Gemini 客戶端實例
func NewClient(apiKey string, modelName string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API Key 不得為空")
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash-latest"
		log.Printf("警告：[Gemini Client] 未提供模型名稱，使用預設值: %s\n", modelName)
	}

	ctx := context.Background()
	genaiSDKClient, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("無法建立 Gemini GenAI SDK 客戶端: %w", err)
	}

	model := genaiSDKClient.GenerativeModel(modelName)
	var genConfig genai.GenerationConfig
	genConfig.ResponseMIMEType = "application/json"
	temperature := float32(0.3)
	genConfig.Temperature = &temperature
	model.GenerationConfig = genConfig
	log.Printf("資訊：[Gemini Client] 分類模型 '%s' 初始化成功。\n", modelName)

	return &Client{model: model}, nil
}

// cleanJSONString 清理從 LLM 收到的可能包含雜質的 JSON 字串
func cleanJSONString(rawResponse string) string {
	cleaned := strings.TrimSpace(rawResponse)

	// 移除可能的 markdown 代碼塊標記
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		if strings.HasSuffix(cleaned, "```") {
			cleaned = strings.TrimSuffix(cleaned, "```")
		}
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		if strings.HasSuffix(cleaned, "```") {
			cleaned = strings.TrimSuffix(cleaned, "```")
		}
	}
	cleaned = strings.TrimSpace(cleaned)

	// 尋找最外層的 JSON 結構
	var potentialJSON string
	firstBrace := strings.Index(cleaned, "{")
	lastBrace := strings.LastIndex(cleaned, "}")
	if firstBrace != -1 && lastBrace != -1 && lastBrace > firstBrace {
		potentialJSON = cleaned[firstBrace : lastBrace+1]
	} else {
		potentialJSON = cleaned
	}
	potentialJSON = strings.TrimSpace(potentialJSON)

	// 處理 UTF-8 編碼問題
	if !utf8.ValidString(potentialJSON) {
		log.Println("警告：[Gemini Client] 回應包含無效的 UTF-8 字元，嘗試替換...")
		potentialJSON = strings.ToValidUTF8(potentialJSON, "")
	}

	// 移除控制字元
	var sb strings.Builder
	for _, r := range potentialJSON {
		if (r >= 0 && r < 9) || (r > 10 && r < 13) || (r > 13 && r < 32) || r == 127 {
			continue
		}
		sb.WriteRune(r)
	}
	finalCleaned := sb.String()
	finalCleaned = strings.TrimPrefix(finalCleaned, "\uFEFF")

	// 解析失敗時不再嘗試修補，交由呼叫端的防禦性解析處理
	var jsonObj interface{}
	if err := json.Unmarshal([]byte(finalCleaned), &jsonObj); err != nil {
		log.Printf("警告：[Gemini Client] 清理後的字串仍不是有效的 JSON: %v", err)
	}
	return finalCleaned
}

// ScoreCandidate 向 Gemini API 發送候選影片內容與提示以進行分類，回傳清理後的文字回應。
// 回傳內容期望是 JSON，但不保證；呼叫端必須防禦性解析。
func (c *Client) ScoreCandidate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("分類的 Prompt 不得為空")
	}
	log.Printf("資訊：[Gemini Client] ScoreCandidate - 使用 Prompt (前100字元): %s...\n", firstNChars(prompt, 100))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API GenerateContent 失敗: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("Gemini API 回應無效或為空 (nil response or no candidates)")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		if candidate.FinishReason != genai.FinishReasonStop && candidate.FinishReason != genai.FinishReasonUnspecified {
			if candidate.SafetyRatings != nil {
				for _, rating := range candidate.SafetyRatings {
					log.Printf("警告：[Gemini Client] 安全評級 - Category: %s, Probability: %s\n", rating.Category, rating.Probability)
				}
			}
			return "", fmt.Errorf("Gemini API 回應內容被阻止，原因: %s", candidate.FinishReason.String())
		}
		return "", fmt.Errorf("Gemini API 回應無效或為空 (no content parts, FinishReason: %s)", candidate.FinishReason.String())
	}
	var responseTextBuilder strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseTextBuilder.WriteString(string(txt))
		} else {
			log.Printf("警告：[Gemini Client] ScoreCandidate - 收到非預期的 Part 類型: %T\n", part)
		}
	}
	raw := responseTextBuilder.String()
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("Gemini API 回傳的內容為空")
	}
	return cleanJSONString(raw), nil
}

// firstNChars 輔助函式
func firstNChars(s string, n int) string {
	if n > 0 {
		runes := []rune(s)
		if len(runes) > n {
			return string(runes[:n])
		}
	}
	return s
}
