// Package fetchers 實作各平台的候選影片擷取器。
// 每個擷取器只對單一來源負責：逾時、重試、額度錯誤都侷限在該來源，
// 不會中斷同一次執行中其他來源的擷取。
package fetchers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"ViralTrends-admin/internal/clients/apify"
	"ViralTrends-admin/internal/models"
)

// withRetry 以遞增延遲重試 fn；額度用盡的錯誤不重試。
func withRetry(ctx context.Context, platform models.Platform, retryCount int, baseDelay time.Duration, fn func(context.Context) ([]models.Candidate, error)) ([]models.Candidate, error) {
	if retryCount < 1 {
		retryCount = 1
	}
	var lastErr error
	for attempt := 1; attempt <= retryCount; attempt++ {
		candidates, err := fn(ctx)
		if err == nil {
			return candidates, nil
		}
		lastErr = err
		if errors.Is(err, apify.ErrCreditsExhausted) {
			break
		}
		if attempt < retryCount {
			delay := time.Duration(attempt) * baseDelay
			log.Printf("警告：[%s] 第 %d 次擷取嘗試失敗: %v。%s 後重試。\n", platform, attempt, err, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

func capCandidates(candidates []models.Candidate, max int) []models.Candidate {
	if max > 0 && len(candidates) > max {
		return candidates[:max]
	}
	return candidates
}

// --- 對第三方 API 回應的寬容欄位讀取 ---

func decodeItem(raw json.RawMessage) map[string]interface{} {
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func stringField(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func numberField(m map[string]interface{}, keys ...string) int {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			switch n := v.(type) {
			case float64:
				return int(n)
			case string:
				var f float64
				if err := json.Unmarshal([]byte(n), &f); err == nil {
					return int(f)
				}
			}
		}
	}
	return 0
}

func mapField(m map[string]interface{}, keys ...string) map[string]interface{} {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if sub, ok := v.(map[string]interface{}); ok {
				return sub
			}
		}
	}
	return nil
}

// parseTimestamp 解析 Apify 回傳的時間（ISO 字串或 unix 秒數）
func parseTimestamp(v interface{}) time.Time {
	switch t := v.(type) {
	case float64:
		return time.Unix(int64(t), 0).UTC()
	case string:
		if t == "" {
			return time.Time{}
		}
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}
