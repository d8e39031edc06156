package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrCreditsExhausted 表示 Apify 帳戶額度已用盡，對該來源為可恢復的失敗，不重試。
var ErrCreditsExhausted = errors.New("Apify 額度已用盡")

var creditKeywords = []string{"credit", "quota", "usage limit", "exceeded", "plan limit", "insufficient"}

func isCreditsError(msg string) bool {
	lower := strings.ToLower(msg)
	for _, kw := range creditKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Client 透過 Apify run-sync API 執行 actor 並取回 dataset items
type Client struct {
	baseURL     string
	token       string
	timeoutSecs int
	httpClient  *http.Client
}

// NewClient 建立一個 Apify 客戶端實例
func NewClient(baseURL string, token string, timeoutSecs int) *Client {
	if baseURL == "" {
		baseURL = "https://api.apify.com"
	}
	if timeoutSecs <= 0 {
		timeoutSecs = 60
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		timeoutSecs: timeoutSecs,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSecs+10) * time.Second,
		},
	}
}

// RunActor 同步執行 actor 並回傳 dataset items。
// 額度用盡回傳 ErrCreditsExhausted；其餘失敗由呼叫端決定是否重試。
func (c *Client) RunActor(ctx context.Context, actorID string, runInput map[string]interface{}) ([]json.RawMessage, error) {
	if c.token == "" {
		log.Println("警告：[Apify Client] Token 未設定，跳過執行。")
		return nil, nil
	}
	if actorID == "" {
		return nil, fmt.Errorf("actor ID 不得為空")
	}

	body, err := json.Marshal(runInput)
	if err != nil {
		return nil, fmt.Errorf("序列化 actor 輸入失敗: %w", err)
	}

	// actor 路徑中的 "/" 需以 "~" 表示
	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items", c.baseURL, strings.ReplaceAll(actorID, "/", "~"))
	query := url.Values{}
	query.Set("token", c.token)
	query.Set("timeout", strconv.Itoa(c.timeoutSecs))
	query.Set("limit", "500")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+query.Encode(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("建立 Apify 請求失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Printf("資訊：[Apify Client] 開始執行 actor=%s\n", actorID)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("執行 actor %s 失敗: %w", actorID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		msg := strings.TrimSpace(string(payload))
		if resp.StatusCode == http.StatusPaymentRequired || isCreditsError(msg) {
			return nil, fmt.Errorf("actor %s: %s: %w", actorID, msg, ErrCreditsExhausted)
		}
		return nil, fmt.Errorf("Apify 回應錯誤 %s (actor=%s): %s", resp.Status, actorID, msg)
	}

	var items []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("解析 Apify dataset 回應失敗 (actor=%s): %w", actorID, err)
	}
	log.Printf("資訊：[Apify Client] actor=%s 執行完成，取得 %d 筆資料。\n", actorID, len(items))
	return items, nil
}
