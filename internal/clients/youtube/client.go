package youtube

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"
)

// Client 結構用於與 YouTube Data API v3 互動
type Client struct {
	svc *youtubeapi.Service
}

// NewClient 建立一個 YouTube 客戶端實例
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API Key 不得為空")
	}
	svc, err := youtubeapi.NewService(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("無法建立 YouTube API 服務: %w", err)
	}
	log.Println("資訊：[YouTube Client] 初始化成功。")
	return &Client{svc: svc}, nil
}

// ResolveChannelID 將頻道識別字（UC... ID 或 @handle/名稱）解析為頻道 ID
func (c *Client) ResolveChannelID(ctx context.Context, identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if strings.HasPrefix(identifier, "UC") && len(identifier) >= 24 {
		return identifier, nil
	}
	resp, err := c.svc.Search.List([]string{"snippet"}).
		Q(strings.TrimPrefix(identifier, "@")).
		Type("channel").
		MaxResults(1).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("搜尋頻道 '%s' 失敗: %w", identifier, err)
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("找不到頻道 '%s'", identifier)
	}
	return resp.Items[0].Snippet.ChannelId, nil
}

// RecentShorts 依日期新到舊取得頻道最近的 Shorts，回傳完整影片資料（snippet + statistics + contentDetails）
func (c *Client) RecentShorts(ctx context.Context, channelID string, maxResults int64) ([]*youtubeapi.Video, error) {
	if maxResults > 25 {
		maxResults = 25
	}
	search, err := c.svc.Search.List([]string{"snippet"}).
		ChannelId(channelID).
		Type("video").
		VideoDuration("short").
		Order("date").
		MaxResults(maxResults).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("搜尋頻道 %s 的 Shorts 失敗: %w", channelID, err)
	}

	var ids []string
	for _, item := range search.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	videosResp, err := c.svc.Videos.List([]string{"snippet", "statistics", "contentDetails"}).
		Id(ids...).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("查詢影片詳細資料失敗 (channel: %s): %w", channelID, err)
	}

	byID := make(map[string]*youtubeapi.Video, len(videosResp.Items))
	for _, v := range videosResp.Items {
		byID[v.Id] = v
	}
	// 依搜尋結果的順序（日期新到舊）回傳
	var out []*youtubeapi.Video
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}
