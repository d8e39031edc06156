package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ViralTrends-admin/internal/clients/apify"
	"ViralTrends-admin/internal/config"
	"ViralTrends-admin/internal/models"
)

// TikTokFetcher 透過 Apify actor 擷取 TikTok 個人檔案最近的影片
type TikTokFetcher struct {
	client *apify.Client
	actor  string
	cfg    config.IngestionConfig
}

// NewTikTokFetcher 建立一個 TikTokFetcher
func NewTikTokFetcher(client *apify.Client, actor string, cfg config.IngestionConfig) *TikTokFetcher {
	return &TikTokFetcher{client: client, actor: actor, cfg: cfg}
}

// Fetch 實現 services.Fetcher 介面
func (f *TikTokFetcher) Fetch(ctx context.Context, source models.Source) ([]models.Candidate, error) {
	if f.client == nil {
		return nil, fmt.Errorf("Apify 客戶端未設定")
	}
	username, err := ParseSourceIdentifier(models.PlatformTikTok, source.URL)
	if err != nil {
		return nil, err
	}
	username = strings.TrimPrefix(username, "@")

	runInput := map[string]interface{}{
		"profiles":              []string{username},
		"resultsPerPage":        f.cfg.MaxResultsPerPlatform,
		"profileScrapeSections": []string{"videos"},
	}
	candidates, err := withRetry(ctx, models.PlatformTikTok, f.cfg.RetryCount, f.cfg.RetryDelay(), func(ctx context.Context) ([]models.Candidate, error) {
		callCtx, cancel := context.WithTimeout(ctx, f.cfg.RequestTimeout())
		defer cancel()
		items, err := f.client.RunActor(callCtx, f.actor, runInput)
		if err != nil {
			return nil, err
		}
		var out []models.Candidate
		for _, item := range items {
			if c, ok := normalizeTikTokItem(item); ok {
				out = append(out, c)
			}
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return capCandidates(candidates, f.cfg.MaxResultsPerPlatform), nil
}

// normalizeTikTokItem 轉換 Apify TikTok item。
// 同時支援 clockworks（id, text, webVideoUrl, videoMeta）與 apidojo（videoId, title, video）的輸出格式。
func normalizeTikTokItem(raw json.RawMessage) (models.Candidate, bool) {
	d := decodeItem(raw)
	if d == nil {
		return models.Candidate{}, false
	}
	videoID := stringField(d, "id", "videoId")
	if videoID == "" {
		if n := numberField(d, "id", "videoId"); n != 0 {
			videoID = fmt.Sprintf("%d", n)
		}
	}
	if videoID == "" {
		return models.Candidate{}, false
	}
	text := stringField(d, "text", "title", "desc")
	c := models.Candidate{
		Platform:    models.PlatformTikTok,
		ExternalID:  videoID,
		Title:       truncateRunes(text, 500),
		Description: text,
		URL:         stringField(d, "webVideoUrl", "postPage", "url"),
	}
	if c.URL == "" {
		c.URL = "https://www.tiktok.com/@_/video/" + videoID
	}
	if iso := stringField(d, "createTimeISO"); iso != "" {
		c.PublishedAt = parseTimestamp(iso)
	} else if ts := numberField(d, "createTime", "uploadedAt"); ts != 0 {
		c.PublishedAt = parseTimestamp(float64(ts))
	}
	if meta := mapField(d, "videoMeta", "video"); meta != nil {
		duration := numberField(meta, "duration")
		if duration > 1000 {
			duration = duration / 1000 // 毫秒格式
		}
		c.DurationSecs = duration
		c.ThumbnailURL = stringField(meta, "coverUrl", "cover", "thumbnail")
	}
	return c, true
}
