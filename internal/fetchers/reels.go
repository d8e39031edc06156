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

// ReelsFetcher 透過 Apify actor 擷取 Instagram 帳號最近的 Reels
type ReelsFetcher struct {
	client *apify.Client
	actor  string
	cfg    config.IngestionConfig
}

// NewReelsFetcher 建立一個 ReelsFetcher
func NewReelsFetcher(client *apify.Client, actor string, cfg config.IngestionConfig) *ReelsFetcher {
	return &ReelsFetcher{client: client, actor: actor, cfg: cfg}
}

// Fetch 實現 services.Fetcher 介面
func (f *ReelsFetcher) Fetch(ctx context.Context, source models.Source) ([]models.Candidate, error) {
	if f.client == nil {
		return nil, fmt.Errorf("Apify 客戶端未設定")
	}
	username, err := ParseSourceIdentifier(models.PlatformReels, source.URL)
	if err != nil {
		return nil, err
	}
	username = strings.TrimPrefix(username, "@")

	runInput := map[string]interface{}{
		"directUrls":   []string{"https://www.instagram.com/" + username + "/"},
		"resultsType":  "posts",
		"resultsLimit": f.cfg.MaxResultsPerPlatform,
	}
	candidates, err := withRetry(ctx, models.PlatformReels, f.cfg.RetryCount, f.cfg.RetryDelay(), func(ctx context.Context) ([]models.Candidate, error) {
		callCtx, cancel := context.WithTimeout(ctx, f.cfg.RequestTimeout())
		defer cancel()
		items, err := f.client.RunActor(callCtx, f.actor, runInput)
		if err != nil {
			return nil, err
		}
		var out []models.Candidate
		for _, item := range items {
			if c, ok := normalizeReelItem(item); ok {
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

// normalizeReelItem 轉換 Apify Instagram post/reel item。
// instagram-scraper 同時回傳圖片與影片，只保留影片類型。
func normalizeReelItem(raw json.RawMessage) (models.Candidate, bool) {
	d := decodeItem(raw)
	if d == nil {
		return models.Candidate{}, false
	}
	itemType := strings.ToLower(strings.TrimSpace(stringField(d, "type")))
	if itemType != "" && itemType != "video" && itemType != "reel" && itemType != "clips" {
		return models.Candidate{}, false
	}
	shortCode := stringField(d, "shortCode")
	videoID := shortCode
	if videoID == "" {
		videoID = stringField(d, "id")
	}
	if videoID == "" {
		return models.Candidate{}, false
	}
	caption := stringField(d, "caption")
	url := stringField(d, "url")
	if url == "" && shortCode != "" {
		url = fmt.Sprintf("https://www.instagram.com/reel/%s/", shortCode)
	}
	c := models.Candidate{
		Platform:     models.PlatformReels,
		ExternalID:   videoID,
		Title:        truncateRunes(caption, 500),
		Description:  caption,
		URL:          url,
		ThumbnailURL: stringField(d, "displayUrl"),
		DurationSecs: numberField(d, "videoDuration", "duration"),
	}
	if ts, ok := d["timestamp"]; ok {
		c.PublishedAt = parseTimestamp(ts)
	} else if ts, ok := d["takenAt"]; ok {
		c.PublishedAt = parseTimestamp(ts)
	}
	if c.URL == "" {
		c.URL = stringField(d, "videoUrl")
	}
	return c, true
}
