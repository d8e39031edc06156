package fetchers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"ViralTrends-admin/internal/clients/youtube"
	"ViralTrends-admin/internal/config"
	"ViralTrends-admin/internal/models"

	youtubeapi "google.golang.org/api/youtube/v3"
)

// ShortsFetcher 透過 YouTube Data API v3 擷取頻道最近的 Shorts
type ShortsFetcher struct {
	client *youtube.Client
	cfg    config.IngestionConfig
}

// NewShortsFetcher 建立一個 ShortsFetcher
func NewShortsFetcher(client *youtube.Client, cfg config.IngestionConfig) *ShortsFetcher {
	return &ShortsFetcher{client: client, cfg: cfg}
}

// Fetch 實現 services.Fetcher 介面
func (f *ShortsFetcher) Fetch(ctx context.Context, source models.Source) ([]models.Candidate, error) {
	if f.client == nil {
		return nil, fmt.Errorf("YouTube 客戶端未設定")
	}
	identifier, err := ParseSourceIdentifier(models.PlatformShorts, source.URL)
	if err != nil {
		return nil, err
	}
	candidates, err := withRetry(ctx, models.PlatformShorts, f.cfg.RetryCount, f.cfg.RetryDelay(), func(ctx context.Context) ([]models.Candidate, error) {
		callCtx, cancel := context.WithTimeout(ctx, f.cfg.RequestTimeout())
		defer cancel()
		channelID, err := f.client.ResolveChannelID(callCtx, identifier)
		if err != nil {
			return nil, err
		}
		videos, err := f.client.RecentShorts(callCtx, channelID, int64(f.cfg.MaxResultsPerPlatform))
		if err != nil {
			return nil, err
		}
		var out []models.Candidate
		for _, v := range videos {
			if c, ok := normalizeShort(v); ok {
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

func normalizeShort(v *youtubeapi.Video) (models.Candidate, bool) {
	if v == nil || v.Id == "" || v.Snippet == nil {
		return models.Candidate{}, false
	}
	c := models.Candidate{
		Platform:    models.PlatformShorts,
		ExternalID:  v.Id,
		Title:       truncateRunes(v.Snippet.Title, 500),
		Description: v.Snippet.Description,
		URL:         "https://www.youtube.com/shorts/" + v.Id,
	}
	if v.Snippet.PublishedAt != "" {
		if ts, err := time.Parse(time.RFC3339, v.Snippet.PublishedAt); err == nil {
			c.PublishedAt = ts
		}
	}
	if v.Snippet.Thumbnails != nil && v.Snippet.Thumbnails.High != nil {
		c.ThumbnailURL = v.Snippet.Thumbnails.High.Url
	}
	if v.ContentDetails != nil {
		c.DurationSecs = parseISO8601Duration(v.ContentDetails.Duration)
	}
	return c, true
}

var iso8601DurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISO8601Duration 解析 YouTube API 的影片長度格式（例如 PT1M30S）
func parseISO8601Duration(s string) int {
	m := iso8601DurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(zeroIfEmpty(m[1]))
	min, _ := strconv.Atoi(zeroIfEmpty(m[2]))
	sec, _ := strconv.Atoi(zeroIfEmpty(m[3]))
	return h*3600 + min*60 + sec
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
