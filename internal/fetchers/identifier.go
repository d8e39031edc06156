package fetchers

import (
	"fmt"
	"regexp"
	"strings"

	"ViralTrends-admin/internal/models"
)

var (
	tiktokProfileRe  = regexp.MustCompile(`(?i)tiktok\.com/@([^/?#]+)`)
	instagramRe      = regexp.MustCompile(`(?i)instagram\.com/([^/?#]+)`)
	youtubeChannelRe = regexp.MustCompile(`(?i)youtube\.com/channel/(UC[\w-]+)`)
	youtubeHandleRe  = regexp.MustCompile(`(?i)youtube\.com/@([^/?#]+)`)
	youtubeCustomRe  = regexp.MustCompile(`(?i)youtube\.com/c/([^/?#]+)`)
)

// ParseSourceIdentifier 從來源的個人檔案 URL 取出各平台的頻道/帳號識別字
func ParseSourceIdentifier(platform models.Platform, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("來源 URL 不得為空")
	}
	switch platform {
	case models.PlatformTikTok:
		if m := tiktokProfileRe.FindStringSubmatch(rawURL); m != nil {
			return m[1], nil
		}
		return lastPathSegment(rawURL)
	case models.PlatformReels:
		if m := instagramRe.FindStringSubmatch(rawURL); m != nil {
			return m[1], nil
		}
		return lastPathSegment(rawURL)
	case models.PlatformShorts:
		if m := youtubeChannelRe.FindStringSubmatch(rawURL); m != nil {
			return m[1], nil
		}
		if m := youtubeHandleRe.FindStringSubmatch(rawURL); m != nil {
			return "@" + m[1], nil
		}
		if m := youtubeCustomRe.FindStringSubmatch(rawURL); m != nil {
			return m[1], nil
		}
		if strings.HasPrefix(rawURL, "UC") && len(rawURL) >= 24 {
			return rawURL, nil
		}
		return rawURL, nil
	}
	return rawURL, nil
}

func lastPathSegment(rawURL string) (string, error) {
	trimmed := strings.Trim(rawURL, "/")
	parts := strings.Split(trimmed, "/")
	segment := strings.TrimSpace(parts[len(parts)-1])
	if segment == "" {
		return "", fmt.Errorf("無法從 URL '%s' 解析識別字", rawURL)
	}
	return segment, nil
}
