package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrDuplicateVideo 表示 (source_id, external_id) 已存在。
// 併發執行搶過去重檢查時，由儲存層的唯一性約束擋下第二筆插入，
// 呼叫端視為良性重複而非錯誤。
var ErrDuplicateVideo = errors.New("影片已存在 (source_id, external_id 重複)")

// Platform 定義支援的影片平台（封閉列舉）
type Platform string

const (
	PlatformShorts Platform = "shorts" // YouTube Shorts
	PlatformTikTok Platform = "tiktok"
	PlatformReels  Platform = "reels" // Instagram Reels
)

// ValidPlatform 檢查平台值是否屬於封閉列舉
func ValidPlatform(p Platform) bool {
	switch p {
	case PlatformShorts, PlatformTikTok, PlatformReels:
		return true
	}
	return false
}

// SourceStatus 定義來源狀態
type SourceStatus string

const (
	SourceActive   SourceStatus = "active"
	SourceInactive SourceStatus = "inactive"
)

// Source 對應 sources 資料表：一個被監控的頻道/帳號
type Source struct {
	ID        int64        `json:"id"`
	Platform  Platform     `json:"platform"`
	URL       string       `json:"url"`
	Status    SourceStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

// Topic 對應 topics 資料表：分類時使用的關鍵字與說明
type Topic struct {
	ID          int64          `json:"id"`
	Keyword     string         `json:"keyword"`
	Description JsonNullString `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Video 對應 videos 資料表
// (source_id, external_id) 具唯一性約束，為去重的依據
type Video struct {
	ID            int64          `json:"id"`
	SourceID      int64          `json:"source_id"`
	ExternalID    string         `json:"external_id"`
	Title         string         `json:"title"`
	Description   JsonNullString `json:"description"`
	AISummary     JsonNullString `json:"ai_summary"`
	ViralityScore int            `json:"virality_score"`
	IsViral       bool           `json:"is_viral"`
	StoragePath   JsonNullString `json:"storage_path"`
	QualityReason JsonNullString `json:"quality_reason"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Candidate 是擷取器回傳、尚未入庫的影片
type Candidate struct {
	Platform     Platform
	ExternalID   string // 平台內的影片 ID（不含平台前綴）
	Title        string
	Description  string
	URL          string
	ThumbnailURL string
	PublishedAt  time.Time
	DurationSecs int
}

// QualifiedExternalID 回傳帶平台前綴的外部 ID，例如 "tiktok:7312345"
func (c Candidate) QualifiedExternalID() string {
	return fmt.Sprintf("%s:%s", c.Platform, c.ExternalID)
}
