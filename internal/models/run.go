package models

import (
	"errors"
	"time"
)

// ErrRunInProgress 表示已有一次攝取正在執行，呼叫端應稍後再試
var ErrRunInProgress = errors.New("攝取任務已在進行中")

// SourceError 記錄單一來源在一次攝取執行中的失敗
type SourceError struct {
	SourceID int64    `json:"source_id"`
	Platform Platform `json:"platform"`
	Message  string   `json:"message"`
}

// RunSummary 彙總一次攝取執行的結果。
// 單一來源或單一分類的失敗只會記錄在 Errors 中，不會讓整次執行失敗。
type RunSummary struct {
	RunID             string        `json:"run_id"`
	StartedAt         time.Time     `json:"started_at"`
	FinishedAt        time.Time     `json:"finished_at"`
	SourcesProcessed  int           `json:"sources_processed"`
	CandidatesFetched int           `json:"candidates_fetched"`
	NewVideos         int           `json:"new_videos"`
	ViralVideos       int           `json:"viral_videos"`
	SkippedDuplicates int           `json:"skipped_duplicates"`
	Errors            []SourceError `json:"errors,omitempty"`
	Message           string        `json:"message,omitempty"`
}
