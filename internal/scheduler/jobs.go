package scheduler

import (
	"context"
	"errors"
	"log"

	"ViralTrends-admin/internal/models"
	"ViralTrends-admin/internal/services"
)

// IngestJob 是一個排程任務，用於執行一次完整的影片攝取
type IngestJob struct {
	ingestService *services.IngestService
}

// NewIngestJob 建立一個 IngestJob
func NewIngestJob(is *services.IngestService) *IngestJob {
	return &IngestJob{ingestService: is}
}

// Run 實現 cron.Job 介面 (github.com/robfig/cron/v3)
func (j *IngestJob) Run() {
	log.Println("資訊：執行排程任務 - 影片攝取...")
	summary, err := j.ingestService.Run(context.Background())
	if err != nil {
		if errors.Is(err, models.ErrRunInProgress) {
			log.Println("警告：上一次影片攝取尚未結束，本次排程觸發略過。")
			return
		}
		log.Printf("錯誤：影片攝取排程任務執行失敗: %v", err)
		return
	}
	log.Printf("資訊：影片攝取排程任務執行完成 (run_id=%s, 新影片 %d, 病毒式 %d, 失敗來源 %d)。\n",
		summary.RunID, summary.NewVideos, summary.ViralVideos, len(summary.Errors))
}
