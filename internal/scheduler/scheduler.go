package scheduler

import (
	"log"
	"time"

	"ViralTrends-admin/internal/services"

	"github.com/robfig/cron/v3"
)

// Scheduler 包裝 cron 排程器與攝取任務
type Scheduler struct {
	cron      *cron.Cron
	ingestJob *IngestJob
}

// NewScheduler 依設定的 Cron 表達式註冊攝取任務
func NewScheduler(is *services.IngestService, ingestCronSpec string) *Scheduler {
	c := cron.New(cron.WithSeconds())

	ingestJob := NewIngestJob(is)

	if ingestCronSpec != "" {
		_, err := c.AddJob(ingestCronSpec, ingestJob)
		if err != nil {
			log.Fatalf("錯誤：無法新增影片攝取任務到排程器 (spec: %s): %v", ingestCronSpec, err)
		}
		log.Printf("資訊：影片攝取任務已註冊，排程：%s\n", ingestCronSpec)
	} else {
		log.Println("警告：未提供影片攝取任務的 Cron 表達式，該任務將不會被排程。")
	}

	return &Scheduler{
		cron:      c,
		ingestJob: ingestJob,
	}
}

// Start 非阻塞啟動排程器
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("資訊：排程器已非阻塞啟動 (如果任務已註冊)。")
}

// Stop 優雅停止排程器，最多等待 10 秒讓運行中任務完成
func (s *Scheduler) Stop() {
	log.Println("資訊：正在停止排程器...")
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		log.Println("資訊：排程器已優雅停止，所有運行中任務已完成。")
	case <-time.After(10 * time.Second):
		log.Println("警告：排程器停止超時，可能仍有任務在執行。")
	}
}
