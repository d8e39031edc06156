package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"ViralTrends-admin/internal/config"
	"ViralTrends-admin/internal/models"
	"ViralTrends-admin/internal/web/handlers"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrRunInProgress 表示已有一次攝取正在執行。
// 對呼叫端而言這是「忙碌中」的狀態，不是失敗；第二個請求立即返回，不排隊也不並行。
var ErrRunInProgress = models.ErrRunInProgress

// IngestService 協調一次攝取執行：
// 載入啟用中的來源與主題 → 並行擷取 → 以 (source_id, external_id) 去重 →
// 分類新候選影片 → 入庫，並把各來源的失敗彙總到執行摘要中。
type IngestService struct {
	cfg        *config.Config
	db         handlers.DBStore
	fetchers   map[models.Platform]Fetcher
	classifier *ClassifyService
	running    atomic.Bool
}

// NewIngestService 建立 IngestService 實例
func NewIngestService(cfg *config.Config, db handlers.DBStore, fetchers map[models.Platform]Fetcher, classifier *ClassifyService) (*IngestService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("設定不得為空")
	}
	if db == nil {
		return nil, fmt.Errorf("DBStore 不得為空")
	}
	if len(fetchers) == 0 {
		return nil, fmt.Errorf("至少需要一個平台擷取器")
	}
	if classifier == nil {
		return nil, fmt.Errorf("ClassifyService 不得為空")
	}
	log.Println("資訊：IngestService 初始化完成。")
	return &IngestService{cfg: cfg, db: db, fetchers: fetchers, classifier: classifier}, nil
}

// IsRunning 回傳目前是否有攝取正在執行，不會阻塞
func (s *IngestService) IsRunning() bool {
	return s.running.Load()
}

// Run 執行一次攝取。同時間最多只有一次執行：
// 搶不到執行權的呼叫立即收到 ErrRunInProgress。
// 單一來源或單一分類的失敗只記錄在摘要中，整次執行仍會完成。
func (s *IngestService) Run(ctx context.Context) (*models.RunSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	summary := &models.RunSummary{RunID: uuid.NewString(), StartedAt: time.Now()}
	log.Printf("資訊：[Ingest] 開始攝取執行 (run: %s)...\n", summary.RunID)

	topics, err := s.db.ListTopics()
	if err != nil {
		return nil, fmt.Errorf("載入主題失敗: %w", err)
	}
	sources, err := s.db.ListActiveSources()
	if err != nil {
		return nil, fmt.Errorf("載入啟用中來源失敗: %w", err)
	}
	if len(sources) == 0 {
		summary.Message = "沒有啟用中的來源，此次執行沒有任何處理"
		summary.FinishedAt = time.Now()
		log.Printf("資訊：[Ingest] %s (run: %s)\n", summary.Message, summary.RunID)
		return summary, nil
	}
	if len(topics) == 0 {
		// 主題缺席時分類仍會進行，只是沒有主題脈絡，通常得到中性評分
		summary.Message = "沒有設定主題，分類以空主題集合進行"
		log.Printf("警告：[Ingest] %s (run: %s)\n", summary.Message, summary.RunID)
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	limit := s.cfg.Ingestion.MaxConcurrentFetches
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	for _, src := range sources {
		g.Go(func() error {
			s.processSource(ctx, src, topics, summary, &mu)
			return nil
		})
	}
	_ = g.Wait()

	summary.FinishedAt = time.Now()
	log.Printf("資訊：[Ingest] 執行完成 (run: %s)：來源 %d、候選 %d、新增 %d、病毒式 %d、重複略過 %d、錯誤 %d。\n",
		summary.RunID, summary.SourcesProcessed, summary.CandidatesFetched,
		summary.NewVideos, summary.ViralVideos, summary.SkippedDuplicates, len(summary.Errors))
	return summary, nil
}

// processSource 處理單一來源；所有失敗都侷限在這個來源
func (s *IngestService) processSource(ctx context.Context, src models.Source, topics []models.Topic, summary *models.RunSummary, mu *sync.Mutex) {
	recordError := func(err error) {
		log.Printf("錯誤：[Ingest] 來源 %d (%s) 處理失敗: %v", src.ID, src.Platform, err)
		mu.Lock()
		summary.Errors = append(summary.Errors, models.SourceError{
			SourceID: src.ID,
			Platform: src.Platform,
			Message:  err.Error(),
		})
		mu.Unlock()
	}

	fetcher, ok := s.fetchers[src.Platform]
	if !ok {
		recordError(fmt.Errorf("不支援的平台: %s", src.Platform))
		return
	}
	candidates, err := fetcher.Fetch(ctx, src)
	if err != nil {
		recordError(fmt.Errorf("擷取失敗: %w", err))
		return
	}

	mu.Lock()
	summary.SourcesProcessed++
	summary.CandidatesFetched += len(candidates)
	mu.Unlock()

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			recordError(fmt.Errorf("執行被中斷: %w", ctx.Err()))
			return
		}
		externalID := candidate.QualifiedExternalID()
		exists, err := s.db.VideoExists(src.ID, externalID)
		if err != nil {
			recordError(fmt.Errorf("去重檢查失敗 (%s): %w", externalID, err))
			continue
		}
		if exists {
			mu.Lock()
			summary.SkippedDuplicates++
			mu.Unlock()
			continue
		}

		classification := s.classifier.Classify(ctx, candidate, topics)
		video := buildVideo(src, candidate, classification)
		if _, err := s.db.InsertVideo(video); err != nil {
			if errors.Is(err, models.ErrDuplicateVideo) {
				// 與另一次執行的插入競態，由唯一性約束擋下，視為已存在
				mu.Lock()
				summary.SkippedDuplicates++
				mu.Unlock()
				continue
			}
			recordError(fmt.Errorf("儲存影片失敗 (%s): %w", externalID, err))
			continue
		}
		mu.Lock()
		summary.NewVideos++
		if classification.IsViral {
			summary.ViralVideos++
		}
		mu.Unlock()
	}
}

// buildVideo 把候選影片與分類結果組成要入庫的 Video
func buildVideo(src models.Source, candidate models.Candidate, classification Classification) *models.Video {
	title := candidate.Title
	if title == "" {
		title = candidate.Description
	}
	if runes := []rune(title); len(runes) > 200 {
		title = string(runes[:200])
	}
	if title == "" {
		title = "Video"
	}
	description := candidate.Description
	if runes := []rune(description); len(runes) > 5000 {
		description = string(runes[:5000])
	}
	quality := classification.Reason
	return &models.Video{
		SourceID:      src.ID,
		ExternalID:    candidate.QualifiedExternalID(),
		Title:         title,
		Description:   models.NullString(description),
		AISummary:     models.NullString(classification.Summary),
		ViralityScore: classification.Score,
		IsViral:       classification.IsViral,
		StoragePath:   models.NullString(candidate.URL),
		QualityReason: models.NullString(quality),
	}
}
