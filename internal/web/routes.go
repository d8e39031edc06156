package web

import (
	"log"
	"net/http"

	"ViralTrends-admin/internal/config"
	"ViralTrends-admin/internal/web/handlers"
)

// SetupRouter 組裝全部管理 API 的路由
func SetupRouter(appConfig *config.Config, db handlers.DBStore, runner handlers.IngestRunner, exporter handlers.SheetsExporter) http.Handler {
	mux := http.NewServeMux()

	if runner == nil {
		log.Panicln("SetupRouter：IngestRunner 不得為空")
	}

	// 來源與主題的 CRUD
	sourceHandler := handlers.NewSourceHandler(db)
	mux.Handle("/api/sources", sourceHandler)
	mux.Handle("/api/sources/", sourceHandler)

	topicHandler := handlers.NewTopicHandler(db)
	mux.Handle("/api/topics", topicHandler)
	mux.Handle("/api/topics/", topicHandler)

	// 影片查詢與刪除
	videoHandler := handlers.NewVideoHandler(db)
	mux.Handle("/api/videos", videoHandler)
	mux.Handle("/api/videos/", videoHandler)

	// 手動觸發攝取與狀態查詢
	mux.Handle("/api/ingest-now", handlers.NewTriggerIngestHandler(runner))
	mux.Handle("/api/ingest-now/status", handlers.NewIngestStatusHandler(runner))

	// Google Sheets 匯出
	mux.Handle("/api/export/google-sheets", handlers.NewExportHandler(db, exporter))

	// 設定檢視
	configHandler := handlers.NewConfigHandler(appConfig)
	mux.Handle("/api/config/status", configHandler)
	mux.Handle("/api/config/parser", configHandler)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("警告：未匹配的路由: %s", r.URL.Path)
		http.NotFound(w, r)
	})

	log.Println("資訊：HTTP 路由設定完成。")
	return mux
}
