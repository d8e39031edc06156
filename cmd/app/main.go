package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ViralTrends-admin/internal/clients/apify"
	"ViralTrends-admin/internal/clients/gemini"
	"ViralTrends-admin/internal/clients/sheets"
	"ViralTrends-admin/internal/clients/youtube"
	"ViralTrends-admin/internal/config"
	"ViralTrends-admin/internal/fetchers"
	"ViralTrends-admin/internal/models"
	"ViralTrends-admin/internal/scheduler"
	"ViralTrends-admin/internal/services"
	"ViralTrends-admin/internal/storage/mysql"
	"ViralTrends-admin/internal/web"
	"ViralTrends-admin/internal/web/handlers"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load("./configs", "config")
	if err != nil {
		log.Fatalf("錯誤：無法載入設定: %v", err)
	}
	log.Println("資訊：應用程式設定載入成功。")

	// 資料庫遷移
	migrationPath := "file://scripts/migrate/mysql"
	dbDSNForMigrate := fmt.Sprintf("mysql://%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&multiStatements=true",
		cfg.Database.User, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	log.Printf("資訊：準備執行資料庫遷移，來源: %s, DSN 使用資料庫: %s", migrationPath, cfg.Database.DBName)
	m, err := migrate.New(migrationPath, dbDSNForMigrate)
	if err != nil {
		log.Fatalf("錯誤：建立遷移實例失敗: %v", err)
	}
	currentVersion, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		log.Fatalf("錯誤：獲取資料庫遷移版本失敗: %v", err)
	}
	if dirty {
		log.Fatalf("錯誤：資料庫處於 dirty 狀態 (版本 %d)，遷移失敗。", currentVersion)
	}
	log.Printf("資訊：目前資料庫版本: %d。開始應用遷移...", currentVersion)
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		log.Fatalf("錯誤：執行資料庫遷移 (m.Up) 失敗: %v", err)
	} else if err == migrate.ErrNoChange {
		log.Println("資訊：資料庫結構已是最新，無需遷移。")
	} else {
		newVersion, _, _ := m.Version()
		log.Printf("資訊：資料庫遷移成功完成，版本更新至: %d。", newVersion)
	}

	var dbStore handlers.DBStore
	realDBStore, err := mysql.NewMySQLStore(cfg.Database)
	if err != nil {
		log.Fatalf("錯誤：初始化 MySQL 資料庫連線失敗: %v", err)
	}
	dbStore = realDBStore
	defer realDBStore.Close()

	// LLM 分類客戶端；金鑰缺失時以 nil 運作，分類回退為中性評分
	var llm services.LLMClient
	if cfg.GeminiClient.APIKey != "" {
		geminiClient, err := gemini.NewClient(cfg.GeminiClient.APIKey, cfg.GeminiClient.Model)
		if err != nil {
			log.Fatalf("錯誤：初始化 Gemini 客戶端失敗: %v", err)
		}
		llm = geminiClient
	} else {
		log.Println("警告：Gemini API Key 未設定，分類將全部採用中性評分。")
	}

	// 各平台擷取器；未設定金鑰的平台不註冊，攝取時記錄為來源錯誤
	fetcherMap := make(map[models.Platform]services.Fetcher)
	if cfg.YouTubeClient.APIKey != "" {
		ytClient, err := youtube.NewClient(cfg.YouTubeClient.APIKey)
		if err != nil {
			log.Fatalf("錯誤：初始化 YouTube 客戶端失敗: %v", err)
		}
		fetcherMap[models.PlatformShorts] = fetchers.NewShortsFetcher(ytClient, cfg.Ingestion)
	}
	if cfg.ApifyClient.Token != "" {
		apifyClient := apify.NewClient(cfg.ApifyClient.BaseURL, cfg.ApifyClient.Token, cfg.ApifyClient.TimeoutSecs)
		fetcherMap[models.PlatformTikTok] = fetchers.NewTikTokFetcher(apifyClient, cfg.ApifyClient.TikTokActor, cfg.Ingestion)
		fetcherMap[models.PlatformReels] = fetchers.NewReelsFetcher(apifyClient, cfg.ApifyClient.ReelsActor, cfg.Ingestion)
	}

	classifySvc, err := services.NewClassifyService(llm, cfg.Ingestion)
	if err != nil {
		log.Fatalf("錯誤：初始化分類服務失敗: %v", err)
	}
	ingestSvc, err := services.NewIngestService(cfg, dbStore, fetcherMap, classifySvc)
	if err != nil {
		log.Fatalf("錯誤：初始化攝取服務失敗: %v", err)
	}

	// Google Sheets 匯出器；未設定時匯出端點回傳 503
	var exporter handlers.SheetsExporter
	if cfg.Sheets.SpreadsheetID != "" && cfg.Sheets.CredentialsFile != "" {
		sheetsExporter, err := sheets.NewExporter(cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID)
		if err != nil {
			log.Fatalf("錯誤：初始化 Google Sheets 匯出器失敗: %v", err)
		}
		exporter = sheetsExporter
	} else {
		log.Println("警告：Google Sheets 匯出未設定。")
	}

	if cfg.Scheduler.Enabled {
		log.Println("資訊：排程器已在設定檔中啟用，正在初始化...")
		appScheduler := scheduler.NewScheduler(ingestSvc, cfg.Scheduler.IngestCronSpec)
		appScheduler.Start()
		log.Println("資訊：排程器已啟動。")
		defer appScheduler.Stop()
	} else {
		log.Println("資訊：排程器已在設定檔中禁用。")
	}

	router := web.SetupRouter(cfg, dbStore, ingestSvc, exporter)
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		log.Printf("資訊：HTTP 伺服器正在監聽 %s\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("錯誤：HTTP 伺服器監聽失敗: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("資訊：收到關閉訊號，正在關閉應用程式...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("錯誤：HTTP 伺服器優雅關閉失敗: %v", err)
	}
	log.Println("資訊：HTTP 伺服器已關閉。")
	log.Println("資訊：應用程式已成功關閉。")
}
