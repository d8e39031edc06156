package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SchedulerConfig 控制背景攝取任務的排程
type SchedulerConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	IngestCronSpec string `mapstructure:"ingestCronSpec"`
}

// IngestionConfig 是攝取/分類流程的可調參數（原行為可由環境調整，不寫死在程式碼中）
type IngestionConfig struct {
	MaxResultsPerPlatform int `mapstructure:"maxResultsPerPlatform"`
	RequestTimeoutSecs    int `mapstructure:"requestTimeoutSecs"`
	RetryCount            int `mapstructure:"retryCount"`
	RetryDelaySecs        int `mapstructure:"retryDelaySecs"`
	MaxConcurrentFetches  int `mapstructure:"maxConcurrentFetches"`
	ViralScoreThreshold   int `mapstructure:"viralScoreThreshold"`
}

// RequestTimeout 回傳單次網路呼叫的逾時
func (c IngestionConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// RetryDelay 回傳重試的基礎延遲
func (c IngestionConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySecs) * time.Second
}

// Config 結構
type Config struct {
	AppName       string              `mapstructure:"appName"`
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	GeminiClient  GeminiClientConfig  `mapstructure:"geminiClient"`
	YouTubeClient YouTubeClientConfig `mapstructure:"youTubeClient"`
	ApifyClient   ApifyClientConfig   `mapstructure:"apifyClient"`
	Sheets        SheetsConfig        `mapstructure:"sheets"`
	Ingestion     IngestionConfig     `mapstructure:"ingestion"`
	Scheduler     SchedulerConfig     `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbName"`
}
type GeminiClientConfig struct {
	APIKey string `mapstructure:"apiKey"`
	Model  string `mapstructure:"model"`
}
type YouTubeClientConfig struct {
	APIKey string `mapstructure:"apiKey"`
}
type ApifyClientConfig struct {
	Token       string `mapstructure:"token"`
	BaseURL     string `mapstructure:"baseURL"`
	TikTokActor string `mapstructure:"tikTokActor"`
	ReelsActor  string `mapstructure:"reelsActor"`
	TimeoutSecs int    `mapstructure:"timeoutSecs"`
}
type SheetsConfig struct {
	SpreadsheetID   string `mapstructure:"spreadsheetID"`
	CredentialsFile string `mapstructure:"credentialsFile"`
}

// Load 讀取設定檔並套用預設值
func Load(configPath string, configName string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(configPath)
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 設定預設值
	v.SetDefault("appName", "ViralTrends-admin")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("geminiClient.model", "gemini-1.5-flash-latest")
	v.SetDefault("apifyClient.baseURL", "https://api.apify.com")
	v.SetDefault("apifyClient.tikTokActor", "apidojo/tiktok-scraper-api")
	v.SetDefault("apifyClient.reelsActor", "apify/instagram-reel-scraper")
	v.SetDefault("apifyClient.timeoutSecs", 60)
	v.SetDefault("ingestion.maxResultsPerPlatform", 20)
	v.SetDefault("ingestion.requestTimeoutSecs", 30)
	v.SetDefault("ingestion.retryCount", 3)
	v.SetDefault("ingestion.retryDelaySecs", 2)
	v.SetDefault("ingestion.maxConcurrentFetches", 3)
	v.SetDefault("ingestion.viralScoreThreshold", 7)
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.ingestCronSpec", "0 0 * * * *")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("警告：找不到設定檔，將使用預設值和環境變數。")
		} else {
			return nil, fmt.Errorf("讀取設定檔時發生錯誤: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("無法解析設定檔到結構: %w", err)
	}

	if cfg.GeminiClient.APIKey == "" {
		fmt.Println("警告：Gemini API Key 未設定！分類將回退為中性評分。")
	}
	if cfg.YouTubeClient.APIKey == "" {
		fmt.Println("警告：YouTube API Key 未設定！shorts 來源將無法擷取。")
	}
	if cfg.ApifyClient.Token == "" {
		fmt.Println("警告：Apify Token 未設定！tiktok/reels 來源將無法擷取。")
	}

	fmt.Println("資訊：設定載入成功。")
	return &cfg, nil
}
