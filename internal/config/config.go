package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Embedding EmbeddingConfig
	LLM       LLMConfig
	Ingest    IngestConfig
	Retrieval RetrievalConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	UploadDir          string
}

type DatabaseConfig struct {
	Connection string
}

type EmbeddingConfig struct {
	BaseURL       string
	Model         string
	Dim           int
	QueryPrefix   string
	PassagePrefix string
	TimeoutSec    int
}

type LLMConfig struct {
	BaseURL           string
	Model             string
	TimeoutSec        int
	ClassifyTimeoutMs int
}

type IngestConfig struct {
	ChunkSizeTokens   int
	ChunkOverlapTok   int
	MaxChunksEmb      int // 0 = unlimited
	FastMode          bool
	RenderPages       bool
	RenderDPI         int
	EnableTableIndex  bool
	MaxTableRowsEmb   int
	MaxCaptionPages   int
	ParserPython      string
	ParserScript      string
	ParserTimeoutSec  int
	Hwp2TxtExe        string
	PdfToPpmExe       string
	InsertConcurrency int
}

type RetrievalConfig struct {
	RetrieveMin float64
	UseAsCtxMin float64
	MinTop3Avg  float64
	TextK       int
	TableK      int
	ImageK      int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Embedding: EmbeddingConfig{
			BaseURL:       getEnv("EMB_URL", "http://localhost:8001"),
			Model:         getEnv("EMB_MODEL", "bge-m3"),
			Dim:           getEnvAsInt("EMB_DIM", 1024),
			QueryPrefix:   getEnv("EMB_QUERY_PREFIX", "Represent this sentence for searching relevant passages: "),
			PassagePrefix: getEnv("EMB_PASSAGE_PREFIX", "Represent this document for retrieval: "),
			TimeoutSec:    getEnvAsInt("EMB_TIMEOUT_SEC", 60),
		},
		LLM: LLMConfig{
			BaseURL:           getEnv("LLM_URL", "http://localhost:8002"),
			Model:             getEnv("LLM_MODEL", "llama31-8b-instruct"),
			TimeoutSec:        getEnvAsInt("LLM_TIMEOUT_SEC", 60),
			ClassifyTimeoutMs: getEnvAsInt("LLM_CLASSIFY_TIMEOUT_MS", 5000),
		},
		Ingest: IngestConfig{
			ChunkSizeTokens:   getEnvAsInt("CHUNK_SIZE_TOKENS", 800),
			ChunkOverlapTok:   getEnvAsInt("CHUNK_OVERLAP_TOKENS", 120),
			MaxChunksEmb:      getEnvAsInt("MAX_CHUNKS_EMB", 0),
			FastMode:          getEnvAsBool("FAST_MODE", false),
			RenderPages:       getEnvAsBool("RENDER_PAGES", false),
			RenderDPI:         getEnvAsInt("RENDER_DPI", 150),
			EnableTableIndex:  getEnvAsBool("ENABLE_TABLE_INDEX", true),
			MaxTableRowsEmb:   getEnvAsInt("MAX_TABLE_ROWS_EMB", 40),
			MaxCaptionPages:   getEnvAsInt("MAX_CAPTION_PAGES", 20),
			ParserPython:      getEnv("PARSER_PYTHON", "python3"),
			ParserScript:      getEnv("PARSER_SCRIPT", "scripts/extract_doc.py"),
			ParserTimeoutSec:  getEnvAsInt("PARSER_TIMEOUT_SEC", 180),
			Hwp2TxtExe:        getEnv("HWP2TXT_EXE", ""),
			PdfToPpmExe:       getEnv("PDFTOPPM_EXE", "pdftoppm"),
			InsertConcurrency: getEnvAsInt("INSERT_CONCURRENCY", 8),
		},
		Retrieval: RetrievalConfig{
			RetrieveMin: getEnvAsFloat("RETRIEVE_MIN", 0.35),
			UseAsCtxMin: getEnvAsFloat("USE_AS_CTX_MIN", 0.60),
			MinTop3Avg:  getEnvAsFloat("MIN_TOP3_AVG", 0.55),
			TextK:       getEnvAsInt("TEXT_K", 5),
			TableK:      getEnvAsInt("TABLE_K", 10),
			ImageK:      getEnvAsInt("IMAGE_K", 4),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
