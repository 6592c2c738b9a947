package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	LogFile      string
	MaxUploadMB  int

	CatalogCSV   string // catalog snapshot path
	DBPath       string // sqlite database
	TemplateXLSX string // ERP order sheet template
	OutputDir    string // generated sheets and reports
	Threshold    int    // default fuzzy match threshold
}

func Load() Config {
	port, _ := strconv.Atoi(getenv("PORT", "8083"))
	mb, _ := strconv.Atoi(getenv("MAX_UPLOAD_MB", "64"))
	threshold, _ := strconv.Atoi(getenv("MATCH_THRESHOLD", "80"))
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	return Config{
		Host:         getenv("HOST", "127.0.0.1"),
		Port:         port,
		AllowOrigins: origins,
		LogLevel:     getenv("LOG_LEVEL", "info"),
		LogFile:      getenv("LOG_FILE", "logs/resolver-service.log"),
		MaxUploadMB:  mb,
		CatalogCSV:   getenv("CATALOG_CSV", "products.csv"),
		DBPath:       getenv("DB_PATH", "order_processing.db"),
		TemplateXLSX: getenv("TEMPLATE_XLSX", "order_template.xlsx"),
		OutputDir:    getenv("OUTPUT_DIR", "output"),
		Threshold:    threshold,
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
