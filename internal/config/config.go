package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	DataDir     string
	JWTSecret   string
	CORSOrigins []string

	MenuFile          string
	OrdersFile        string
	CurrentOrdersFile string
	RevenueFile       string
	UsersFile         string
	ReportsDir        string

	// OwnerPasswordHash gates owner-only queue removal. When empty, the
	// plain OwnerPassword is hashed at startup.
	OwnerPasswordHash string
	OwnerPassword     string

	PrinterType    string
	PrinterUSBPath string
	PrinterAddress string
	PrinterWidth   int

	DatabaseURL string
	AMQPURL     string

	RestaurantName    string
	RestaurantPhone   string
	RestaurantAddress string
}

func Load() *Config {
	dataDir := getEnv("DATA_DIR", ".")
	return &Config{
		Port:        getEnv("PORT", "8081"),
		DataDir:     dataDir,
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),

		MenuFile:          getEnv("MENU_FILE", filepath.Join(dataDir, "menu.json")),
		OrdersFile:        getEnv("ORDERS_FILE", filepath.Join(dataDir, "orders.json")),
		CurrentOrdersFile: getEnv("CURRENT_ORDERS_FILE", filepath.Join(dataDir, "current_orders.json")),
		RevenueFile:       getEnv("REVENUE_FILE", filepath.Join(dataDir, "revenue_management.json")),
		UsersFile:         getEnv("USERS_FILE", filepath.Join(dataDir, "users.json")),
		ReportsDir:        getEnv("REPORTS_DIR", filepath.Join(dataDir, "order_reports")),

		OwnerPasswordHash: getEnv("OWNER_PASSWORD_HASH", ""),
		OwnerPassword:     getEnv("OWNER_PASSWORD", "123"),

		PrinterType:    getEnv("PRINTER_TYPE", "file"),
		PrinterUSBPath: getEnv("PRINTER_USB_PATH", ""),
		PrinterAddress: getEnv("PRINTER_ADDRESS", ""),
		PrinterWidth:   getEnvInt("PRINTER_WIDTH", 48),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		AMQPURL:     getEnv("AMQP_URL", ""),

		RestaurantName:    getEnv("RESTAURANT_NAME", "مطعم غنو"),
		RestaurantPhone:   getEnv("RESTAURANT_PHONE", "01092392579"),
		RestaurantAddress: getEnv("RESTAURANT_ADDRESS", "مفارق مشتهر امام مسجد الشهداء"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
