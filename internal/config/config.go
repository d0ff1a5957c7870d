package config

import "os"

// Config carries all process-level settings read from the environment.
// cmd/main.go loads a .env file first, so local runs only need that file.
type Config struct {
	Port        string
	DatabaseDSN string
	RedisAddr   string

	// BotToken authenticates the messaging transport.
	BotToken string
	// AdminID is the transport account that bypasses maintenance mode.
	AdminID string
	// OperatorID is the only account served while development mode is on.
	OperatorID string

	// JWTSecret signs dashboard session tokens.
	JWTSecret string
	// AdminPasswordHash is the bcrypt hash checked by the dashboard login.
	AdminPasswordHash string

	// RoomIDPrefix prepends every generated room id.
	RoomIDPrefix string

	// TempDir holds broadcast images and sticker conversion scratch files.
	TempDir string

	Env string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// Load reads the configuration from the environment, with development
// defaults for everything except the bot token.
func Load() Config {
	return Config{
		Port:              getenv("APP_PORT", "3000"),
		DatabaseDSN:       getenv("DATABASE_DSN", "host=localhost user=anonychat password=anonychat dbname=anonychat port=5432 sslmode=disable"),
		RedisAddr:         getenv("REDIS_ADDR", "localhost:6379"),
		BotToken:          os.Getenv("BOT_TOKEN"),
		AdminID:           getenv("ADMIN_NUMBER", ""),
		OperatorID:        getenv("DEV_NUMBER", ""),
		JWTSecret:         getenv("JWT_SECRET", "dev-secret-change-me"),
		AdminPasswordHash: getenv("ADMIN_PASSWORD_HASH", ""),
		RoomIDPrefix:      getenv("ROOM_ID_PREFIX", "wafa"),
		TempDir:           getenv("TEMP_DIR", "./temp"),
		Env:               getenv("APP_ENV", "dev"),
	}
}
