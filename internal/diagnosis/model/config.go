package model

// ================ Config ================

type HybridConfig struct {
	MinConfidence float64 `envconfig:"HYBRID_MIN_CONFIDENCE" default:"0.8"`
}

type CatalogConfig struct {
	// Source picks the catalog implementation: "file" or "redis".
	Source   string `envconfig:"CATALOG_SOURCE" default:"file"`
	Path     string `envconfig:"CATALOG_PATH" default:"response_pack.json"`
	RedisKey string `envconfig:"CATALOG_REDIS_KEY" default:"aegis:response_pack"`
}

type SessionConfig struct {
	Platform     string `envconfig:"SESSION_PLATFORM" default:"go-client"`
	UserID       string `envconfig:"SESSION_USER_ID" default:"demo-user"`
	AuthProtocol string `envconfig:"SESSION_AUTH_PROTOCOL" default:"totp"`
}
