package output

import "time"

// ConfigPort reads settings from the environment of the current APP_ENV.
type ConfigPort interface {
	AppEnv() string
	// Loaded lists the dotenv files that contributed values.
	Loaded() []string
	Get(key string) string
	GetWithDefault(key string, defaultValue string) string
	GetInt(key string, defaultValue int) int
	GetBool(key string, defaultValue bool) bool
	GetDuration(key string, defaultValue time.Duration) time.Duration
}
