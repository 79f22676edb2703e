package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App    AppConfig
	HTTP   HTTPConfig
	JWT    JWTConfig
	Remote RemoteConfig
	DB     DBConfig
	Local  LocalConfig
	Sync   SyncConfig
	Acopio AcopioConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// Drivers del almacenamiento remoto.
const (
	RemoteSupabase = "supabase"
	RemotePostgres = "postgres"
	RemoteMemory   = "memory"
)

// RemoteConfig almacenamiento remoto compartido.
type RemoteConfig struct {
	Driver      string
	SupabaseURL string
	SupabaseKey string
	Timeout     time.Duration
}

// Configured indica si hay credenciales para el driver elegido. Sin ellas el router
// trabaja en modo localStorage.
func (c RemoteConfig) Configured(db DBConfig) bool {
	switch c.Driver {
	case RemoteSupabase:
		return c.SupabaseURL != "" && c.SupabaseKey != ""
	case RemotePostgres:
		return db.DatabaseURL != "" || db.Host != ""
	case RemoteMemory:
		return true
	}
	return false
}

// DBConfig configuración de PostgreSQL (driver remoto "postgres").
// Si DatabaseURL no está vacío, se usa como connection string completo (ej. DATABASE_URL de Supabase).
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN construye el connection string con la contraseña escapada.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// Drivers de la caché local.
const (
	LocalSQLite = "sqlite"
	LocalRedis  = "redis"
	LocalMemory = "memory"
)

// LocalConfig caché local del dispositivo.
type LocalConfig struct {
	Driver        string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// SyncConfig parámetros de la cola de sincronización.
type SyncConfig struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	HeartbeatInterval time.Duration
	DrainInterval     time.Duration
}

// AcopioConfig nombres con los que los operadores escriben el patio.
type AcopioConfig struct {
	Names []string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, REMOTE_DRIVER, SYNC_MAX_ATTEMPTS, etc.
func Load() (*Config, error) {
	// Fuera de producción se precarga .env al entorno del proceso.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("APP_ENV")), "production") {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "maquipaes-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "maquipaes"),
		},
		Remote: RemoteConfig{
			Driver:      strings.ToLower(getString(v, "REMOTE_DRIVER", RemoteSupabase)),
			SupabaseURL: getString(v, "SUPABASE_URL", ""),
			SupabaseKey: getString(v, "SUPABASE_KEY", ""),
			Timeout:     getDuration(v, "REMOTE_TIMEOUT", 5*time.Second),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", ""),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "postgres"),
			SSLMode:     getString(v, "DB_SSLMODE", "require"),
		},
		Local: LocalConfig{
			Driver:        strings.ToLower(getString(v, "LOCAL_DRIVER", LocalSQLite)),
			SQLitePath:    getString(v, "LOCAL_SQLITE_PATH", "data/maquipaes.db"),
			RedisAddr:     getString(v, "REDIS_ADDR", "localhost:6379"),
			RedisPassword: getString(v, "REDIS_PASSWORD", ""),
			RedisDB:       getInt(v, "REDIS_DB", 0),
			RedisPrefix:   getString(v, "REDIS_PREFIX", "maquipaes:"),
		},
		Sync: SyncConfig{
			MaxAttempts:       getInt(v, "SYNC_MAX_ATTEMPTS", 5),
			InitialBackoff:    getDuration(v, "SYNC_INITIAL_BACKOFF", 5*time.Second),
			MaxBackoff:        getDuration(v, "SYNC_MAX_BACKOFF", 10*time.Minute),
			HeartbeatInterval: getDuration(v, "SYNC_HEARTBEAT_INTERVAL", 30*time.Second),
			DrainInterval:     getDuration(v, "SYNC_DRAIN_INTERVAL", time.Minute),
		},
		Acopio: AcopioConfig{
			Names: getList(v, "ACOPIO_NAMES", []string{"acopio", "centro de acopio", "patio maquipaes"}),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Remote.Driver {
	case RemoteSupabase, RemotePostgres, RemoteMemory:
	default:
		return fmt.Errorf("REMOTE_DRIVER inválido: %q", c.Remote.Driver)
	}
	switch c.Local.Driver {
	case LocalSQLite, LocalRedis, LocalMemory:
	default:
		return fmt.Errorf("LOCAL_DRIVER inválido: %q", c.Local.Driver)
	}
	if c.Sync.MaxAttempts < 1 {
		return fmt.Errorf("SYNC_MAX_ATTEMPTS debe ser >= 1")
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

// getDuration acepta "30s", "5m" o segundos enteros.
func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if !v.IsSet(key) {
		return def
	}
	s := strings.TrimSpace(v.GetString(key))
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// getList separa por comas; entradas vacías se descartan.
func getList(v *viper.Viper, key string, def []string) []string {
	if !v.IsSet(key) {
		return def
	}
	var out []string
	for _, p := range strings.Split(v.GetString(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
