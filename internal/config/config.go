package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config structure principale de configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Game       GameConfig       `mapstructure:"game"`
	AntiCheat  AntiCheatConfig  `mapstructure:"anticheat"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig configuration du serveur HTTP
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Environment  string        `mapstructure:"environment"`
	Debug        bool          `mapstructure:"debug"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig configuration de la base de données
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// JWTConfig configuration JWT
type JWTConfig struct {
	Secret         string        `mapstructure:"secret"`
	ExpirationTime time.Duration `mapstructure:"expiration_time"`
}

// RedisConfig configuration Redis (cache du leaderboard)
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
	Enabled  bool   `mapstructure:"enabled"`
}

// GameConfig constantes de l'économie de progression
type GameConfig struct {
	BossName         string        `mapstructure:"boss_name"`
	BossDescription  string        `mapstructure:"boss_description"`
	BossMaxHP        float64       `mapstructure:"boss_max_hp"`
	BossLevel        int           `mapstructure:"boss_level"`
	BossXPPerDamage  float64       `mapstructure:"boss_xp_per_damage"`
	BossGoldReward   int64         `mapstructure:"boss_gold_reward"`
	DamageInterval   time.Duration `mapstructure:"damage_interval"`
	AttackCooldown   time.Duration `mapstructure:"attack_cooldown"`
	XPGrantInterval  time.Duration `mapstructure:"xp_grant_interval"`
	LeaderboardLimit int           `mapstructure:"leaderboard_limit"`
}

// AntiCheatConfig bornes appliquées aux entrées numériques non fiables
type AntiCheatConfig struct {
	MaxDamageMultiplier   float64 `mapstructure:"max_damage_multiplier"`
	MaxXPBonus            float64 `mapstructure:"max_xp_bonus"`
	MaxXPPerAction        int64   `mapstructure:"max_xp_per_action"`
	MaxRaidLevel          int     `mapstructure:"max_raid_level"`
	LogSuspiciousActivity bool    `mapstructure:"log_suspicious_activity"`
}

// RateLimitConfig configuration du rate limiting HTTP
type RateLimitConfig struct {
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	BurstSize         int           `mapstructure:"burst_size"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

// MonitoringConfig configuration du monitoring
type MonitoringConfig struct {
	MetricsPath string `mapstructure:"metrics_path"`
	HealthPath  string `mapstructure:"health_path"`
}

// LoggingConfig configuration des logs
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig charge la configuration depuis les variables d'environnement
func LoadConfig() (*Config, error) {
	// Configuration par défaut
	config := &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8087,
			Environment:  "development",
			Debug:        true,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			Name:            "gameserver_progression",
			User:            "postgres",
			Password:        "postgres",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300 * time.Second,
		},
		JWT: JWTConfig{
			Secret:         "your-super-secret-jwt-key-change-in-production-minimum-64-characters",
			ExpirationTime: 24 * time.Hour,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			Password: "",
			DB:       0,
			PoolSize: 10,
			Enabled:  true,
		},
		Game: GameConfig{
			BossName:         "Ancient Dragon",
			BossDescription:  "A mighty dragon that has terrorized the town for centuries. Team up to bring it down!",
			BossMaxHP:        1000000,
			BossLevel:        1,
			BossXPPerDamage:  0.1,
			BossGoldReward:   10000,
			DamageInterval:   500 * time.Millisecond,
			AttackCooldown:   30 * time.Second,
			XPGrantInterval:  100 * time.Millisecond,
			LeaderboardLimit: 10,
		},
		AntiCheat: AntiCheatConfig{
			MaxDamageMultiplier:   10.0,
			MaxXPBonus:            4.0,
			MaxXPPerAction:        1000,
			MaxRaidLevel:          1000,
			LogSuspiciousActivity: true,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 120,
			BurstSize:         20,
			CleanupInterval:   5 * time.Minute,
		},
		Monitoring: MonitoringConfig{
			MetricsPath: "/metrics",
			HealthPath:  "/health",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	// Configuration Viper
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Mapping des variables d'environnement
	viper.BindEnv("server.host", "SERVER_HOST")
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.environment", "SERVER_ENVIRONMENT")
	viper.BindEnv("server.debug", "SERVER_DEBUG")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")
	viper.BindEnv("database.max_open_conns", "DATABASE_MAX_OPEN_CONNS")
	viper.BindEnv("database.max_idle_conns", "DATABASE_MAX_IDLE_CONNS")
	viper.BindEnv("database.conn_max_lifetime", "DATABASE_CONN_MAX_LIFETIME")

	viper.BindEnv("jwt.secret", "JWT_SECRET")
	viper.BindEnv("jwt.expiration_time", "JWT_EXPIRATION_TIME")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
	viper.BindEnv("redis.pool_size", "REDIS_POOL_SIZE")
	viper.BindEnv("redis.enabled", "REDIS_ENABLED")

	viper.BindEnv("game.boss_name", "GAME_BOSS_NAME")
	viper.BindEnv("game.boss_max_hp", "GAME_BOSS_MAX_HP")
	viper.BindEnv("game.boss_xp_per_damage", "GAME_BOSS_XP_PER_DAMAGE")
	viper.BindEnv("game.boss_gold_reward", "GAME_BOSS_GOLD_REWARD")
	viper.BindEnv("game.damage_interval", "GAME_DAMAGE_INTERVAL")
	viper.BindEnv("game.attack_cooldown", "GAME_ATTACK_COOLDOWN")
	viper.BindEnv("game.xp_grant_interval", "GAME_XP_GRANT_INTERVAL")
	viper.BindEnv("game.leaderboard_limit", "GAME_LEADERBOARD_LIMIT")

	viper.BindEnv("anticheat.max_damage_multiplier", "ANTICHEAT_MAX_DAMAGE_MULTIPLIER")
	viper.BindEnv("anticheat.max_xp_bonus", "ANTICHEAT_MAX_XP_BONUS")
	viper.BindEnv("anticheat.max_xp_per_action", "ANTICHEAT_MAX_XP_PER_ACTION")
	viper.BindEnv("anticheat.max_raid_level", "ANTICHEAT_MAX_RAID_LEVEL")
	viper.BindEnv("anticheat.log_suspicious_activity", "ANTICHEAT_LOG_SUSPICIOUS_ACTIVITY")

	viper.BindEnv("rate_limit.requests_per_minute", "RATE_LIMIT_REQUESTS_PER_MINUTE")
	viper.BindEnv("rate_limit.burst_size", "RATE_LIMIT_BURST_SIZE")
	viper.BindEnv("rate_limit.cleanup_interval", "RATE_LIMIT_CLEANUP_INTERVAL")

	viper.BindEnv("monitoring.metrics_path", "MONITORING_METRICS_PATH")
	viper.BindEnv("monitoring.health_path", "MONITORING_HEALTH_PATH")

	viper.BindEnv("logging.level", "LOG_LEVEL")
	viper.BindEnv("logging.format", "LOG_FORMAT")

	// Charger le fichier de configuration s'il existe
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Merger avec la configuration par défaut
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validation
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate valide la configuration
func (c *Config) Validate() error {
	// Validation serveur
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Validation JWT
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters long")
	}

	// Validation database
	if c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}

	// Validation des constantes de jeu
	if c.Game.BossMaxHP <= 0 {
		return fmt.Errorf("boss max HP must be positive")
	}
	if c.Game.BossXPPerDamage < 0 {
		return fmt.Errorf("boss XP per damage cannot be negative")
	}
	if c.Game.AttackCooldown <= 0 {
		return fmt.Errorf("attack cooldown must be positive")
	}

	// Validation anti-cheat
	if c.AntiCheat.MaxDamageMultiplier <= 0 {
		return fmt.Errorf("max damage multiplier must be positive")
	}
	if c.AntiCheat.MaxXPPerAction <= 0 {
		return fmt.Errorf("max XP per action must be positive")
	}

	return nil
}

// GetDSN retourne la chaîne de connection PostgreSQL
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// GetRedisAddr retourne l'adresse Redis
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
