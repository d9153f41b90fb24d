// internal/cache/leaderboard.go
package cache

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"progression/internal/config"
)

// Entry représente une ligne du classement côté cache
type Entry struct {
	ActorID     string
	TotalDamage float64
	TotalXP     float64
	FirstHit    time.Time
}

// LeaderboardCacheInterface définit le miroir Redis du classement boss.
// PostgreSQL reste la source de vérité ; toute erreur de cache dégrade
// silencieusement vers l'agrégation SQL.
type LeaderboardCacheInterface interface {
	AddDamage(ctx context.Context, bossID, actorID string, damage, xp float64) error
	TopDamage(ctx context.Context, bossID string, limit int64) ([]Entry, error)
	ClearBoss(ctx context.Context, bossID string) error
	Close() error
}

// LeaderboardCache implémente l'interface via des sorted sets Redis
type LeaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache crée une nouvelle connexion Redis et la teste
func NewLeaderboardCache(cfg config.RedisConfig) (LeaderboardCacheInterface, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"addr":    cfg.GetRedisAddr(),
		"db":      cfg.DB,
		"service": "progression",
	}).Info("Connected to Redis leaderboard cache")

	return &LeaderboardCache{client: client}, nil
}

func damageKey(bossID string) string   { return "boss:" + bossID + ":damage" }
func xpKey(bossID string) string       { return "boss:" + bossID + ":xp" }
func firstHitKey(bossID string) string { return "boss:" + bossID + ":first_hit" }

// AddDamage incrémente les totaux de dégâts et d'XP d'un acteur pour un boss.
// Le premier coup de chaque acteur est horodaté (HSETNX) pour départager
// les égalités de dégâts comme le fait l'agrégation SQL.
func (c *LeaderboardCache) AddDamage(ctx context.Context, bossID, actorID string, damage, xp float64) error {
	pipe := c.client.Pipeline()

	pipe.ZIncrBy(ctx, damageKey(bossID), damage, actorID)
	pipe.ZIncrBy(ctx, xpKey(bossID), xp, actorID)
	pipe.HSetNX(ctx, firstHitKey(bossID), actorID, time.Now().UnixNano())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update leaderboard cache: %w", err)
	}

	return nil
}

// TopDamage retourne les N premiers acteurs par dégâts totaux
func (c *LeaderboardCache) TopDamage(ctx context.Context, bossID string, limit int64) ([]Entry, error) {
	members, err := c.client.ZRevRangeWithScores(ctx, damageKey(bossID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard cache: %w", err)
	}

	if len(members) == 0 {
		return nil, nil
	}

	// Récupération des totaux d'XP et des premiers coups en un aller-retour
	pipe := c.client.Pipeline()
	xpCmds := make([]*redis.FloatCmd, len(members))
	hitCmds := make([]*redis.StringCmd, len(members))
	for i, m := range members {
		xpCmds[i] = pipe.ZScore(ctx, xpKey(bossID), m.Member.(string))
		hitCmds[i] = pipe.HGet(ctx, firstHitKey(bossID), m.Member.(string))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read XP scores: %w", err)
	}

	entries := make([]Entry, 0, len(members))
	for i, m := range members {
		entry := Entry{
			ActorID:     m.Member.(string),
			TotalDamage: m.Score,
		}
		if xp, err := xpCmds[i].Result(); err == nil {
			entry.TotalXP = xp
		}
		if raw, err := hitCmds[i].Result(); err == nil {
			if nanos, err := strconv.ParseInt(raw, 10, 64); err == nil {
				entry.FirstHit = time.Unix(0, nanos)
			}
		}
		entries = append(entries, entry)
	}

	// Les ZSets ordonnent les ex aequo par membre ; on réaligne sur
	// l'ordre SQL (dégâts décroissants, premier coup croissant)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalDamage != entries[j].TotalDamage {
			return entries[i].TotalDamage > entries[j].TotalDamage
		}
		return entries[i].FirstHit.Before(entries[j].FirstHit)
	})

	return entries, nil
}

// ClearBoss supprime les classements d'un boss (appelé après sa défaite)
func (c *LeaderboardCache) ClearBoss(ctx context.Context, bossID string) error {
	pipe := c.client.Pipeline()

	pipe.Del(ctx, damageKey(bossID))
	pipe.Del(ctx, xpKey(bossID))
	pipe.Del(ctx, firstHitKey(bossID))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear leaderboard cache: %w", err)
	}

	return nil
}

// Close ferme la connexion Redis
func (c *LeaderboardCache) Close() error {
	return c.client.Close()
}
