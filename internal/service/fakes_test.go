// internal/service/fakes_test.go - Doublures en mémoire pour les tests
package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"progression/internal/cache"
	"progression/internal/config"
	"progression/internal/models"
	"progression/internal/repository"
)

func testConfig() *config.Config {
	return &config.Config{
		Game: config.GameConfig{
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
		AntiCheat: config.AntiCheatConfig{
			MaxDamageMultiplier:   10,
			MaxXPBonus:            4,
			MaxXPPerAction:        1000,
			MaxRaidLevel:          1000,
			LogSuspiciousActivity: false,
		},
	}
}

// fakeActorRepo est une implémentation en mémoire de ActorRepositoryInterface
type fakeActorRepo struct {
	actors map[uuid.UUID]*models.Actor
}

func newFakeActorRepo() *fakeActorRepo {
	return &fakeActorRepo{actors: make(map[uuid.UUID]*models.Actor)}
}

func (r *fakeActorRepo) addActor(id uuid.UUID, name string, level int, xp, gold int64) {
	r.actors[id] = &models.Actor{
		ID:        id,
		Name:      name,
		Level:     level,
		XP:        xp,
		Gold:      gold,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now().Add(-time.Hour),
	}
}

func (r *fakeActorRepo) EnsureExists(ctx context.Context, id uuid.UUID, name string) error {
	if _, ok := r.actors[id]; !ok {
		r.addActor(id, name, 1, 0, 0)
	}
	return nil
}

func (r *fakeActorRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Actor, error) {
	actor, ok := r.actors[id]
	if !ok {
		return nil, repository.ErrActorNotFound
	}
	copied := *actor
	return &copied, nil
}

func (r *fakeActorRepo) ListOpponents(ctx context.Context, excludeID uuid.UUID) ([]*models.Opponent, error) {
	opponents := []*models.Opponent{}
	for id, actor := range r.actors {
		if id == excludeID || !actor.IsActive {
			continue
		}
		opponents = append(opponents, &models.Opponent{
			ID:    actor.ID,
			Name:  actor.Name,
			Level: actor.Level,
			XP:    actor.XP,
		})
	}
	sort.Slice(opponents, func(i, j int) bool {
		if opponents[i].Level != opponents[j].Level {
			return opponents[i].Level > opponents[j].Level
		}
		return opponents[i].Name < opponents[j].Name
	})
	return opponents, nil
}

func (r *fakeActorRepo) ApplyXP(ctx context.Context, id uuid.UUID, amount int64) (int64, int, error) {
	actor, ok := r.actors[id]
	if !ok {
		return 0, 0, repository.ErrActorNotFound
	}
	actor.XP += amount
	actor.Level = int(actor.XP/models.XPPerLevel) + 1
	actor.UpdatedAt = time.Now()
	return actor.XP, actor.Level, nil
}

func (r *fakeActorRepo) ApplyRaidXP(ctx context.Context, id uuid.UUID, amount int64) (int64, int, error) {
	newXP, newLevel, err := r.ApplyXP(ctx, id, amount)
	if err != nil {
		return 0, 0, err
	}
	now := time.Now()
	r.actors[id].LastRaidGrantAt = &now
	return newXP, newLevel, nil
}

func (r *fakeActorRepo) AddGold(ctx context.Context, id uuid.UUID, delta int64) error {
	actor, ok := r.actors[id]
	if !ok {
		return repository.ErrActorNotFound
	}
	actor.Gold += delta
	if actor.Gold < 0 {
		actor.Gold = 0
	}
	return nil
}

func (r *fakeActorRepo) ResetProgress(ctx context.Context, id uuid.UUID) error {
	actor, ok := r.actors[id]
	if !ok {
		return repository.ErrActorNotFound
	}
	actor.XP = 0
	actor.Level = 1
	actor.Gold = 0
	return nil
}

// fakeBossRepo est une implémentation en mémoire de BossRepositoryInterface
type fakeBossRepo struct {
	active   *models.Boss
	defeated []*models.Boss
	events   []*models.DamageEvent
}

func newFakeBossRepo() *fakeBossRepo {
	return &fakeBossRepo{}
}

func (r *fakeBossRepo) GetActive(ctx context.Context) (*models.Boss, error) {
	if r.active == nil {
		return nil, repository.ErrNoActiveBoss
	}
	copied := *r.active
	return &copied, nil
}

func (r *fakeBossRepo) CreateIfNoneActive(ctx context.Context, boss *models.Boss) error {
	if r.active != nil {
		return nil
	}
	copied := *boss
	r.active = &copied
	return nil
}

func (r *fakeBossRepo) ApplyDamage(ctx context.Context, bossID uuid.UUID, damage float64) (float64, bool, error) {
	if r.active == nil || r.active.ID != bossID || r.active.CurrentHP <= 0 {
		return 0, false, repository.ErrBossAlreadyDefeated
	}

	newHP := r.active.CurrentHP - damage
	if newHP < 0 {
		newHP = 0
	}
	r.active.CurrentHP = newHP

	if newHP > 0 {
		return newHP, false, nil
	}

	now := time.Now()
	r.active.IsActive = false
	r.active.DefeatedAt = &now
	r.defeated = append(r.defeated, r.active)
	r.active = nil
	return 0, true, nil
}

func (r *fakeBossRepo) DeactivateActive(ctx context.Context) error {
	if r.active != nil {
		r.active.IsActive = false
		r.defeated = append(r.defeated, r.active)
		r.active = nil
	}
	return nil
}

func (r *fakeBossRepo) RecordDamage(ctx context.Context, event *models.DamageEvent) error {
	copied := *event
	r.events = append(r.events, &copied)
	return nil
}

func (r *fakeBossRepo) LastDamageAt(ctx context.Context, actorID uuid.UUID) (*time.Time, error) {
	var latest *time.Time
	for _, event := range r.events {
		if event.ActorID != actorID {
			continue
		}
		if latest == nil || event.DealtAt.After(*latest) {
			t := event.DealtAt
			latest = &t
		}
	}
	return latest, nil
}

func (r *fakeBossRepo) Leaderboard(ctx context.Context, bossID uuid.UUID, limit int) ([]*models.BossLeaderboardEntry, error) {
	totals := make(map[uuid.UUID]*models.BossLeaderboardEntry)
	firstHits := make(map[uuid.UUID]time.Time)
	for _, event := range r.events {
		if event.BossID != bossID {
			continue
		}
		entry, ok := totals[event.ActorID]
		if !ok {
			entry = &models.BossLeaderboardEntry{ActorID: event.ActorID}
			totals[event.ActorID] = entry
			firstHits[event.ActorID] = event.DealtAt
		} else if event.DealtAt.Before(firstHits[event.ActorID]) {
			firstHits[event.ActorID] = event.DealtAt
		}
		entry.TotalDamage += event.DamageAmount
		entry.TotalXP += event.XPEarned
	}

	entries := make([]*models.BossLeaderboardEntry, 0, len(totals))
	for _, entry := range totals {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalDamage != entries[j].TotalDamage {
			return entries[i].TotalDamage > entries[j].TotalDamage
		}
		return firstHits[entries[i].ActorID].Before(firstHits[entries[j].ActorID])
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// fakeDuelRepo est une implémentation en mémoire de DuelRepositoryInterface
type fakeDuelRepo struct {
	records []*models.DuelRecord
	stats   map[uuid.UUID]*models.DuelStats
}

func newFakeDuelRepo() *fakeDuelRepo {
	return &fakeDuelRepo{stats: make(map[uuid.UUID]*models.DuelStats)}
}

func (r *fakeDuelRepo) CreateRecord(ctx context.Context, record *models.DuelRecord) error {
	copied := *record
	r.records = append(r.records, &copied)
	return nil
}

func (r *fakeDuelRepo) GetStats(ctx context.Context, actorID uuid.UUID) (*models.DuelStats, error) {
	stats, ok := r.stats[actorID]
	if !ok {
		return &models.DuelStats{ActorID: actorID}, nil
	}
	copied := *stats
	return &copied, nil
}

func (r *fakeDuelRepo) UpsertStats(ctx context.Context, actorID uuid.UUID, delta repository.StatsDelta) error {
	stats, ok := r.stats[actorID]
	if !ok {
		stats = &models.DuelStats{ActorID: actorID}
		r.stats[actorID] = stats
	}
	stats.Wins += delta.Wins
	stats.Losses += delta.Losses
	stats.TotalDamageDealt += delta.DamageDealt
	stats.TotalDamageTaken += delta.DamageTaken
	if delta.SetLastAttack {
		now := time.Now()
		stats.LastAttackAt = &now
	}
	stats.UpdatedAt = time.Now()
	return nil
}

func (r *fakeDuelRepo) Leaderboard(ctx context.Context, limit int) ([]*models.DuelLeaderboardEntry, error) {
	entries := make([]*models.DuelLeaderboardEntry, 0, len(r.stats))
	for id, stats := range r.stats {
		entries = append(entries, &models.DuelLeaderboardEntry{
			ActorID:          id,
			Wins:             stats.Wins,
			Losses:           stats.Losses,
			TotalDamageDealt: stats.TotalDamageDealt,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}
		return entries[i].TotalDamageDealt > entries[j].TotalDamageDealt
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (r *fakeDuelRepo) NotificationsForDefender(ctx context.Context, defenderID uuid.UUID, since *time.Time, limit int) ([]*models.DuelNotification, error) {
	notifications := []*models.DuelNotification{}
	for _, record := range r.records {
		if record.DefenderID != defenderID {
			continue
		}
		if since != nil && !record.CreatedAt.After(*since) {
			continue
		}
		notifications = append(notifications, &models.DuelNotification{
			ID:            record.ID,
			AttackerLevel: record.AttackerLevel,
			DefenderWon:   !record.AttackerWon,
			DamageDealt:   record.DamageDealt,
			CreatedAt:     record.CreatedAt,
		})
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	if len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (r *fakeDuelRepo) GetRecordTime(ctx context.Context, recordID uuid.UUID) (*time.Time, error) {
	for _, record := range r.records {
		if record.ID == recordID {
			t := record.CreatedAt
			return &t, nil
		}
	}
	return nil, nil
}

// fakeRealtime capture les messages diffusés
type fakeRealtime struct {
	broadcasts []interface{}
	notified   map[string][]interface{}
}

func newFakeRealtime() *fakeRealtime {
	return &fakeRealtime{notified: make(map[string][]interface{})}
}

func (s *fakeRealtime) Stop()                                              {}
func (s *fakeRealtime) AddConnection(conn *websocket.Conn, actorID string) {}
func (s *fakeRealtime) RemoveConnection(conn *websocket.Conn)              {}

func (s *fakeRealtime) Broadcast(message interface{}) {
	s.broadcasts = append(s.broadcasts, message)
}

func (s *fakeRealtime) NotifyActor(actorID string, message interface{}) {
	s.notified[actorID] = append(s.notified[actorID], message)
}

// fakeLeaderboardCache est un miroir en mémoire du cache Redis.
// Le compteur seq horodate le premier coup de chaque acteur pour
// reproduire le départage des égalités du vrai cache.
type fakeLeaderboardCache struct {
	entries map[string]map[string]*cache.Entry
	seq     int
	failing bool
}

func newFakeLeaderboardCache() *fakeLeaderboardCache {
	return &fakeLeaderboardCache{entries: make(map[string]map[string]*cache.Entry)}
}

func (c *fakeLeaderboardCache) AddDamage(ctx context.Context, bossID, actorID string, damage, xp float64) error {
	if c.failing {
		return context.DeadlineExceeded
	}
	boss, ok := c.entries[bossID]
	if !ok {
		boss = make(map[string]*cache.Entry)
		c.entries[bossID] = boss
	}
	entry, ok := boss[actorID]
	if !ok {
		c.seq++
		entry = &cache.Entry{ActorID: actorID, FirstHit: time.Unix(0, int64(c.seq))}
		boss[actorID] = entry
	}
	entry.TotalDamage += damage
	entry.TotalXP += xp
	return nil
}

func (c *fakeLeaderboardCache) TopDamage(ctx context.Context, bossID string, limit int64) ([]cache.Entry, error) {
	if c.failing {
		return nil, context.DeadlineExceeded
	}
	boss := c.entries[bossID]
	entries := make([]cache.Entry, 0, len(boss))
	for _, entry := range boss {
		entries = append(entries, *entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalDamage != entries[j].TotalDamage {
			return entries[i].TotalDamage > entries[j].TotalDamage
		}
		return entries[i].FirstHit.Before(entries[j].FirstHit)
	})
	if int64(len(entries)) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (c *fakeLeaderboardCache) ClearBoss(ctx context.Context, bossID string) error {
	delete(c.entries, bossID)
	return nil
}

func (c *fakeLeaderboardCache) Close() error { return nil }
