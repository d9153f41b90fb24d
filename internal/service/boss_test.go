// internal/service/boss_test.go
package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"progression/internal/models"
	"progression/internal/repository"
)

func newTestBossService(actorRepo *fakeActorRepo, bossRepo *fakeBossRepo) *BossService {
	cfg := testConfig()
	return &BossService{
		config:    cfg,
		bossRepo:  bossRepo,
		actorRepo: actorRepo,
		antiCheat: NewAntiCheatService(cfg),
		now:       time.Now,
	}
}

func seedBoss(bossRepo *fakeBossRepo, currentHP float64) *models.Boss {
	boss := &models.Boss{
		ID:          uuid.New(),
		Name:        "Ancient Dragon",
		MaxHP:       1000000,
		CurrentHP:   currentHP,
		Level:       1,
		XPPerDamage: 0.1,
		IsActive:    true,
		SpawnTime:   time.Now(),
	}
	bossRepo.active = boss
	return boss
}

func TestAttackBaselineScenario(t *testing.T) {
	actorRepo := newFakeActorRepo()
	bossRepo := newFakeBossRepo()
	svc := newTestBossService(actorRepo, bossRepo)

	actorID := uuid.New()

	result, err := svc.Attack(context.Background(), actorID, "alice", models.AttackBossRequest{})
	if err != nil {
		t.Fatalf("Attack failed: %v", err)
	}

	if result.ActualDamage != 1 {
		t.Errorf("ActualDamage = %v, want 1", result.ActualDamage)
	}
	if result.NewHP != 999999 {
		t.Errorf("NewHP = %v, want 999999", result.NewHP)
	}
	if math.Abs(result.XPEarned-0.1) > 1e-9 {
		t.Errorf("XPEarned = %v, want 0.1", result.XPEarned)
	}
	if result.Defeated {
		t.Error("Defeated = true, want false")
	}
	// 0.1 XP arrondi à l'entier inférieur : rien n'est crédité
	if result.Leveling != nil {
		t.Errorf("Leveling = %+v, want nil", result.Leveling)
	}
}

func TestAttackScalesWithServerLevel(t *testing.T) {
	actorRepo := newFakeActorRepo()
	bossRepo := newFakeBossRepo()
	svc := newTestBossService(actorRepo, bossRepo)

	actorID := uuid.New()
	actorRepo.addActor(actorID, "bob", 5, 450, 0)

	result, err := svc.Attack(context.Background(), actorID, "bob", models.AttackBossRequest{})
	if err != nil {
		t.Fatalf("Attack failed: %v", err)
	}

	// baseDamage = 1 + (5-1)*0.5 = 3
	if result.ActualDamage != 3 {
		t.Errorf("ActualDamage = %v, want 3", result.ActualDamage)
	}
}

func TestAttackIgnoresOutOfRangeMultiplier(t *testing.T) {
	actorRepo := newFakeActorRepo()
	bossRepo := newFakeBossRepo()
	svc := newTestBossService(actorRepo, bossRepo)

	actorID := uuid.New()

	result, err := svc.Attack(context.Background(), actorID, "mallory", models.AttackBossRequest{
		DamageMultiplier: floatPtr(50),
	})
	if err != nil {
		t.Fatalf("Attack failed: %v", err)
	}

	// Multiplicateur hors bornes ignoré : comportement identique au défaut 1
	if result.ActualDamage != 1 {
		t.Errorf("ActualDamage = %v, want 1", result.ActualDamage)
	}
}

func TestAttackAppliesValidMultiplier(t *testing.T) {
	actorRepo := newFakeActorRepo()
	bossRepo := newFakeBossRepo()
	svc := newTestBossService(actorRepo, bossRepo)

	actorID := uuid.New()

	result, err := svc.Attack(context.Background(), actorID, "carol", models.AttackBossRequest{
		DamageMultiplier: floatPtr(10),
	})
	if err != nil {
		t.Fatalf("Attack failed: %v", err)
	}

	if result.ActualDamage != 10 {
		t.Errorf("ActualDamage = %v, want 10", result.ActualDamage)
	}
	// 10 dégâts * 0.1 XP/dégât = 1 XP crédité
	if result.Leveling == nil {
		t.Fatal("Leveling = nil, want XP grant")
	}
	if result.Leveling.XPEarned != 1 {
		t.Errorf("Leveling.XPEarned = %d, want 1", result.Leveling.XPEarned)
	}
}

func TestAttackRateLimited(t *testing.T) {
	actorRepo := newFakeActorRepo()
	bossRepo := newFakeBossRepo()
	svc := newTestBossService(actorRepo, bossRepo)

	actorID := uuid.New()
	boss := seedBoss(bossRepo, 1000000)

	recent := time.Now().Add(-100 * time.Millisecond)
	bossRepo.events = append(bossRepo.events, &models.DamageEvent{
		ID:      uuid.New(),
		BossID:  boss.ID,
		ActorID: actorID,
		DealtAt: recent,
	})

	_, err := svc.Attack(context.Background(), actorID, "dave", models.AttackBossRequest{})

	var cooldown *CooldownError
	if !errors.As(err, &cooldown) {
		t.Fatalf("err = %v, want CooldownError", err)
	}
	if cooldown.RemainingSeconds() != 1 {
		t.Errorf("RemainingSeconds = %d, want 1", cooldown.RemainingSeconds())
	}
}

func TestAttackAlreadyDefeatedBoss(t *testing.T) {
	actorRepo := newFakeActorRepo()
	bossRepo := newFakeBossRepo()
	svc := newTestBossService(actorRepo, bossRepo)

	// Boss encore listé actif mais à 0 HP : un concurrent a porté le coup
	// fatal entre la lecture et l'écriture
	seedBoss(bossRepo, 0)

	_, err := svc.Attack(context.Background(), uuid.New(), "erin", models.AttackBossRequest{})
	if !errors.Is(err, repository.ErrBossAlreadyDefeated) {
		t.Fatalf("err = %v, want ErrBossAlreadyDefeated", err)
	}
}

func TestDefeatSpawnsFreshBoss(t *testing.T) {
	actorRepo := newFakeActorRepo()
	bossRepo := newFakeBossRepo()
	svc := newTestBossService(actorRepo, bossRepo)

	actorID := uuid.New()
	old := seedBoss(bossRepo, 2)

	result, err := svc.Attack(context.Background(), actorID, "frank", models.AttackBossRequest{
		DamageMultiplier: floatPtr(10),
	})
	if err != nil {
		t.Fatalf("Attack failed: %v", err)
	}

	if !result.Defeated {
		t.Fatal("Defeated = false, want true")
	}
	if result.NewHP != 0 {
		t.Errorf("NewHP = %v, want 0 (never negative)", result.NewHP)
	}
	if result.NextBoss == nil {
		t.Fatal("NextBoss = nil, want fresh boss")
	}
	if result.NextBoss.ID == old.ID {
		t.Error("NextBoss has same ID as defeated boss")
	}
	if result.NextBoss.CurrentHP != result.NextBoss.MaxHP {
		t.Errorf("NextBoss.CurrentHP = %v, want full HP %v", result.NextBoss.CurrentHP, result.NextBoss.MaxHP)
	}
	if len(bossRepo.defeated) != 1 || bossRepo.defeated[0].IsActive {
		t.Error("defeated boss should be deactivated")
	}
}

func TestGetOrCreateActiveProvisionsOnce(t *testing.T) {
	svc := newTestBossService(newFakeActorRepo(), newFakeBossRepo())

	first, err := svc.GetOrCreateActive(context.Background())
	if err != nil {
		t.Fatalf("GetOrCreateActive failed: %v", err)
	}
	if first.CurrentHP != first.MaxHP {
		t.Errorf("CurrentHP = %v, want full HP %v", first.CurrentHP, first.MaxHP)
	}

	second, err := svc.GetOrCreateActive(context.Background())
	if err != nil {
		t.Fatalf("GetOrCreateActive failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second call returned a different boss: %v vs %v", second.ID, first.ID)
	}
}

func TestLeaderboardPrefersCache(t *testing.T) {
	actorRepo := newFakeActorRepo()
	bossRepo := newFakeBossRepo()
	lbCache := newFakeLeaderboardCache()

	svc := newTestBossService(actorRepo, bossRepo)
	svc.lbCache = lbCache

	boss := seedBoss(bossRepo, 1000000)

	topID := uuid.New()
	otherID := uuid.New()
	actorRepo.addActor(topID, "grace", 3, 250, 0)
	actorRepo.addActor(otherID, "heidi", 1, 0, 0)

	ctx := context.Background()
	lbCache.AddDamage(ctx, boss.ID.String(), topID.String(), 500, 50)
	lbCache.AddDamage(ctx, boss.ID.String(), otherID.String(), 100, 10)

	entries, err := svc.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ActorID != topID || entries[0].ActorName != "grace" {
		t.Errorf("top entry = %s (%s), want grace", entries[0].ActorName, entries[0].ActorID)
	}
	if entries[0].TotalDamage != 500 {
		t.Errorf("top TotalDamage = %v, want 500", entries[0].TotalDamage)
	}
}

func TestLeaderboardFallsBackToSQL(t *testing.T) {
	actorRepo := newFakeActorRepo()
	bossRepo := newFakeBossRepo()
	lbCache := newFakeLeaderboardCache()
	lbCache.failing = true

	svc := newTestBossService(actorRepo, bossRepo)
	svc.lbCache = lbCache

	boss := seedBoss(bossRepo, 1000000)

	actorID := uuid.New()
	bossRepo.events = append(bossRepo.events, &models.DamageEvent{
		ID:           uuid.New(),
		BossID:       boss.ID,
		ActorID:      actorID,
		DamageAmount: 42,
		XPEarned:     4.2,
		DealtAt:      time.Now(),
	})

	entries, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].ActorID != actorID || entries[0].TotalDamage != 42 {
		t.Errorf("entry = %+v, want actor %s with 42 damage", entries[0], actorID)
	}
}

func TestLeaderboardTieBreakOnCachePath(t *testing.T) {
	actorRepo := newFakeActorRepo()
	bossRepo := newFakeBossRepo()
	lbCache := newFakeLeaderboardCache()

	svc := newTestBossService(actorRepo, bossRepo)
	svc.lbCache = lbCache

	boss := seedBoss(bossRepo, 1000000)

	earlyID := uuid.New()
	lateID := uuid.New()
	actorRepo.addActor(earlyID, "ivan", 1, 0, 0)
	actorRepo.addActor(lateID, "judy", 1, 0, 0)

	// Mêmes dégâts totaux, ivan a frappé en premier
	ctx := context.Background()
	lbCache.AddDamage(ctx, boss.ID.String(), earlyID.String(), 100, 10)
	lbCache.AddDamage(ctx, boss.ID.String(), lateID.String(), 60, 6)
	lbCache.AddDamage(ctx, boss.ID.String(), lateID.String(), 40, 4)

	entries, err := svc.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ActorID != earlyID {
		t.Errorf("top entry = %s, want earliest contributor ivan (%s)", entries[0].ActorID, earlyID)
	}
	if entries[0].TotalDamage != entries[1].TotalDamage {
		t.Fatalf("totals differ (%v vs %v), tie not exercised", entries[0].TotalDamage, entries[1].TotalDamage)
	}
}

func TestLeaderboardTieBreakOnSQLPath(t *testing.T) {
	actorRepo := newFakeActorRepo()
	bossRepo := newFakeBossRepo()
	svc := newTestBossService(actorRepo, bossRepo)

	boss := seedBoss(bossRepo, 1000000)

	earlyID := uuid.New()
	lateID := uuid.New()
	base := time.Now().Add(-time.Minute)

	// judy cumule le même total que ivan mais a commencé après lui
	bossRepo.events = append(bossRepo.events,
		&models.DamageEvent{ID: uuid.New(), BossID: boss.ID, ActorID: earlyID, DamageAmount: 100, DealtAt: base},
		&models.DamageEvent{ID: uuid.New(), BossID: boss.ID, ActorID: lateID, DamageAmount: 60, DealtAt: base.Add(time.Second)},
		&models.DamageEvent{ID: uuid.New(), BossID: boss.ID, ActorID: lateID, DamageAmount: 40, DealtAt: base.Add(2 * time.Second)},
	)

	entries, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ActorID != earlyID {
		t.Errorf("top entry = %s, want earliest contributor (%s)", entries[0].ActorID, earlyID)
	}
	if entries[0].TotalDamage != entries[1].TotalDamage {
		t.Fatalf("totals differ (%v vs %v), tie not exercised", entries[0].TotalDamage, entries[1].TotalDamage)
	}
}

func TestForceRespawn(t *testing.T) {
	actorRepo := newFakeActorRepo()
	bossRepo := newFakeBossRepo()
	svc := newTestBossService(actorRepo, bossRepo)

	old := seedBoss(bossRepo, 500)

	fresh, err := svc.ForceRespawn(context.Background())
	if err != nil {
		t.Fatalf("ForceRespawn failed: %v", err)
	}

	if fresh.ID == old.ID {
		t.Error("respawned boss has same ID as previous boss")
	}
	if fresh.CurrentHP != fresh.MaxHP {
		t.Errorf("CurrentHP = %v, want full HP", fresh.CurrentHP)
	}
}
