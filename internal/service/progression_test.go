// internal/service/progression_test.go
package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"progression/internal/models"
)

func newTestProgressionService(actorRepo *fakeActorRepo) *ProgressionService {
	cfg := testConfig()
	return &ProgressionService{
		config:    cfg,
		actorRepo: actorRepo,
		antiCheat: NewAntiCheatService(cfg),
		now:       time.Now,
	}
}

func TestGetProgressCreatesActorLazily(t *testing.T) {
	actorRepo := newFakeActorRepo()
	svc := newTestProgressionService(actorRepo)

	actorID := uuid.New()

	progress, err := svc.GetProgress(context.Background(), actorID, "alice")
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}

	if progress.Level != 1 || progress.XP != 0 {
		t.Errorf("progress = level %d, xp %d, want fresh level 1, xp 0", progress.Level, progress.XP)
	}
	if progress.XPForNext != 100 {
		t.Errorf("XPForNext = %d, want 100", progress.XPForNext)
	}
}

func TestGrantRaidXP(t *testing.T) {
	actorRepo := newFakeActorRepo()
	svc := newTestProgressionService(actorRepo)

	actorID := uuid.New()
	actorRepo.addActor(actorID, "bob", 1, 90, 0)

	result, err := svc.GrantRaidXP(context.Background(), actorID, "bob", models.GrantXPRequest{
		XP:        20,
		RaidLevel: 3,
	})
	if err != nil {
		t.Fatalf("GrantRaidXP failed: %v", err)
	}

	if result.NewXP != 110 {
		t.Errorf("NewXP = %d, want 110", result.NewXP)
	}
	if !result.LeveledUp || result.NewLevel != 2 {
		t.Errorf("leveling = up:%v level:%d, want up to level 2", result.LeveledUp, result.NewLevel)
	}
}

func TestGrantRaidXPClampsAmount(t *testing.T) {
	actorRepo := newFakeActorRepo()
	svc := newTestProgressionService(actorRepo)

	actorID := uuid.New()
	actorRepo.addActor(actorID, "carol", 1, 0, 0)

	result, err := svc.GrantRaidXP(context.Background(), actorID, "carol", models.GrantXPRequest{
		XP:        999999,
		RaidLevel: 5000,
	})
	if err != nil {
		t.Fatalf("GrantRaidXP failed: %v", err)
	}

	if result.XPEarned != 1000 {
		t.Errorf("XPEarned = %d, want clamped 1000", result.XPEarned)
	}
	if result.NewXP != 1000 {
		t.Errorf("NewXP = %d, want 1000", result.NewXP)
	}
}

func TestGrantRaidXPThrottled(t *testing.T) {
	actorRepo := newFakeActorRepo()
	svc := newTestProgressionService(actorRepo)

	actorID := uuid.New()
	actorRepo.addActor(actorID, "dave", 1, 0, 0)
	lastGrant := time.Now()
	actorRepo.actors[actorID].LastRaidGrantAt = &lastGrant

	_, err := svc.GrantRaidXP(context.Background(), actorID, "dave", models.GrantXPRequest{XP: 50})

	var cooldown *CooldownError
	if !errors.As(err, &cooldown) {
		t.Fatalf("err = %v, want CooldownError", err)
	}
}

func TestGrantRaidXPIgnoresUnrelatedMutations(t *testing.T) {
	actorRepo := newFakeActorRepo()
	svc := newTestProgressionService(actorRepo)

	actorID := uuid.New()
	actorRepo.addActor(actorID, "frank", 1, 0, 0)
	// L'acteur vient de gagner de l'or en duel : updated_at est tout frais
	// mais aucun grant de raid n'a encore eu lieu
	actorRepo.actors[actorID].UpdatedAt = time.Now()

	result, err := svc.GrantRaidXP(context.Background(), actorID, "frank", models.GrantXPRequest{XP: 50})
	if err != nil {
		t.Fatalf("GrantRaidXP failed: %v", err)
	}
	if result.XPEarned != 50 {
		t.Errorf("XPEarned = %d, want 50", result.XPEarned)
	}

	// Le grant lui-même arme l'espacement : un second grant immédiat est rejeté
	_, err = svc.GrantRaidXP(context.Background(), actorID, "frank", models.GrantXPRequest{XP: 50})
	var cooldown *CooldownError
	if !errors.As(err, &cooldown) {
		t.Fatalf("second grant err = %v, want CooldownError", err)
	}
}

func TestResetActor(t *testing.T) {
	actorRepo := newFakeActorRepo()
	svc := newTestProgressionService(actorRepo)

	actorID := uuid.New()
	actorRepo.addActor(actorID, "erin", 7, 680, 400)

	if err := svc.ResetActor(context.Background(), actorID); err != nil {
		t.Fatalf("ResetActor failed: %v", err)
	}

	actor, _ := actorRepo.GetByID(context.Background(), actorID)
	if actor.XP != 0 || actor.Level != 1 || actor.Gold != 0 {
		t.Errorf("actor after reset = level %d, xp %d, gold %d, want 1/0/0",
			actor.Level, actor.XP, actor.Gold)
	}
}
