// internal/service/leveling_test.go
package service

import "testing"

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp    int64
		level int
	}{
		{0, 1},
		{1, 1},
		{99, 1},
		{100, 2},
		{199, 2},
		{250, 3},
		{999, 10},
		{-5, 1},
	}

	for _, c := range cases {
		if got := LevelForXP(c.xp); got != c.level {
			t.Errorf("LevelForXP(%d) = %d, want %d", c.xp, got, c.level)
		}
	}
}

func TestLevelForXPMonotonic(t *testing.T) {
	prev := LevelForXP(0)
	for xp := int64(1); xp <= 5000; xp += 7 {
		level := LevelForXP(xp)
		if level < prev {
			t.Fatalf("LevelForXP(%d) = %d, below previous level %d", xp, level, prev)
		}
		prev = level
	}
}

func TestGrantXPLevelUp(t *testing.T) {
	result := GrantXP(90, 20)

	if result.NewXP != 110 {
		t.Errorf("NewXP = %d, want 110", result.NewXP)
	}
	if result.OldLevel != 1 || result.NewLevel != 2 {
		t.Errorf("levels = %d -> %d, want 1 -> 2", result.OldLevel, result.NewLevel)
	}
	if !result.LeveledUp {
		t.Error("LeveledUp = false, want true")
	}
}

func TestGrantXPNoLevelUp(t *testing.T) {
	result := GrantXP(10, 20)

	if result.NewXP != 30 {
		t.Errorf("NewXP = %d, want 30", result.NewXP)
	}
	if result.LeveledUp {
		t.Error("LeveledUp = true, want false")
	}
	if result.OldLevel != result.NewLevel {
		t.Errorf("levels = %d -> %d, want unchanged", result.OldLevel, result.NewLevel)
	}
}

func TestGrantXPMultipleLevels(t *testing.T) {
	// Le signal OldLevel/NewLevel doit couvrir toute la plage franchie
	result := GrantXP(0, 250)

	if result.OldLevel != 1 || result.NewLevel != 3 {
		t.Errorf("levels = %d -> %d, want 1 -> 3", result.OldLevel, result.NewLevel)
	}
	if !result.LeveledUp {
		t.Error("LeveledUp = false, want true")
	}
}

func TestXPIntoLevel(t *testing.T) {
	if got := XPIntoLevel(250); got != 50 {
		t.Errorf("XPIntoLevel(250) = %d, want 50", got)
	}
	if got := XPIntoLevel(0); got != 0 {
		t.Errorf("XPIntoLevel(0) = %d, want 0", got)
	}
	if got := XPForNextLevel(250); got != 50 {
		t.Errorf("XPForNextLevel(250) = %d, want 50", got)
	}
	if got := XPForNextLevel(0); got != 100 {
		t.Errorf("XPForNextLevel(0) = %d, want 100", got)
	}
}
