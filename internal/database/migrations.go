package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Migration 1: Table des acteurs (level/XP/gold)
const createActorsTable = `
CREATE TABLE IF NOT EXISTS actors (
    id UUID PRIMARY KEY,
    name VARCHAR(100) NOT NULL DEFAULT '',
    level INTEGER NOT NULL DEFAULT 1 CHECK (level >= 1),
    xp BIGINT NOT NULL DEFAULT 0 CHECK (xp >= 0),
    gold BIGINT NOT NULL DEFAULT 0 CHECK (gold >= 0),
    is_active BOOLEAN NOT NULL DEFAULT true,
    last_raid_grant_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`

// Migration 2: Table des instances de boss
// L'index partiel unique garantit qu'au plus une instance est active,
// ce qui rend la création "create-if-absent" atomique.
const createBossInstancesTable = `
CREATE TABLE IF NOT EXISTS boss_instances (
    id UUID PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    max_hp DOUBLE PRECISION NOT NULL CHECK (max_hp > 0),
    current_hp DOUBLE PRECISION NOT NULL CHECK (current_hp >= 0),
    level INTEGER NOT NULL DEFAULT 1,
    xp_per_damage DOUBLE PRECISION NOT NULL DEFAULT 0.1,
    gold_reward BIGINT NOT NULL DEFAULT 10000,
    is_active BOOLEAN NOT NULL DEFAULT true,
    spawn_time TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
    defeated_at TIMESTAMP WITH TIME ZONE,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,

    CONSTRAINT hp_within_bounds CHECK (current_hp <= max_hp)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_boss_instances_single_active
    ON boss_instances(is_active) WHERE is_active;`

// Migration 3: Table des événements de dégâts (append-only)
const createDamageEventsTable = `
CREATE TABLE IF NOT EXISTS damage_events (
    id UUID PRIMARY KEY,
    boss_id UUID NOT NULL REFERENCES boss_instances(id) ON DELETE CASCADE,
    actor_id UUID NOT NULL REFERENCES actors(id) ON DELETE CASCADE,
    damage_amount DOUBLE PRECISION NOT NULL CHECK (damage_amount >= 0),
    xp_earned DOUBLE PRECISION NOT NULL CHECK (xp_earned >= 0),
    dealt_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`

// Migration 4: Table des duels résolus (append-only)
const createDuelRecordsTable = `
CREATE TABLE IF NOT EXISTS duel_records (
    id UUID PRIMARY KEY,
    attacker_id UUID NOT NULL REFERENCES actors(id) ON DELETE CASCADE,
    defender_id UUID NOT NULL REFERENCES actors(id) ON DELETE CASCADE,
    attacker_level INTEGER NOT NULL,
    defender_level INTEGER NOT NULL,
    attacker_damage INTEGER NOT NULL,
    defender_hp INTEGER NOT NULL,
    damage_dealt INTEGER NOT NULL,
    attacker_won BOOLEAN NOT NULL,
    xp_earned BIGINT NOT NULL DEFAULT 0,
    gold_earned BIGINT NOT NULL DEFAULT 0,
    gold_lost BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,

    CONSTRAINT different_actors CHECK (attacker_id != defender_id)
);`

// Migration 5: Table des statistiques de duel (une ligne par acteur)
const createDuelStatsTable = `
CREATE TABLE IF NOT EXISTS duel_stats (
    actor_id UUID PRIMARY KEY REFERENCES actors(id) ON DELETE CASCADE,
    wins INTEGER NOT NULL DEFAULT 0,
    losses INTEGER NOT NULL DEFAULT 0,
    total_damage_dealt DOUBLE PRECISION NOT NULL DEFAULT 0,
    total_damage_taken DOUBLE PRECISION NOT NULL DEFAULT 0,
    last_attack_at TIMESTAMP WITH TIME ZONE,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`

// Migration 6: Index pour les performances
const createIndexes = `
-- Index pour actors
CREATE INDEX IF NOT EXISTS idx_actors_is_active ON actors(is_active);
CREATE INDEX IF NOT EXISTS idx_actors_level ON actors(level DESC);

-- Index pour boss_instances
CREATE INDEX IF NOT EXISTS idx_boss_instances_spawn_time ON boss_instances(spawn_time DESC);

-- Index pour damage_events
CREATE INDEX IF NOT EXISTS idx_damage_events_boss_id ON damage_events(boss_id);
CREATE INDEX IF NOT EXISTS idx_damage_events_actor_dealt_at ON damage_events(actor_id, dealt_at DESC);

-- Index pour duel_records
CREATE INDEX IF NOT EXISTS idx_duel_records_attacker ON duel_records(attacker_id);
CREATE INDEX IF NOT EXISTS idx_duel_records_defender_created ON duel_records(defender_id, created_at DESC);

-- Index pour duel_stats
CREATE INDEX IF NOT EXISTS idx_duel_stats_wins ON duel_stats(wins DESC);`

// RunMigrations exécute les migrations de base de données
func RunMigrations(db *DB) error {
	logrus.Info("Running progression database migrations...")

	migrations := []string{
		createActorsTable,
		createBossInstancesTable,
		createDamageEventsTable,
		createDuelRecordsTable,
		createDuelStatsTable,
		createIndexes,
	}

	for i, migration := range migrations {
		logrus.WithField("migration", i+1).Debug("Executing migration")

		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", i+1, err)
		}
	}

	logrus.Info("Progression database migrations completed successfully")
	return nil
}
