package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS vehicles (
		id UUID PRIMARY KEY,
		make VARCHAR(64) NOT NULL,
		model VARCHAR(64) NOT NULL,
		year INTEGER NOT NULL DEFAULT 0,
		plate VARCHAR(32) NOT NULL,
		vin VARCHAR(32),
		fuel VARCHAR(32),
		engine VARCHAR(64),
		power VARCHAR(32),
		tires VARCHAR(64),
		color VARCHAR(32),
		image TEXT,
		km INTEGER NOT NULL DEFAULT 0 CHECK (km >= 0),
		status VARCHAR(16) NOT NULL DEFAULT 'active',
		next_inspection_date VARCHAR(10),
		next_inspection_status VARCHAR(16),
		next_iuc_date VARCHAR(10),
		next_iuc_status VARCHAR(16),
		next_service_km INTEGER NOT NULL DEFAULT 0,
		next_service_date VARCHAR(10),
		last_annual_review_date VARCHAR(10),
		next_annual_review_date VARCHAR(10),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'vehicles_status_check') THEN
			ALTER TABLE vehicles ADD CONSTRAINT vehicles_status_check
				CHECK (status IN ('active', 'maintenance', 'inactive'));
		END IF;
	END
	$$;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_vehicles_plate ON vehicles (UPPER(plate));`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_status ON vehicles (status);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_next_inspection_date ON vehicles (next_inspection_date);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_next_iuc_date ON vehicles (next_iuc_date);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_next_annual_review_date ON vehicles (next_annual_review_date);`,
	`CREATE TABLE IF NOT EXISTS maintenance_records (
		id UUID PRIMARY KEY,
		vehicle_id UUID NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		seq BIGSERIAL NOT NULL,
		date VARCHAR(10) NOT NULL,
		type VARCHAR(32) NOT NULL,
		service TEXT NOT NULL,
		garage VARCHAR(128),
		km INTEGER NOT NULL DEFAULT 0,
		cost NUMERIC(12,2),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_maintenance_records_vehicle_id ON maintenance_records (vehicle_id, seq);`,
	`CREATE OR REPLACE FUNCTION set_row_updated_at()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_vehicles_updated_at') THEN
			CREATE TRIGGER trg_vehicles_updated_at
				BEFORE UPDATE ON vehicles
				FOR EACH ROW
				EXECUTE PROCEDURE set_row_updated_at();
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
