package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	stmts := []string{
		`
	CREATE TABLE IF NOT EXISTS contributions (
	  id CHAR(36) NOT NULL,
	  member_id CHAR(36) NOT NULL,
	  period CHAR(7) NOT NULL,
	  amount DECIMAL(14,2) NOT NULL,
	  currency CHAR(3) NOT NULL DEFAULT 'NGN',
	  status VARCHAR(32) NOT NULL,
	  payment_reference VARCHAR(64) NULL,
	  paid_at DATETIME(3) NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_contributions_member_id (member_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`
	CREATE TABLE IF NOT EXISTS payments (
	  id CHAR(36) NOT NULL,
	  reference VARCHAR(64) NOT NULL,
	  contribution_id CHAR(36) NOT NULL,
	  gateway VARCHAR(32) NOT NULL,
	  status VARCHAR(32) NOT NULL,
	  amount DECIMAL(14,2) NOT NULL,
	  currency CHAR(3) NOT NULL DEFAULT 'NGN',
	  gateway_ref VARCHAR(128) NULL,
	  authorization_url VARCHAR(512) NULL,
	  gateway_payload JSON NULL,
	  failure_reason VARCHAR(255) NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
	  paid_at DATETIME(3) NULL,
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_payments_reference (reference),
	  KEY ix_payments_contribution_id (contribution_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`
	CREATE TABLE IF NOT EXISTS gateway_events (
	  id CHAR(36) NOT NULL,
	  gateway VARCHAR(32) NOT NULL,
	  event_hash CHAR(64) NOT NULL,
	  reference VARCHAR(64) NULL,
	  payload_json JSON NOT NULL,
	  received_at DATETIME(3) NOT NULL,
	  processed_at DATETIME(3) NULL,
	  process_error VARCHAR(255) NULL,
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_gateway_events_gateway_hash (gateway, event_hash)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	}

	for _, sql := range stmts {
		if err := db.Exec(sql).Error; err != nil {
			log.Fatalf("Failed to create table: %v", err)
		}
	}

	log.Println("tables created")
}
