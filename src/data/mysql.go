package data

import (
	"log"
	"os"

	"github.com/stake-plus/lazy-consensus-bot/src/types"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func MustMySQL(dsn string) *gorm.DB {
	// Silent gorm logger; record-not-found is an expected outcome here
	gormLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	return db
}

// AutoMigrate creates or updates the schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Setting{},
		&types.Proposal{},
		&types.Voter{},
		&types.ProposalHistory{},
	)
}
