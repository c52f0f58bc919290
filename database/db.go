// Package database opens the relational store, migrates the schema and
// seeds the first admin account.
package database

import (
	"errors"
	"fmt"

	"github.com/mhsanaei/userhub/config"
	"github.com/mhsanaei/userhub/database/model"
	"github.com/mhsanaei/userhub/logger"
	"github.com/mhsanaei/userhub/util/crypto"
	"github.com/mhsanaei/userhub/util/random"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	db       *gorm.DB
	dbConfig *config.DatabaseConfig
)

const (
	defaultAdminName   = "Administrator"
	generatedPassChars = 16
)

func initModels() error {
	models := []any{
		&model.User{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			logger.Errorf("Error auto migrating model: %v", err)
			return err
		}
	}
	return nil
}

// initUser creates an admin account when the users table is empty.
func initUser() error {
	empty, err := isTableEmpty("users")
	if err != nil {
		logger.Errorf("Error checking if users table is empty: %v", err)
		return err
	}
	if !empty {
		return nil
	}

	password := config.GetAdminPassword()
	generated := password == ""
	if generated {
		password = random.Seq(generatedPassChars)
	}
	hashed, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}
	user := &model.User{
		Name:     defaultAdminName,
		Email:    config.GetAdminEmail(),
		Password: hashed,
		IsAdmin:  true,
		IsUser:   false,
	}
	if err := db.Create(user).Error; err != nil {
		return err
	}
	if generated {
		logger.Warningf("created admin %s with generated password %s, change it with `userhub admin reset-password`", user.Email, password)
	} else {
		logger.Infof("created admin %s", user.Email)
	}
	return nil
}

func isTableEmpty(tableName string) (bool, error) {
	var count int64
	err := db.Table(tableName).Count(&count).Error
	return count == 0, err
}

// InitDB opens the database described by c, migrates it and seeds the
// admin account.
func InitDB(c *config.DatabaseConfig) error {
	if err := OpenDB(c); err != nil {
		return err
	}
	if err := initModels(); err != nil {
		return err
	}
	return initUser()
}

// OpenDB connects to the database described by c without touching the
// schema or its rows.
func OpenDB(c *config.DatabaseConfig) error {
	if err := c.ValidateConfig(); err != nil {
		return err
	}
	if err := c.EnsureDirectoryExists(); err != nil {
		return err
	}

	var gormLogger gormlogger.Interface
	if config.IsDebug() {
		gormLogger = gormlogger.Default
	} else {
		gormLogger = gormlogger.Discard
	}

	gc := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
	}

	var dialector gorm.Dialector
	if c.IsPostgreSQL() {
		dialector = postgres.Open(c.GetDSN())
	} else {
		dialector = sqlite.Open(c.GetDSN())
	}

	var err error
	db, err = gorm.Open(dialector, gc)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbConfig = c

	if c.IsSQLite() {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if _, err := sqlDB.Exec("PRAGMA cache_size = -64000;"); err != nil {
			return err
		}
		if _, err := sqlDB.Exec("PRAGMA temp_store = MEMORY;"); err != nil {
			return err
		}
	}
	return nil
}

// Migrate runs the schema migration only.
func Migrate() error {
	if db == nil {
		return errors.New("database not initialized")
	}
	return initModels()
}

func CloseDB() error {
	if db != nil {
		if dbConfig != nil && dbConfig.IsSQLite() {
			if err := Checkpoint(); err != nil {
				logger.Warningf("error executing checkpoint: %v", err)
			}
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		db = nil
		return sqlDB.Close()
	}
	return nil
}

func GetDB() *gorm.DB {
	return db
}

// IsSQLite reports whether the open database is SQLite.
func IsSQLite() bool {
	return dbConfig != nil && dbConfig.IsSQLite()
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// Ping checks the connection.
func Ping() error {
	if db == nil {
		return errors.New("database not initialized")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Checkpoint flushes the SQLite WAL into the main database file.
func Checkpoint() error {
	if db == nil {
		return errors.New("database not initialized")
	}
	return db.Exec("PRAGMA wal_checkpoint;").Error
}
