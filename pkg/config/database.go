package config

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connections
type DB struct {
	Postgres *gorm.DB
	Mongo    *mongo.Client
}

// MongoDatabase returns the named database, or nil when Mongo is not
// configured.
func (db *DB) MongoDatabase(name string) *mongo.Database {
	if db.Mongo == nil {
		return nil
	}
	return db.Mongo.Database(name)
}

// InitDB opens PostgreSQL, and MongoDB when MONGO_URI is set.
func InitDB(ctx context.Context, cfg *Config) (*DB, error) {
	if cfg.PostgresConnStr == "" {
		return nil, errors.New("POSTGRES_CONN_STR environment variable not set")
	}

	postgresDB, err := initPostgres(cfg.PostgresConnStr, cfg.IsProduction())
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to PostgreSQL")
	}
	db := &DB{Postgres: postgresDB}

	if cfg.MongoURI == "" {
		log.Info("MONGO_URI not set, MongoDB disabled")
		return db, nil
	}
	db.Mongo, err = initMongo(ctx, cfg.MongoURI)
	if err != nil {
		db.CloseDB()
		return nil, errors.Wrap(err, "failed to connect to MongoDB")
	}
	return db, nil
}

// initPostgres initializes the PostgreSQL database connection using GORM
func initPostgres(connStr string, quiet bool) (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}
	if quiet {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(postgres.Open(connStr), cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}

	log.Info("Successfully connected to PostgreSQL!")
	return db, nil
}

// initMongo initializes the MongoDB connection
func initMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info("Successfully connected to MongoDB!")
	return client, nil
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.Postgres != nil {
		sqlDB, err := db.Postgres.DB()
		if err != nil {
			log.Errorf("Error getting SQL DB from GORM: %v", err)
		} else if err := sqlDB.Close(); err != nil {
			log.Errorf("Error closing PostgreSQL connection: %v", err)
		} else {
			log.Info("PostgreSQL connection closed.")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			log.Errorf("Error closing MongoDB connection: %v", err)
		} else {
			log.Info("MongoDB connection closed.")
		}
	}
}
