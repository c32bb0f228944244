package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Registers the "mysql" driver.
	_ "github.com/go-sql-driver/mysql"

	"github.com/malusev998/currency-converter"
)

const MySQLTimeFormat = "2006-01-02 15:04:05"

type sqlStorage struct {
	ctx       context.Context
	db        *sql.DB
	tableName string
}

func NewMySQLStorage(config MySQLConfig) (currency.Storage, error) {
	db, err := sql.Open("mysql", config.ConnectionString)

	if err != nil {
		return nil, err
	}

	return NewSQLStorage(baseContext(config.BaseConfig), db, config.TableName, config.Migrate)
}

// NewSQLStorage wraps an open database handle. The table holds one row per
// preference key.
func NewSQLStorage(ctx context.Context, db *sql.DB, tableName string, migrate bool) (currency.Storage, error) {
	if tableName == "" {
		tableName = "preferences"
	}

	storage := sqlStorage{
		ctx:       ctx,
		db:        db,
		tableName: tableName,
	}

	if migrate {
		if err := storage.Migrate(); err != nil {
			return nil, err
		}
	}

	return storage, nil
}

func (s sqlStorage) Get(ctx context.Context, key string) (string, error) {
	var value string

	row := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT value FROM %s WHERE name = ? LIMIT 1;", s.tableName), key)

	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", currency.ErrPreferenceNotFound
		}

		return "", err
	}

	return value, nil
}

func (s sqlStorage) Set(ctx context.Context, key, value string) error {
	tx, err := s.db.BeginTx(ctx, nil)

	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s(name, value, updated_at) VALUES (?,?,?) ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at);",
		s.tableName,
	))

	if err != nil {
		_ = tx.Rollback()
		return err
	}

	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, key, value, time.Now().UTC().Format(MySQLTimeFormat)); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (s sqlStorage) GetStorageProviderName() string {
	return string(MySQL)
}

func (s sqlStorage) Migrate() error {
	_, err := s.db.ExecContext(s.ctx, fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s(name VARCHAR(255) NOT NULL PRIMARY KEY, value VARCHAR(255) NOT NULL, updated_at DATETIME NOT NULL);",
		s.tableName,
	))

	return err
}

func (s sqlStorage) Drop() error {
	_, err := s.db.ExecContext(s.ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s;", s.tableName))

	return err
}

func (s sqlStorage) Close() error {
	return s.db.Close()
}
