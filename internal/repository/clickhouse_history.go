package repository

import (
	"context"
	"fmt"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	"FinCast/pkg/clickhouse"
	"FinCast/pkg/logger"
)

const (
	createDatabaseStmt = `CREATE DATABASE IF NOT EXISTS fincast`

	createObservationsStmt = `
		CREATE TABLE IF NOT EXISTS fincast.observations (
			symbol LowCardinality(String),
			price Float64,
			volume Int64,
			ts DateTime64(3)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(ts)
		ORDER BY (symbol, ts)
		TTL toDateTime(ts) + INTERVAL 90 DAY`

	insertObservationStmt = `
		INSERT INTO fincast.observations (symbol, price, volume, ts)
		VALUES (?, ?, ?, ?)`

	selectRecentStmt = `
		SELECT symbol, price, volume, ts
		FROM fincast.observations
		WHERE symbol = ?
		ORDER BY ts DESC
		LIMIT ?`
)

// ClickHouseHistory persists observations in ClickHouse.
type ClickHouseHistory struct {
	client *clickhouse.Client
	logger *logger.Logger
}

// NewClickHouseHistory creates a ClickHouse-backed history store.
func NewClickHouseHistory(client *clickhouse.Client, log *logger.Logger) *ClickHouseHistory {
	return &ClickHouseHistory{
		client: client,
		logger: log,
	}
}

// Init creates the database and observation table if missing.
func (r *ClickHouseHistory) Init(ctx context.Context) error {
	stmts := []string{createDatabaseStmt, createObservationsStmt}
	if err := r.client.InitSchema(ctx, stmts); err != nil {
		return fmt.Errorf("init history schema: %w", err)
	}
	r.logger.Info("clickhouse history schema ready")
	return nil
}

func (r *ClickHouseHistory) Store(ctx context.Context, o *models.Observation) error {
	_, err := r.client.DB().ExecContext(ctx, insertObservationStmt,
		o.Symbol, o.Price, o.Volume, o.Timestamp)
	if err != nil {
		return fmt.Errorf("store observation: %w", err)
	}
	return nil
}

func (r *ClickHouseHistory) StoreBatch(ctx context.Context, obs []*models.Observation) error {
	if len(obs) == 0 {
		return nil
	}

	tx, err := r.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertObservationStmt)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	for _, o := range obs {
		if _, err := stmt.ExecContext(ctx, o.Symbol, o.Price, o.Volume, o.Timestamp); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append batch row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// FetchRecent returns up to limit observations for a symbol in ascending
// timestamp order. An empty result is not an error.
func (r *ClickHouseHistory) FetchRecent(ctx context.Context, symbol string, limit int) ([]models.Observation, error) {
	rows, err := r.client.DB().QueryContext(ctx, selectRecentStmt, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch recent observations: %w", err)
	}
	defer rows.Close()

	var obs []models.Observation
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.Symbol, &o.Price, &o.Volume, &o.Timestamp); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}

	// Query is newest-first so LIMIT keeps the latest window; callers
	// expect ascending order.
	for i, j := 0, len(obs)-1; i < j; i, j = i+1, j-1 {
		obs[i], obs[j] = obs[j], obs[i]
	}
	return obs, nil
}

func (r *ClickHouseHistory) Health(ctx context.Context) error {
	return r.client.Health(ctx)
}

func (r *ClickHouseHistory) Close() error {
	return r.client.Close()
}

var _ drepo.HistoryStore = (*ClickHouseHistory)(nil)
