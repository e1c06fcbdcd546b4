// Package repository содержит журнал оформлений продаж в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/motosync-terminal/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresRepository хранит журнал оформлений продаж в PostgreSQL.
// Журнал служит только для диагностики и ручной сверки частично оформленных продаж.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error
	delays := []time.Duration{100 * time.Millisecond, 500 * time.Millisecond, 1 * time.Second}

	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if !isRetryable(err) || i == len(delays) {
			break
		}

		timer := time.NewTimer(delays[i])
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}
	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// RecordCheckout сохраняет попытку оформления продажи вместе с результатами по позициям.
func (r *PostgresRepository) RecordCheckout(ctx context.Context, rec model.CheckoutRecord) (int64, error) {
	var id int64
	err := r.withRetry(ctx, func() error {
		var err error
		id, err = r.insertCheckout(ctx, rec)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PostgresRepository) insertCheckout(ctx context.Context, rec model.CheckoutRecord) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO checkouts (started_at, finished_at, loyalty, customer_id, status, points_earned, error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		rec.StartedAt, rec.FinishedAt, rec.Loyalty, rec.Customer, string(rec.Status), rec.PointsEarned, nullIfEmpty(rec.Error),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert checkout: %w", err)
	}

	batch := &pgx.Batch{}
	for i, l := range rec.Lines {
		batch.Queue(
			`INSERT INTO checkout_lines (checkout_id, position, product_id, quantity, total_price, sale_id, error)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, i, l.Product, l.Quantity, l.TotalPrice, l.SaleID, nullIfEmpty(l.Error),
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return 0, fmt.Errorf("insert checkout lines: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	return id, nil
}

// ListCheckouts возвращает последние попытки оформления, начиная с самой новой.
func (r *PostgresRepository) ListCheckouts(ctx context.Context, limit int) ([]model.CheckoutRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, started_at, finished_at, loyalty, customer_id, status, points_earned, COALESCE(error, '')
		 FROM checkouts
		 ORDER BY started_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select checkouts: %w", err)
	}
	defer rows.Close()

	var (
		res   []model.CheckoutRecord
		ids   []int64
		index = make(map[int64]int)
	)
	for rows.Next() {
		var (
			rec    model.CheckoutRecord
			status string
		)
		if err := rows.Scan(&rec.ID, &rec.StartedAt, &rec.FinishedAt, &rec.Loyalty, &rec.Customer, &status, &rec.PointsEarned, &rec.Error); err != nil {
			return nil, fmt.Errorf("scan checkout: %w", err)
		}
		rec.Status = model.CheckoutStatus(status)

		index[rec.ID] = len(res)
		ids = append(ids, rec.ID)
		res = append(res, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if len(ids) == 0 {
		return res, nil
	}

	lineRows, err := r.pool.Query(ctx,
		`SELECT checkout_id, product_id, quantity, total_price::text, sale_id, COALESCE(error, '')
		 FROM checkout_lines
		 WHERE checkout_id = ANY($1)
		 ORDER BY checkout_id, position`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("select checkout lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var (
			checkoutID int64
			total      string
			l          model.CheckoutLine
		)
		if err := lineRows.Scan(&checkoutID, &l.Product, &l.Quantity, &total, &l.SaleID, &l.Error); err != nil {
			return nil, fmt.Errorf("scan checkout line: %w", err)
		}
		l.TotalPrice, err = decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("parse line total: %w", err)
		}

		if i, ok := index[checkoutID]; ok {
			res[i].Lines = append(res[i].Lines, l)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
