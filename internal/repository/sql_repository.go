package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/locvowork/convexhub/apigateway/internal/domain"
)

// PoolConfig sizes the database/sql connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// SQLStore keeps both collections in relational tables. created_at columns
// hold unix milliseconds and are NULL for rows written without one.
type SQLStore struct {
	db      *sqlx.DB
	dialect dialect
}

// OpenSQL connects with the named driver (postgres, mysql or sqlite), checks
// the connection and creates the tables if they do not exist.
func OpenSQL(ctx context.Context, driverName, dsn string, pool PoolConfig) (*SQLStore, error) {
	d, ok := dialects[driverName]
	if !ok {
		return nil, fmt.Errorf("unsupported sql driver %q", driverName)
	}

	db, err := sqlx.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driverName, err)
	}

	if d.singleConn {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(pool.MaxOpenConns)
		db.SetMaxIdleConns(pool.MaxIdleConns)
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	s := &SQLStore{db: db, dialect: d}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, wrap(d.classify, "ping", false, err)
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

// Tasks returns the tasks collection view of the store.
func (s *SQLStore) Tasks() domain.TaskRepository { return sqlTasks{s} }

// ButtonPresses returns the buttonPresses collection view of the store.
func (s *SQLStore) ButtonPresses() domain.ButtonPressRepository { return sqlPresses{s} }

type taskRow struct {
	ID          int64         `db:"id"`
	Text        string        `db:"text"`
	IsCompleted bool          `db:"is_completed"`
	CreatedAt   sql.NullInt64 `db:"created_at"`
}

type pressRow struct {
	ID        int64          `db:"id"`
	PressedAt sql.NullString `db:"pressed_at"`
	CreatedAt sql.NullInt64  `db:"created_at"`
}

func millisToTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}

type sqlTasks struct{ s *SQLStore }

func (r sqlTasks) List(ctx context.Context) ([]domain.Task, error) {
	var rows []taskRow
	err := r.s.db.SelectContext(ctx, &rows, `SELECT id, text, is_completed, created_at FROM tasks ORDER BY id`)
	if err != nil {
		return nil, wrap(r.s.dialect.classify, "tasks.list", false, err)
	}

	tasks := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, domain.Task{
			ID:          strconv.FormatInt(row.ID, 10),
			Text:        row.Text,
			IsCompleted: row.IsCompleted,
			CreatedAt:   millisToTime(row.CreatedAt),
		})
	}
	return tasks, nil
}

type sqlPresses struct{ s *SQLStore }

func (r sqlPresses) Insert(ctx context.Context, pressedAt string) error {
	query := r.s.db.Rebind(`INSERT INTO button_presses (pressed_at) VALUES (?)`)
	_, err := r.s.db.ExecContext(ctx, query, pressedAt)
	return wrap(r.s.dialect.classify, "button_presses.insert", true, err)
}

func (r sqlPresses) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM button_presses`); err != nil {
		return 0, wrap(r.s.dialect.classify, "button_presses.count", false, err)
	}
	return n, nil
}

func (r sqlPresses) Recent(ctx context.Context, limit int) ([]domain.ButtonPress, error) {
	var rows []pressRow
	query := r.s.db.Rebind(`SELECT id, pressed_at, created_at FROM button_presses ORDER BY id DESC LIMIT ?`)
	if err := r.s.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, wrap(r.s.dialect.classify, "button_presses.recent", false, err)
	}

	presses := make([]domain.ButtonPress, 0, len(rows))
	for _, row := range rows {
		p := domain.ButtonPress{
			ID:        strconv.FormatInt(row.ID, 10),
			CreatedAt: millisToTime(row.CreatedAt),
		}
		if row.PressedAt.Valid {
			v := row.PressedAt.String
			p.PressedAt = &v
		}
		presses = append(presses, p)
	}
	return presses, nil
}
