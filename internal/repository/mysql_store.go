package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/table-reservation/internal/model"
)

// dbtx is the subset of *sql.DB and *sql.Tx the queries need, so the
// same methods serve both plain reads and transactional work.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqlQueries implements Queries on top of a dbtx.  All timestamps are
// written in UTC; the connection is opened with loc=UTC so that they
// come back the same way.
type sqlQueries struct {
	q dbtx
}

// MySQLStore is the production Store backed by MySQL.
type MySQLStore struct {
	sqlQueries
	db *sql.DB
}

// NewMySQLStore returns a MySQLStore bound to the given database.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{sqlQueries: sqlQueries{q: db}, db: db}
}

// DB exposes the underlying pool, mirroring the other repositories.
func (s *MySQLStore) DB() *sql.DB { return s.db }

// WithTx runs fn inside a READ COMMITTED transaction.  The transaction
// is rolled back on every exit path that did not commit, including a
// panic in fn.
func (s *MySQLStore) WithTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(sqlQueries{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// CreateRestaurant inserts r and fills in its ID.
func (s *MySQLStore) CreateRestaurant(ctx context.Context, r *model.Restaurant) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO restaurants (name, area, latitude, longitude, cuisines, amenities, rating, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, r.Name, r.Area, r.Latitude, r.Longitude,
		nullString(r.Cuisines), nullString(r.Amenities), r.Rating, r.CreatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = uint64(id)
	return nil
}

// CreateTable inserts t and fills in its ID.  Seats defaults to six.
func (s *MySQLStore) CreateTable(ctx context.Context, t *model.Table) error {
	if t.Seats == 0 {
		t.Seats = model.DefaultTableSeats
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO restaurant_tables (restaurant_id, table_no, seats) VALUES (?, ?, ?)`,
		t.RestaurantID, t.TableNo, t.Seats)
	if err != nil {
		return mapDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// CreateUser inserts u and fills in its ID.
func (s *MySQLStore) CreateUser(ctx context.Context, u *model.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, phone, email, created_at) VALUES (?, ?, ?, ?)`,
		nullString(u.Name), u.Phone, nullString(u.Email), u.CreatedAt.UTC())
	if err != nil {
		return mapDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// mapDuplicate turns MySQL error 1062 into ErrDuplicate.
func mapDuplicate(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return fmt.Errorf("%w: %s", ErrDuplicate, me.Message)
	}
	return err
}

// mapNoRows turns sql.ErrNoRows into ErrNotFound.
func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// inClause returns "?,?,?" for n placeholders and the ids as args.
func inClause(ids []uint64) (string, []any) {
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","), args
}

// likeEscaper quotes LIKE wildcards so user input matches literally.
// Queries pair it with ESCAPE '!'.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}
