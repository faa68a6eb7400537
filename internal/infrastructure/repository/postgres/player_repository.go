package postgres

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/soccer-rotation/internal/domain/player"
	"github.com/riskibarqy/soccer-rotation/internal/infrastructure/repository/kvcodec"
	qb "github.com/riskibarqy/soccer-rotation/internal/platform/querybuilder"
	"github.com/riskibarqy/soccer-rotation/internal/platform/resilience"
	"github.com/riskibarqy/soccer-rotation/internal/usecase"
)

// PlayerRepository stores the roster JSON array in one row of kv_slots so
// several service instances can share it.
type PlayerRepository struct {
	db      *sqlx.DB
	key     string
	breaker *resilience.CircuitBreaker
	now     func() time.Time
}

func NewPlayerRepository(db *sqlx.DB, key string, breaker *resilience.CircuitBreaker) *PlayerRepository {
	if key == "" {
		key = kvcodec.DefaultRosterKey
	}
	return &PlayerRepository{
		db:      db,
		key:     key,
		breaker: breaker,
		now:     time.Now,
	}
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	query, args, err := qb.Select("value::text AS value").From(kvSlotsTable).
		Where(qb.Eq("key", r.key)).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build select roster slot query")
	}

	var raw string
	err = r.exec(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &raw, query, args...)
	})
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable(crerr.Wrapf(err, "select roster slot %q", r.key))
	}

	return kvcodec.DecodeRoster([]byte(raw))
}

func (r *PlayerRepository) SaveAll(ctx context.Context, players []player.Player) error {
	if err := player.ValidateRoster(players); err != nil {
		return err
	}

	data, err := kvcodec.EncodeRoster(players)
	if err != nil {
		return err
	}

	query, args, err := qb.UpsertModel(kvSlotsTable, "key", kvSlotTableModel{
		Key:       r.key,
		Value:     string(data),
		UpdatedAt: r.now().UTC(),
	})
	if err != nil {
		return crerr.Wrap(err, "build upsert roster slot query")
	}

	err = r.exec(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return unavailable(crerr.Wrapf(err, "upsert roster slot %q", r.key))
	}

	return nil
}

// exec runs fn behind the breaker and retries once when a pooler lost the
// prepared statement. A missing row is not a dependency failure.
func (r *PlayerRepository) exec(ctx context.Context, fn func(context.Context) error) error {
	run := func(ctx context.Context) error {
		err := fn(ctx)
		if isRetryableStatementError(err) {
			err = fn(ctx)
		}
		return err
	}

	var notFound error
	err := r.breaker.Execute(ctx, func(ctx context.Context) error {
		err := run(ctx)
		if isNotFound(err) {
			notFound = err
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	return notFound
}

// unavailable marks a driver or breaker failure so callers can tell an
// unreachable store from a bad request.
func unavailable(err error) error {
	return fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, err)
}
