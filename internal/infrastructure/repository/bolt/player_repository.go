package bolt

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/soccer-rotation/internal/domain/player"
	"github.com/riskibarqy/soccer-rotation/internal/infrastructure/repository/kvcodec"
	bolt "go.etcd.io/bbolt"
)

const bucketSlots = "slots"

// PlayerRepository keeps the roster as one JSON value in an embedded bbolt
// file.
type PlayerRepository struct {
	db  *bolt.DB
	key []byte
}

func Open(path string, timeout time.Duration) (*bolt.DB, error) {
	if timeout <= 0 {
		timeout = time.Second
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, crerr.Wrapf(err, "open bolt database %q", path)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketSlots)); err != nil {
			return crerr.Wrap(err, "create slots bucket")
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func NewPlayerRepository(db *bolt.DB, key string) *PlayerRepository {
	if key == "" {
		key = kvcodec.DefaultRosterKey
	}
	return &PlayerRepository{db: db, key: []byte(key)}
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []player.Player
	err := r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSlots))
		if b == nil {
			return crerr.Newf("bucket %q is missing", bucketSlots)
		}

		// Bytes returned by Get are only valid inside the transaction.
		players, err := kvcodec.DecodeRoster(b.Get(r.key))
		if err != nil {
			return err
		}
		out = players
		return nil
	})
	if err != nil {
		return nil, crerr.Wrapf(err, "read roster slot %q", r.key)
	}

	return out, nil
}

func (r *PlayerRepository) SaveAll(ctx context.Context, players []player.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := player.ValidateRoster(players); err != nil {
		return err
	}

	data, err := kvcodec.EncodeRoster(players)
	if err != nil {
		return err
	}

	err = r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSlots))
		if b == nil {
			return crerr.Newf("bucket %q is missing", bucketSlots)
		}
		return b.Put(r.key, data)
	})
	if err != nil {
		return crerr.Wrapf(err, "write roster slot %q", r.key)
	}

	return nil
}
