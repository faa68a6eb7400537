package kvcodec

import (
	"bytes"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/soccer-rotation/internal/domain/player"
	"github.com/valyala/bytebufferpool"
)

// DefaultRosterKey names the slot the roster array is stored under.
const DefaultRosterKey = "soccerPlayers"

// EncodeRoster renders players as the stored JSON array
// [{"id","name","isAvailable"}, ...].
func EncodeRoster(players []player.Player) ([]byte, error) {
	if players == nil {
		players = []player.Player{}
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigStd.NewEncoder(buf).Encode(players); err != nil {
		return nil, crerr.Wrap(err, "encode roster")
	}

	raw := bytes.TrimRight(buf.B, "\n")
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// DecodeRoster parses a stored roster. An empty slot decodes to no players.
func DecodeRoster(raw []byte) ([]player.Player, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	var out []player.Player
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, crerr.Wrap(err, "decode roster")
	}
	if err := player.ValidateRoster(out); err != nil {
		return nil, crerr.Wrap(err, "stored roster is invalid")
	}
	return out, nil
}
