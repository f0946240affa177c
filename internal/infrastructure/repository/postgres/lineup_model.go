package postgres

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/gridironhq/gridiron/internal/domain/lineup"
)

type lineupTableModel struct {
	UserID      string    `db:"user_id"`
	LeagueID    string    `db:"league_id"`
	Season      int       `db:"season"`
	Week        int       `db:"week"`
	Picks       []byte    `db:"picks"`
	Complete    bool      `db:"complete"`
	TotalPoints *float64  `db:"total_points"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// pickDoc is the JSONB wire shape of one slot pick.
type pickDoc struct {
	EntityID string    `json:"entity_id"`
	Kind     string    `json:"kind"`
	PickedAt time.Time `json:"picked_at"`
}

func encodePicks(picks map[lineup.Slot]lineup.Pick) ([]byte, error) {
	doc := make(map[string]pickDoc, len(picks))
	for slot, pick := range picks {
		doc[string(slot)] = pickDoc{
			EntityID: pick.EntityID,
			Kind:     string(pick.Kind),
			PickedAt: pick.PickedAt,
		}
	}

	raw, err := sonic.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "encode lineup picks")
	}
	return raw, nil
}

func decodePicks(raw []byte) (map[lineup.Slot]lineup.Pick, error) {
	var doc map[string]pickDoc
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "decode lineup picks")
	}

	picks := make(map[lineup.Slot]lineup.Pick, len(doc))
	for slotName, pick := range doc {
		slot, err := lineup.ParseSlot(slotName)
		if err != nil {
			return nil, errors.Wrapf(err, "stored pick slot %q", slotName)
		}
		kind, err := lineup.ParseEntityKind(pick.Kind)
		if err != nil {
			return nil, errors.Wrapf(err, "stored pick kind %q", pick.Kind)
		}
		picks[slot] = lineup.Pick{
			EntityID: pick.EntityID,
			Kind:     kind,
			PickedAt: pick.PickedAt,
		}
	}
	return picks, nil
}

func lineupFromRow(row lineupTableModel) (lineup.WeeklyLineup, error) {
	picks, err := decodePicks(row.Picks)
	if err != nil {
		return lineup.WeeklyLineup{}, err
	}

	return lineup.WeeklyLineup{
		UserID:      row.UserID,
		LeagueID:    row.LeagueID,
		Season:      row.Season,
		Week:        row.Week,
		Picks:       picks,
		Complete:    row.Complete,
		TotalPoints: row.TotalPoints,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}
