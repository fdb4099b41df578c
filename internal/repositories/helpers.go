package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(apperr.NotFound, err, what+" not found")
	}
	return errors.Wrapf(err, "get %s", what)
}

func conflict(err error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Wrap(apperr.Conflict, err, msg)
	}
	return err
}

// insertEdge adds a relation row and reports whether it was new. Existing
// rows are left untouched, so repeated adds are no-ops.
func insertEdge(ctx context.Context, db *gorm.DB, edge any) (bool, error) {
	res := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(edge)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func deleteEdge(ctx context.Context, db *gorm.DB, edge any, query string, args ...any) (bool, error) {
	res := db.WithContext(ctx).Where(query, args...).Delete(edge)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// memberIDs returns which of ids have a row in table owned by ownerID. One
// query regardless of len(ids).
func memberIDs(ctx context.Context, db *gorm.DB, table, ownerCol string, ownerID uint, keyCol string, ids []uint) (map[uint]bool, error) {
	set := make(map[uint]bool, len(ids))
	if ownerID == 0 || len(ids) == 0 {
		return set, nil
	}
	var hits []uint
	err := db.WithContext(ctx).
		Table(table).
		Where(ownerCol+" = ? AND "+keyCol+" IN ?", ownerID, ids).
		Pluck(keyCol, &hits).Error
	if err != nil {
		return nil, errors.Wrapf(err, "probe %s", table)
	}
	for _, id := range hits {
		set[id] = true
	}
	return set, nil
}

type groupCount struct {
	ID    uint
	Total int64
}

// countBy aggregates rows of table grouped by keyCol for the given ids.
func countBy(ctx context.Context, db *gorm.DB, table, keyCol string, ids []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []groupCount
	err := db.WithContext(ctx).
		Table(table).
		Select(keyCol+" AS id, COUNT(*) AS total").
		Where(keyCol+" IN ?", ids).
		Group(keyCol).
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrapf(err, "count %s", table)
	}
	for _, row := range rows {
		counts[row.ID] = row.Total
	}
	return counts, nil
}
