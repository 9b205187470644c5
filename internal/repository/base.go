package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inkwell/internal/database"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/reaction"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrVersionConflict reports that a reaction write lost an optimistic race.
var ErrVersionConflict = errors.New("reaction state changed concurrently")

func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil && db != database.DB {
		return db
	}
	return primary
}

// sortColumns maps wire sort fields onto columns for one resource.
type sortColumns map[string]string

// paginate applies a whitelisted ORDER BY plus LIMIT/OFFSET. Unknown fields sort by created_at.
func paginate(db *gorm.DB, q models.PageQuery, columns sortColumns) *gorm.DB {
	q = q.Normalize()
	column, ok := columns[q.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if q.SortDirection == "asc" {
		direction = "ASC"
	}
	return db.Order(fmt.Sprintf("%s %s", column, direction)).
		Order("id " + direction).
		Limit(q.PageSize).
		Offset(q.Offset())
}

// likeTerm builds a case-insensitive substring pattern. Empty terms match everything.
func likeTerm(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// reactedBy narrows a query to rows whose reaction ledger holds a record for userID.
func reactedBy(db *gorm.DB, userID uint) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Where("reactions @> ?::jsonb", fmt.Sprintf(`[{"userId":%d}]`, userID))
	}
	return db.Where("reactions LIKE ?", fmt.Sprintf(`%%"userId":%d,%%`, userID))
}

// saveReactions writes the ledger and totals of one target and bumps its version.
// With checkVersion the write only lands when the stored version still equals *version.
func saveReactions(ctx context.Context, db *gorm.DB, table string, model any, id uint, state *reaction.State, version *int64, checkVersion bool) error {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "SaveReactions", table)
	defer span.End()

	q := db.WithContext(ctx).Model(model).Where("id = ?", id)
	if checkVersion {
		q = q.Where("version = ?", *version)
	}
	res := q.UpdateColumns(map[string]any{
		"reactions":      state.Ledger,
		"likes_count":    state.Aggregate.Likes,
		"dislikes_count": state.Aggregate.Dislikes,
		"version":        gorm.Expr("version + 1"),
	})
	if res.Error != nil {
		span.RecordError(res.Error)
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		if checkVersion {
			return ErrVersionConflict
		}
		return models.NewNotFoundError("Reaction target", id)
	}
	*version++
	return nil
}

// ledgerRow is a reactable model whose reaction columns can be rewritten in place.
type ledgerRow[T any] interface {
	*T
	reaction.Reactable
	ReactionRow() (id uint, version int64)
}

// setLedgerBans flips IsBanned on userID's records in every ledger of model's table.
// Totals are left untouched. Each rewrite bumps the row version and only lands
// when the version still matches the one read, otherwise ErrVersionConflict.
func setLedgerBans[T any, P ledgerRow[T]](ctx context.Context, tx *gorm.DB, userID uint, banned bool) (int, error) {
	q := reactedBy(tx.WithContext(ctx).Model(new(T)), userID)
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var rows []T
	if err := q.Find(&rows).Error; err != nil {
		return 0, err
	}
	touched := 0
	for i := range rows {
		target := P(&rows[i])
		state := target.ReactionState()
		if !state.Ledger.SetBanned(userID, banned) {
			continue
		}
		id, version := target.ReactionRow()
		res := tx.WithContext(ctx).Model(new(T)).
			Where("id = ? AND version = ?", id, version).
			UpdateColumns(map[string]any{
				"reactions": state.Ledger,
				"version":   gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return touched, res.Error
		}
		if res.RowsAffected == 0 {
			return touched, ErrVersionConflict
		}
		touched++
	}
	return touched, nil
}
