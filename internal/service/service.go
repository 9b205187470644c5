// Package service holds the business rules behind the HTTP handlers.
package service

import (
	"time"

	"inkwell/internal/models"

	"github.com/jonboulle/clockwork"
)

// utcNow reads the service clock in UTC.
func utcNow(clock clockwork.Clock) time.Time { return clock.Now().UTC() }

func pageOf[T any](items []T, q models.PageQuery, total int64) models.Page[T] {
	q = q.Normalize()
	return models.NewPage(items, q.PageNumber, q.PageSize, total)
}

// fieldErrors collects per-field validation failures in request order.
type fieldErrors []models.FieldMessage

func (f *fieldErrors) check(field string, err error) {
	if err != nil {
		*f = append(*f, models.FieldMessage{Field: field, Message: err.Error()})
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return models.NewFieldsValidationError(f)
}
