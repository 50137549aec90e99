// Package validation holds the pure domain validation rules. Every function
// is deterministic over its inputs: no I/O, no clock reads, no randomness,
// so replaying the audit trail yields identical outcomes.
package validation

import (
	"strings"

	"github.com/Gobusters/ectolinq"

	"github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
)

// Safe cold-chain range in degrees Celsius. Bounds are inclusive-safe: a
// reading of exactly 2.0 or 8.0 is not a violation.
const (
	TemperatureMinSafe = 2.0
	TemperatureMaxSafe = 8.0
)

// NonEmptyString rejects blank identifiers and free-text fields.
func NonEmptyString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewInvalidInputf("%s cannot be empty", field).AddField(field)
	}
	return nil
}

// PositiveInt rejects zero and negative quantities.
func PositiveInt(value int, field string) error {
	if value <= 0 {
		return errors.NewInvalidInputf("%s must be positive, got %d", field, value).AddField(field)
	}
	return nil
}

// PositiveFloat rejects zero and negative amounts.
func PositiveFloat(value float64, field string) error {
	if value <= 0 {
		return errors.NewInvalidInputf("%s must be positive, got %f", field, value).AddField(field)
	}
	return nil
}

// ScoreInRange rejects quality scores outside 0-100.
func ScoreInRange(value int, field string) error {
	if value < 0 || value > 100 {
		return errors.NewInvalidInputf("%s must be between 0 and 100, got %d", field, value).AddField(field)
	}
	return nil
}

// LifecycleEventType rejects event types outside the closed enumeration.
func LifecycleEventType(eventType models.LifecycleEventType) error {
	if !ectolinq.Contains(models.LifecycleEventTypes, eventType) {
		return errors.NewInvalidInputf("unknown lifecycle event type %q", eventType).AddField("event_type")
	}
	return nil
}

// RequireRef fails with NotFound when a referenced-entity snapshot supplied
// by the caller is absent.
func RequireRef[T any](ref *T, entity, id string) error {
	if ref == nil {
		return errors.NewNotFound(entity, id)
	}
	return nil
}

// IsTemperatureViolation derives the violation fact for a reading. A
// violation is recorded, never rejected.
func IsTemperatureViolation(reading float64) bool {
	return reading < TemperatureMinSafe || reading > TemperatureMaxSafe
}
