package services

import (
	"bytes"
	"encoding/json"
)

// WriteMode selects how an input is applied to a stored record.
type WriteMode int

const (
	// ModeCreate requires every required field and fills defaults.
	ModeCreate WriteMode = iota
	// ModeReplace requires every required field; absent optional fields keep their value.
	ModeReplace
	// ModePatch applies present fields only.
	ModePatch
)

func (mode WriteMode) requiresAll() bool {
	return mode != ModePatch
}

// Nullable tells an absent JSON field apart from an explicit null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func Some[T any](value T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &value}
}

func (field *Nullable[T]) UnmarshalJSON(data []byte) error {
	field.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		field.Value = nil
		return nil
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	field.Value = &value
	return nil
}

type ColorInput struct {
	Name  *string
	Red   *int
	Green *int
	Blue  *int
}

type MedicationInput struct {
	Name                  *string
	Image                 *string
	ColorID               Nullable[uint]
	Dosage                *int
	Unit                  *string
	Frequency             *int
	FrequencyTimeInterval *string
}

type ReminderInput struct {
	MedicationID   *uint
	Time           *string
	RepeatInterval *int
	RepeatDays     Nullable[[]string]
	SpecificDate   Nullable[string]
	StartsOn       Nullable[string]
	EndsOn         Nullable[string]
	Active         *bool
	SnoozeDuration *int
}
