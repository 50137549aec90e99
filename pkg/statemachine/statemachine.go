// Package statemachine declares the legal status transitions for every
// mutable entity and enforces them before any status write.
package statemachine

import (
	"github.com/Gobusters/ectolinq"

	"github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
)

type machine struct {
	initial     string
	transitions map[string][]string
	terminal    []string
}

// machines holds one transition table per mutable entity kind. Append-only
// kinds (lifecycle events, temperature logs) have no entry: they expose no
// transitions at all.
var machines = map[models.EntityKind]machine{
	models.EntityKindBatch: {
		initial: string(models.BatchStatusCreated),
		transitions: map[string][]string{
			string(models.BatchStatusCreated):    {string(models.BatchStatusInProgress), string(models.BatchStatusCancelled)},
			string(models.BatchStatusInProgress): {string(models.BatchStatusCompleted), string(models.BatchStatusFailed)},
			string(models.BatchStatusFailed):     {string(models.BatchStatusInProgress)},
		},
		terminal: []string{string(models.BatchStatusCompleted), string(models.BatchStatusCancelled)},
	},
	models.EntityKindTransport: {
		initial: string(models.TransportStatusCreated),
		transitions: map[string][]string{
			string(models.TransportStatusCreated):   {string(models.TransportStatusInTransit)},
			string(models.TransportStatusInTransit): {string(models.TransportStatusCompleted)},
		},
		terminal: []string{string(models.TransportStatusCompleted)},
	},
	models.EntityKindCertification: {
		initial: string(models.CertificationStatusPending),
		transitions: map[string][]string{
			string(models.CertificationStatusPending): {string(models.CertificationStatusApproved), string(models.CertificationStatusRejected)},
		},
		terminal: []string{string(models.CertificationStatusApproved), string(models.CertificationStatusRejected)},
	},
	models.EntityKindRegulatoryRecord: {
		initial: string(models.RegulatoryStatusPending),
		transitions: map[string][]string{
			string(models.RegulatoryStatusPending): {string(models.RegulatoryStatusApproved), string(models.RegulatoryStatusRejected)},
		},
		terminal: []string{string(models.RegulatoryStatusApproved), string(models.RegulatoryStatusRejected)},
	},
}

// Validate rejects any transition not declared for the kind. The error
// carries the offending pair so callers can surface it unchanged.
func Validate(kind models.EntityKind, from, to string) error {
	m, ok := machines[kind]
	if !ok {
		return errors.NewInvalidInputf("%s records do not support status transitions", kind)
	}

	targets, ok := m.transitions[from]
	if !ok || !ectolinq.Contains(targets, to) {
		return errors.NewInvalidTransition(from, to)
	}

	return nil
}

// HasMachine reports whether the kind is mutable (has a transition table).
func HasMachine(kind models.EntityKind) bool {
	_, ok := machines[kind]
	return ok
}

// Initial returns the kind's starting status.
func Initial(kind models.EntityKind) string {
	return machines[kind].initial
}

// IsTerminal reports whether the status accepts no further transitions.
func IsTerminal(kind models.EntityKind, status string) bool {
	m, ok := machines[kind]
	if !ok {
		return false
	}
	return ectolinq.Contains(m.terminal, status)
}

// AllowedTargets returns the declared targets from the given status, in
// declaration order. The copy keeps callers from mutating the table.
func AllowedTargets(kind models.EntityKind, from string) []string {
	m, ok := machines[kind]
	if !ok {
		return nil
	}

	targets := m.transitions[from]
	out := make([]string, len(targets))
	copy(out, targets)
	return out
}
