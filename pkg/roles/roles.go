// Package roles declares the closed set of actor roles and the capability
// table gating every mutating operation. Reads are open to any
// authenticated actor; writes require the capability listed here.
package roles

import (
	"context"
	"strings"

	"github.com/Gobusters/ectolinq"

	cloverContext "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/errors"
)

type Role string

const (
	RoleFarmer      Role = "farmer"
	RoleTransporter Role = "transporter"
	RoleProcessor   Role = "processor"
	RoleRegulator   Role = "regulator"
	RoleAdmin       Role = "admin"
)

// Roles lists every recognized role.
var Roles = []Role{
	RoleFarmer,
	RoleTransporter,
	RoleProcessor,
	RoleRegulator,
	RoleAdmin,
}

type Capability string

const (
	CapManageProducts        Capability = "manage_products"
	CapCreateBatch           Capability = "create_batches"
	CapUpdateBatchStatus     Capability = "update_batch_status"
	CapRecordLifecycleEvent  Capability = "record_lifecycle_events"
	CapCreateTransport       Capability = "create_transports"
	CapUpdateTransportStatus Capability = "update_transport_status"
	CapRecordTemperature     Capability = "record_temperature_logs"
	CapRecordProcessing      Capability = "record_processing"
	CapManageCertifications  Capability = "manage_certifications"
	CapManageRegulatory      Capability = "manage_regulatory_records"
	CapManageSync            Capability = "manage_ledger_sync"
)

// grants maps each capability to the roles that hold it. Admin is absent on
// purpose: it passes every check.
var grants = map[Capability][]Role{
	CapManageProducts:        {RoleRegulator},
	CapCreateBatch:           {RoleFarmer},
	CapUpdateBatchStatus:     {RoleFarmer},
	CapRecordLifecycleEvent:  {RoleFarmer},
	CapCreateTransport:       {RoleFarmer},
	CapUpdateTransportStatus: {RoleTransporter},
	CapRecordTemperature:     {RoleTransporter},
	CapRecordProcessing:      {RoleProcessor},
	CapManageCertifications:  {RoleRegulator},
	CapManageRegulatory:      {RoleRegulator},
	CapManageSync:            {RoleAdmin},
}

// Parse normalizes a role claim to a known Role.
func Parse(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if !ectolinq.Contains(Roles, role) {
		return "", false
	}
	return role, true
}

// Allowed reports whether the role holds the capability.
func Allowed(role Role, capability Capability) bool {
	if role == RoleAdmin {
		return true
	}
	return ectolinq.Contains(grants[capability], role)
}

// Require checks the actor role on the context against the capability and
// returns an unauthorized domain error when it is missing or insufficient.
func Require(ctx context.Context, capability Capability) error {
	value := cloverContext.GetActorRole(ctx)
	if value == "" {
		return errors.NewUnauthorized("missing actor role")
	}

	role, ok := Parse(value)
	if !ok {
		return errors.NewUnauthorized("unknown actor role " + value)
	}

	if !Allowed(role, capability) {
		return errors.NewUnauthorized("role " + string(role) + " cannot " + strings.ReplaceAll(string(capability), "_", " "))
	}

	return nil
}
