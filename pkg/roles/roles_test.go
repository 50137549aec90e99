package roles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	cloverContext "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected Role
		ok       bool
	}{
		{name: "exact match", value: "farmer", expected: RoleFarmer, ok: true},
		{name: "mixed case", value: "Regulator", expected: RoleRegulator, ok: true},
		{name: "padded", value: "  admin  ", expected: RoleAdmin, ok: true},
		{name: "unknown", value: "auditor", ok: false},
		{name: "empty", value: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, ok := Parse(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, role)
			}
		})
	}
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		name       string
		role       Role
		capability Capability
		expected   bool
	}{
		{name: "farmer creates batches", role: RoleFarmer, capability: CapCreateBatch, expected: true},
		{name: "farmer cannot manage products", role: RoleFarmer, capability: CapManageProducts, expected: false},
		{name: "regulator manages products", role: RoleRegulator, capability: CapManageProducts, expected: true},
		{name: "regulator cannot create batches", role: RoleRegulator, capability: CapCreateBatch, expected: false},
		{name: "transporter updates transport status", role: RoleTransporter, capability: CapUpdateTransportStatus, expected: true},
		{name: "transporter cannot record processing", role: RoleTransporter, capability: CapRecordProcessing, expected: false},
		{name: "processor records processing", role: RoleProcessor, capability: CapRecordProcessing, expected: true},
		{name: "regulator cannot manage sync", role: RoleRegulator, capability: CapManageSync, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Allowed(tt.role, tt.capability))
		})
	}
}

func TestAllowedAdminPassesEverything(t *testing.T) {
	for capability := range grants {
		assert.True(t, Allowed(RoleAdmin, capability), "admin should hold %s", capability)
	}
}

func TestRequire(t *testing.T) {
	t.Run("allows permitted role", func(t *testing.T) {
		ctx := cloverContext.SetActorRole(context.Background(), "farmer")
		assert.NoError(t, Require(ctx, CapCreateBatch))
	})

	t.Run("rejects missing role", func(t *testing.T) {
		err := Require(context.Background(), CapCreateBatch)
		assert.Error(t, err)
		assert.True(t, errors.IsUnauthorized(err))
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		ctx := cloverContext.SetActorRole(context.Background(), "auditor")
		err := Require(ctx, CapCreateBatch)
		assert.Error(t, err)
		assert.True(t, errors.IsUnauthorized(err))
	})

	t.Run("rejects insufficient role", func(t *testing.T) {
		ctx := cloverContext.SetActorRole(context.Background(), "farmer")
		err := Require(ctx, CapManageProducts)
		assert.Error(t, err)
		assert.True(t, errors.IsUnauthorized(err))
	})

	t.Run("admin passes any capability", func(t *testing.T) {
		ctx := cloverContext.SetActorRole(context.Background(), "admin")
		assert.NoError(t, Require(ctx, CapManageSync))
		assert.NoError(t, Require(ctx, CapCreateBatch))
	})
}
