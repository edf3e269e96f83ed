package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSupplier(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		supName  string
		wantErr  bool
	}{
		{name: "valid supplier", code: "sup-001", supName: "Acme Industrial", wantErr: false},
		{name: "empty code", code: "", supName: "Acme Industrial", wantErr: true},
		{name: "empty name", code: "SUP-001", supName: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			supplier, err := NewSupplier(tt.code, tt.supName)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "SUP-001", supplier.Code)
			assert.Equal(t, SupplierStatusActive, supplier.Status)
			assert.Len(t, supplier.GetDomainEvents(), 1)
		})
	}
}

func TestSupplier_DeactivateActivate(t *testing.T) {
	supplier, err := NewSupplier("SUP-001", "Acme Industrial")
	require.NoError(t, err)

	require.NoError(t, supplier.Deactivate())
	assert.False(t, supplier.IsActive())
	assert.Error(t, supplier.Deactivate())

	require.NoError(t, supplier.Activate())
	assert.True(t, supplier.IsActive())
}
