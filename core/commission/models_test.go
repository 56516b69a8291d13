package commission

import (
	"testing"

	"github.com/acadio/practia/core"
)

func TestNewCommissionValidate(t *testing.T) {
	tests := []struct {
		name      string
		nc        NewCommission
		wantField string
	}{
		{name: "valid", nc: NewCommission{Year: 2026, Period: 1, MatterID: 1}},
		{name: "missing matter", nc: NewCommission{Year: 2026, Period: 1}, wantField: "matter_id"},
		{name: "bad period", nc: NewCommission{Year: 2026, Period: 4, MatterID: 1}, wantField: "period"},
		{name: "year too small", nc: NewCommission{Year: 1999, Period: 2, MatterID: 1}, wantField: "year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nc.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			vErr, ok := err.(*core.ValidationError)
			if !ok {
				t.Fatalf("Validate() error = %v, want *core.ValidationError", err)
			}
			if !hasFieldError(vErr, tt.wantField) {
				t.Errorf("Validate() fields = %v, want error on %q", vErr.Fields, tt.wantField)
			}
		})
	}
}

func TestUpdateCommissionValidate(t *testing.T) {
	// zero values mean "keep stored"; only provided values are checked
	if err := (&UpdateCommission{}).Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
	if err := (&UpdateCommission{Year: 1990}).Validate(); err == nil {
		t.Error("Validate() error = nil, want year error")
	}
	if err := (&UpdateCommission{Year: 2027, Period: 3}).Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func hasFieldError(vErr *core.ValidationError, field string) bool {
	for _, fe := range vErr.Fields {
		if fe.Field == field {
			return true
		}
	}
	return false
}
