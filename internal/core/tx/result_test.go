package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultCategories(t *testing.T) {
	tests := []struct {
		r       Result
		name    string
		tec     bool
		tem     bool
		tef     bool
		applied bool
	}{
		{TesSUCCESS, "tesSUCCESS", false, false, false, true},
		{TecINSUFFICIENT_PAYMENT, "tecINSUFFICIENT_PAYMENT", true, false, false, true},
		{TecPRECISION_LOSS, "tecPRECISION_LOSS", true, false, false, true},
		{TecWRONG_ASSET, "tecWRONG_ASSET", true, false, false, true},
		{TemINVALID_FLAG, "temINVALID_FLAG", false, true, false, false},
		{TefBAD_LEDGER, "tefBAD_LEDGER", false, false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.r.String())
			assert.Equal(t, tt.tec, tt.r.IsTec())
			assert.Equal(t, tt.tem, tt.r.IsTem())
			assert.Equal(t, tt.tef, tt.r.IsTef())
			assert.Equal(t, tt.applied, tt.r.IsApplied())

			parsed, ok := ParseResult(tt.name)
			assert.True(t, ok)
			assert.Equal(t, tt.r, parsed)
		})
	}

	assert.Equal(t, "Unknown(12345)", Result(12345).String())
}
