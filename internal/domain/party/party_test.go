package party_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MustafaBasol/crm-sub007/internal/domain/apperr"
	"github.com/MustafaBasol/crm-sub007/internal/domain/party"
)

func ptr[T any](v T) *T { return &v }

func TestName(t *testing.T) {
	name, err := party.Name("  Ada Lovelace ")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", name)

	_, err = party.Name("   ")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = party.Name(strings.Repeat("x", party.MaxNameLength+1))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDetails_NormalizeAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      party.Details
		want    party.Details
		wantErr bool
	}{
		{name: "empty", in: party.Details{}, want: party.Details{}},
		{
			name: "trims and blanks to nil",
			in:   party.Details{Email: ptr(" ada@example.com "), Phone: ptr("  "), Company: ptr(" Acme ")},
			want: party.Details{Email: ptr("ada@example.com"), Company: ptr("Acme")},
		},
		{name: "bad email", in: party.Details{Email: ptr("not-an-email")}, wantErr: true},
		{name: "long phone", in: party.Details{Phone: ptr(strings.Repeat("1", 65))}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.in
			d.Normalize()
			err := d.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestPatch_Apply(t *testing.T) {
	d := party.Details{Email: ptr("old@example.com"), Phone: ptr("555"), Company: ptr("Acme")}

	p := party.Patch{Email: ptr("new@example.com"), Phone: ptr("")}
	require.NoError(t, p.Validate())
	p.Apply(&d)

	assert.Equal(t, ptr("new@example.com"), d.Email)
	assert.Nil(t, d.Phone, "blank clears")
	assert.Equal(t, ptr("Acme"), d.Company, "absent keeps")

	assert.ErrorIs(t, party.Patch{Email: ptr("nope")}.Validate(), apperr.ErrValidation)
}
