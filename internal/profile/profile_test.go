package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateOrdering(t *testing.T) {
	tests := []struct {
		name     string
		profile  Profile
		complete bool
		missing  []Field
	}{
		{
			name:     "empty profile misses everything in required order",
			profile:  Profile{},
			complete: false,
			missing:  []Field{FieldName, FieldEmail, FieldPhone, FieldAddress},
		},
		{
			name: "missing order follows required order not insertion order",
			profile: Profile{
				FieldAddress: "12 Elm St",
				FieldName:    "Jane Doe",
			},
			complete: false,
			missing:  []Field{FieldEmail, FieldPhone},
		},
		{
			name: "empty string counts as missing",
			profile: Profile{
				FieldName:    "Jane Doe",
				FieldEmail:   "",
				FieldPhone:   "555-123-4567",
				FieldAddress: "12 Elm St",
			},
			complete: false,
			missing:  []Field{FieldEmail},
		},
		{
			name: "complete profile",
			profile: Profile{
				FieldName:    "Jane Doe",
				FieldEmail:   "jane@x.com",
				FieldPhone:   "555-123-4567",
				FieldAddress: "12 Elm St",
			},
			complete: true,
		},
		{
			name: "password and user_id do not affect completeness",
			profile: Profile{
				FieldPassword: "Secret123!",
				FieldUserID:   "user_1a2b3c4d",
			},
			complete: false,
			missing:  []Field{FieldName, FieldEmail, FieldPhone, FieldAddress},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			complete, missing := Validate(tt.profile)
			assert.Equal(t, tt.complete, complete)
			assert.Equal(t, tt.missing, missing)
		})
	}
}

func TestMergeOverwrites(t *testing.T) {
	p := Profile{FieldName: "Jane"}
	p.Merge(Profile{FieldName: "Jane Doe", FieldEmail: "jane@x.com"})

	assert.Equal(t, "Jane Doe", p[FieldName])
	assert.Equal(t, "jane@x.com", p[FieldEmail])
}

func TestCloneIsIndependent(t *testing.T) {
	p := Profile{FieldName: "Jane Doe"}
	c := p.Clone()
	c[FieldName] = "changed"
	c[FieldEmail] = "jane@x.com"

	assert.Equal(t, "Jane Doe", p[FieldName])
	assert.NotContains(t, p, FieldEmail)
}

func TestFieldNames(t *testing.T) {
	assert.Nil(t, FieldNames(nil))
	assert.Equal(t, []string{"name", "phone"}, FieldNames([]Field{FieldName, FieldPhone}))
}
