// Package profile defines the user profile field model and completeness
// validation for the registration workflow.
package profile

// Field identifies one of the profile fields collected during registration.
type Field string

const (
	FieldName     Field = "name"
	FieldEmail    Field = "email"
	FieldPhone    Field = "phone"
	FieldAddress  Field = "address"
	FieldPassword Field = "password"

	// FieldUserID is written into the profile after a successful commit;
	// it is never part of the required set.
	FieldUserID Field = "user_id"
)

// RequiredFields lists the fields a profile must contain before registration
// can proceed. The password is tracked separately and deliberately excluded.
// Order here is user-visible: missing-field prompts follow it.
var RequiredFields = []Field{FieldName, FieldEmail, FieldPhone, FieldAddress}

// Profile maps field names to their collected values. Keys accumulate over
// turns; a value is only ever replaced by a later extraction, never removed.
type Profile map[Field]string

// Clone returns an independent copy of the profile.
func (p Profile) Clone() Profile {
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge copies all entries of other into p, overwriting existing values.
func (p Profile) Merge(other Profile) {
	for k, v := range other {
		p[k] = v
	}
}

// Validate reports whether the profile contains every required field with a
// non-empty value. The missing slice follows RequiredFields order regardless
// of profile insertion order.
func Validate(p Profile) (complete bool, missing []Field) {
	for _, f := range RequiredFields {
		if p[f] == "" {
			missing = append(missing, f)
		}
	}
	return len(missing) == 0, missing
}

// FieldNames converts a field slice to plain strings, for rendering and
// API responses.
func FieldNames(fields []Field) []string {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return names
}
