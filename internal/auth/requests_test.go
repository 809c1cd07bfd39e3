package auth

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterestsFromJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "array", raw: `["tech", " energy ", ""]`, want: []string{"tech", "energy"}},
		{name: "json encoded array string", raw: `"[\"tech\",\"health\"]"`, want: []string{"tech", "health"}},
		{name: "comma separated string", raw: `"tech, health ,,finance"`, want: []string{"tech", "health", "finance"}},
		{name: "single value", raw: `"tech"`, want: []string{"tech"}},
		{name: "null", raw: `null`, want: []string{}},
		{name: "absent", raw: ``, want: []string{}},
		{name: "unsupported shape", raw: `{"a":1}`, want: []string{}},
		{name: "order is kept", raw: `"b,a,c"`, want: []string{"b", "a", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InterestsFromJSON(json.RawMessage(tt.raw)))
		})
	}
}

func TestNormalizeInterests_RepeatedFormValues(t *testing.T) {
	got := NormalizeInterests("tech", "health, finance", `["sport"]`, "  ")
	assert.Equal(t, []string{"tech", "health", "finance", "sport"}, got)
	assert.Equal(t, []string{}, NormalizeInterests())
}

func TestLoginRequest_Validate(t *testing.T) {
	assert.NoError(t, LoginRequest{Email: "a@b.com", Password: "x"}.Validate())
	assert.Error(t, LoginRequest{Email: "a@b.com"}.Validate())
	assert.Error(t, LoginRequest{Email: "nope", Password: "x"}.Validate())
}
