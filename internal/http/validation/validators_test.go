package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"  validate:"required,max=5"`
	Email string `json:"email" validate:"required,email"`
	Seats *int   `json:"seats" validate:"omitempty,min=1"`
}

func TestStruct(t *testing.T) {
	zero := 0
	err := Struct(sample{Name: "too long name", Email: "nope", Seats: &zero})
	require.Error(t, err)

	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, FieldErrors{
		"name":  "cannot exceed 5",
		"email": "must be a valid email address",
		"seats": "must be at least 1",
	}, fe)
	assert.Contains(t, err.Error(), "email: must be a valid email address")

	assert.NoError(t, Struct(sample{Name: "ok", Email: "a@b.co"}))
}

func TestStruct_Required(t *testing.T) {
	var fe FieldErrors
	require.True(t, errors.As(Struct(sample{}), &fe))
	assert.Equal(t, "is required", fe["name"])
	assert.Equal(t, "is required", fe["email"])
	assert.NotContains(t, fe, "seats")
}
