package foundation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
)

func positive(field string) Validator[int] {
	return func(v int) ValidationResult {
		if v <= 0 {
			return Invalid(NewValidationError(field, "positive", "must be positive"))
		}
		return Valid()
	}
}

func TestValidatorChain_CollectsAllFailures(t *testing.T) {
	chain := NewValidatorChain(positive("depth"), positive("width"))

	assert.True(t, chain.Validate(3).Valid)
	assert.NoError(t, chain.Validate(3).ToError())

	res := chain.Validate(0)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 2)

	err := res.ToError()
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	assert.Contains(t, err.Error(), "field 'depth': must be positive; field 'width': must be positive")

	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	fields, _ := ce.Context().GetString("fields")
	assert.Equal(t, "depth,width", fields)
}

func TestFieldError_WithoutField(t *testing.T) {
	assert.Equal(t, "broken", NewValidationError("", "x", "broken").Error())
}
