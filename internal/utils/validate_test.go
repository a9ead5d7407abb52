package utils_test

import (
	"strings"
	"testing"

	"github.com/sahabattani/backend/internal/utils"
	"github.com/stretchr/testify/assert"
)

func TestValidators(t *testing.T) {
	assert.Empty(t, utils.ValidateEmail("petani@example.com"))
	assert.NotEmpty(t, utils.ValidateEmail(""))
	assert.NotEmpty(t, utils.ValidateEmail("not-an-email"))
	assert.NotEmpty(t, utils.ValidateEmail("Petani <petani@example.com>"))

	assert.Empty(t, utils.ValidateName("Pak Tani"))
	assert.NotEmpty(t, utils.ValidateName("   "))
	assert.NotEmpty(t, utils.ValidateName(strings.Repeat("a", 51)))

	assert.Empty(t, utils.ValidatePassword("password", "secret"))
	assert.NotEmpty(t, utils.ValidatePassword("password", "12345"))
	assert.NotEmpty(t, utils.ValidatePassword("password", strings.Repeat("a", 73)))

	assert.Equal(t, []string{"a", "b"}, utils.Collect("a", "", "b"))
	assert.Nil(t, utils.Collect("", ""))
}
