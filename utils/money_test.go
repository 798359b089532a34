package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "30.00", FormatAmount(30))
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "19.99", FormatAmount(19.99))
	assert.Equal(t, "0.30", FormatAmount(0.1+0.2))
}

func TestAmountFromMinor(t *testing.T) {
	assert.Equal(t, 19.99, AmountFromMinor(1999))
	assert.Equal(t, 0.0, AmountFromMinor(0))
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1999), ToMinorUnits(19.99))
	assert.Equal(t, int64(1000), ToMinorUnits(10))
	assert.Equal(t, int64(1), ToMinorUnits(0.005))
}
