package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvalidator_Notify(t *testing.T) {
	inv := NewInvalidator(nil)

	var got []string
	inv.OnInvalidation(func(kind string) { panic("boom") })
	inv.OnInvalidation(func(kind string) { got = append(got, kind) })

	inv.Notify(" news ")
	inv.Notify("")

	assert.Equal(t, []string{"news", ""}, got)
}

func TestInvalidator_StopWithoutStart(t *testing.T) {
	inv := NewInvalidator(nil)
	assert.NotPanics(t, inv.Stop)
}
