package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckCoordinates(t *testing.T) {
	v := NewInputValidator(ScreenBounds{Width: 1920, Height: 1080}, 0)

	ok, _ := v.CheckCoordinates(500, 500)
	assert.True(t, ok)

	ok, reason := v.CheckCoordinates(5000, 500)
	assert.False(t, ok)
	assert.Contains(t, reason, "exceed screen bounds")

	ok, _ = v.CheckCoordinates(-10, 500)
	assert.False(t, ok)
}

func TestCheckKeyCombo(t *testing.T) {
	v := NewInputValidator(ScreenBounds{Width: 1920, Height: 1080}, 0)

	ok, _ := v.CheckKeyCombo([]string{"ctrl", "c"})
	assert.True(t, ok)

	ok, reason := v.CheckKeyCombo([]string{"cmd", "alt", "esc"})
	assert.False(t, ok)
	assert.Contains(t, reason, "force_quit")
}

func TestCheckText(t *testing.T) {
	v := NewInputValidator(ScreenBounds{Width: 100, Height: 100}, 0)

	ok, _ := v.CheckText("just some ordinary text")
	assert.True(t, ok)

	ok, reason := v.CheckText("my password is hunter2")
	assert.False(t, ok)
	assert.Contains(t, reason, "password")

	ok, _ = v.CheckText("card number 4111111111111111")
	assert.False(t, ok)

	ok, _ = v.CheckText("order id 1234567890123456")
	assert.True(t, ok) // not Luhn-valid, left alone

	ok, _ = v.CheckText("ssn 123-45-6789")
	assert.False(t, ok)

	ok, _ = v.CheckText("ssn 000-12-3456")
	assert.True(t, ok) // invalid area, not flagged
}

func TestCheckRate(t *testing.T) {
	v := NewInputValidator(ScreenBounds{Width: 100, Height: 100}, 50*time.Millisecond)

	ok, _ := v.CheckRate()
	assert.True(t, ok)

	ok, reason := v.CheckRate()
	assert.False(t, ok)
	assert.Contains(t, reason, "rate")

	time.Sleep(60 * time.Millisecond)
	ok, _ = v.CheckRate()
	assert.True(t, ok)
}

func TestValidateAction(t *testing.T) {
	v := NewInputValidator(ScreenBounds{Width: 1920, Height: 1080}, 0)

	ok, reason := v.ValidateAction(100, 100, "", nil)
	assert.True(t, ok, reason)

	ok, _ = v.ValidateAction(9999, 9999, "", nil)
	assert.False(t, ok)

	ok, _ = v.ValidateAction(100, 100, "", []string{"ctrl", "alt", "delete"})
	assert.False(t, ok)

	ok, _ = v.ValidateAction(100, 100, "my password is secret", nil)
	assert.False(t, ok)
}
