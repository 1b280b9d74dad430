package ui

import "testing"

func TestInitTheme(t *testing.T) {
	// Global theme state: restore the default when done.
	defer InitTheme(false)

	t.Run("NoColorDisablesCodes", func(t *testing.T) {
		InitTheme(true)
		theme := GetCurrentTheme()
		if theme.Reset != "" || theme.Success != "" || theme.Bold != "" {
			t.Errorf("no-color theme still carries escape codes: %+v", theme)
		}
		if ColorGreen() != "" || ColorReset() != "" {
			t.Error("color accessors should be empty under the no-color theme")
		}
	})

	t.Run("DefaultThemeHasCodes", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")
		InitTheme(false)
		if ColorReset() == "" || ColorRed() == "" || ColorCyan() == "" {
			t.Error("default theme should carry escape codes")
		}
	})

	t.Run("NoColorEnvWins", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		InitTheme(false)
		if GetCurrentTheme().Reset != "" {
			t.Error("NO_COLOR env var should disable colors even without the flag")
		}
	})
}
