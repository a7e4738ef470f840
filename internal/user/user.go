package user

import (
	"os"
	"os/user"
)

// ResolveActor picks the identity recorded on every mutation and audit row.
// Precedence, most explicit first:
// 1. --actor flag value
// 2. BACKLOG_ACTOR environment variable
// 3. default_actor from the config file
// 4. the OS username
func ResolveActor(flagValue, configured string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("BACKLOG_ACTOR"); env != "" {
		return env
	}
	if configured != "" {
		return configured
	}
	return GetCurrentUsername()
}

// GetCurrentUsername returns the current system username.
// It tries multiple methods with fallbacks:
// 1. user.Current() - most reliable, gets username from OS
// 2. USER environment variable - fallback for restricted environments
// 3. "unknown" - final fallback to ensure a non-empty value
func GetCurrentUsername() string {
	// Try to get current user from OS
	currentUser, err := user.Current()
	if err != nil {
		// Fallback to USER environment variable
		username := os.Getenv("USER")
		if username == "" {
			// Final fallback
			return "unknown"
		}
		return username
	}
	return currentUser.Username
}
