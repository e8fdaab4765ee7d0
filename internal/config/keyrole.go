package config

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

const serviceRole = "service_role"

// KeyRole reads the role claim of a Supabase JWT key without verifying its
// signature.
func KeyRole(key string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return "", fmt.Errorf("parse key: %w", err)
	}
	role, _ := claims["role"].(string)
	return role, nil
}

// KeyWarning returns a message when the configured key is unlikely to be
// allowed to write, and "" otherwise. Non-JWT keys are not inspected.
func (s StoreConfig) KeyWarning() string {
	if s.Backend != BackendREST || s.Key == "" {
		return ""
	}
	role, err := KeyRole(s.Key)
	if err != nil {
		return ""
	}
	if role != serviceRole {
		return fmt.Sprintf("store key has role %q, not %q: row level security may reject writes", role, serviceRole)
	}
	return ""
}
