package models

import "fmt"

// Cooldown identifies one user's cooldown on one command
type Cooldown struct {
	Command string `json:"command"`
	UserID  string `json:"user_id"`
}

// CacheKey func
func (c *Cooldown) CacheKey(base string) string {
	return fmt.Sprintf("%s:%s:%s", base, c.Command, c.UserID)
}
