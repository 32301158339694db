package models

import (
	"fmt"

	"github.com/go-openapi/strfmt"
)

// BirthdayAnnouncement identifies one "happy birthday" post
type BirthdayAnnouncement struct {
	GuildID string      `json:"guild_id"`
	UserID  string      `json:"user_id"`
	Date    strfmt.Date `json:"date"`
}

// CacheKey func
func (ba *BirthdayAnnouncement) CacheKey(base string) string {
	return fmt.Sprintf("%s:%s:%s:%s", base, ba.GuildID, ba.UserID, ba.Date.String())
}
