package models

import (
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
)

func TestBirthdayAnnouncementCacheKey(t *testing.T) {
	ba := BirthdayAnnouncement{
		GuildID: "10",
		UserID:  "20",
		Date:    strfmt.Date(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)),
	}

	assert.Equal(t, "birthday_announcement:10:20:2024-03-09", ba.CacheKey("birthday_announcement"))
}

func TestCooldownCacheKey(t *testing.T) {
	c := Cooldown{Command: "pew", UserID: "7"}
	assert.Equal(t, "cooldown:pew:7", c.CacheKey("cooldown"))
}

func TestBirthdayAccessors(t *testing.T) {
	b := Birthday{UserID: 1234, Date: strfmt.Date(time.Date(1990, 12, 31, 0, 0, 0, 0, time.UTC))}

	assert.Equal(t, "1234", b.UserIDString())
	assert.Equal(t, time.December, b.Month())
	assert.Equal(t, 31, b.Day())
}
