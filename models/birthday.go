package models

import (
	"strconv"
	"time"

	"github.com/go-openapi/strfmt"
)

// Birthday is one stored birthday row
type Birthday struct {
	UserID int64       `db:"user_id" json:"user_id"`
	Date   strfmt.Date `db:"birthday_date" json:"birthday_date"`
}

// UserIDString returns the Discord snowflake of the user
func (b *Birthday) UserIDString() string {
	return strconv.FormatInt(b.UserID, 10)
}

// Month func
func (b *Birthday) Month() time.Month {
	return time.Time(b.Date).Month()
}

// Day func
func (b *Birthday) Day() int {
	return time.Time(b.Date).Day()
}
