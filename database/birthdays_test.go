package database

import (
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetBirthdayQueryUpserts(t *testing.T) {
	date := strfmt.Date(time.Date(1995, 7, 14, 0, 0, 0, 0, time.UTC))

	sql, args, err := setBirthdayQuery(42, date)
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO birthdays (user_id,birthday_date) VALUES ($1,$2) "+
		"on conflict (user_id) do update set birthday_date = excluded.birthday_date", sql)
	assert.Equal(t, []interface{}{int64(42), "1995-07-14"}, args)
}

func TestGetBirthdayQuery(t *testing.T) {
	sql, args, err := getBirthdayQuery(7)
	require.NoError(t, err)

	assert.Equal(t, "SELECT user_id, birthday_date FROM birthdays WHERE user_id = $1", sql)
	assert.Equal(t, []interface{}{int64(7)}, args)
}

func TestListBirthdaysQueryOrdersByCalendarDay(t *testing.T) {
	sql, args, err := listBirthdaysQuery()
	require.NoError(t, err)

	assert.Contains(t, sql, "ORDER BY extract(month from birthday_date), extract(day from birthday_date), user_id")
	assert.Empty(t, args)
}

func TestBirthdaysOnQuery(t *testing.T) {
	sql, args, err := birthdaysOnQuery(time.February, 29)
	require.NoError(t, err)

	assert.Contains(t, sql, "extract(month from birthday_date) = $1 AND extract(day from birthday_date) = $2")
	assert.Equal(t, []interface{}{2, 29}, args)
}

func TestParseUserID(t *testing.T) {
	id, err := parseUserID("123456789012345678")
	require.NoError(t, err)
	assert.Equal(t, int64(123456789012345678), id)

	_, err = parseUserID("abc")
	assert.Error(t, err)
}

func TestMigrationsAreEmbedded(t *testing.T) {
	migrations, err := migrationSource().FindMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 1)
	assert.Equal(t, "1_birthdays.sql", migrations[0].Id)
	assert.NotEmpty(t, migrations[0].Up)
	assert.NotEmpty(t, migrations[0].Down)
}
