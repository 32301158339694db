package database

import (
	"context"
	"strconv"
	"time"

	"emperror.dev/errors"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/go-openapi/strfmt"
	"gitlab.com/BIC_Dev/trabajo-bot/models"
)

type birthdayRow struct {
	UserID       int64     `db:"user_id"`
	BirthdayDate time.Time `db:"birthday_date"`
}

func (r birthdayRow) model() *models.Birthday {
	return &models.Birthday{
		UserID: r.UserID,
		Date:   strfmt.Date(r.BirthdayDate),
	}
}

func parseUserID(userID string) (int64, error) {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid user id %q", userID)
	}

	return id, nil
}

func setBirthdayQuery(userID int64, date strfmt.Date) (string, []interface{}, error) {
	return sq.Insert("birthdays").
		Columns("user_id", "birthday_date").
		Values(userID, date.String()).
		Suffix("on conflict (user_id) do update set birthday_date = excluded.birthday_date").
		ToSql()
}

func getBirthdayQuery(userID int64) (string, []interface{}, error) {
	return sq.Select("user_id", "birthday_date").
		From("birthdays").
		Where("user_id = ?", userID).
		ToSql()
}

func listBirthdaysQuery() (string, []interface{}, error) {
	return sq.Select("user_id", "birthday_date").
		From("birthdays").
		OrderBy("extract(month from birthday_date)", "extract(day from birthday_date)", "user_id").
		ToSql()
}

func birthdaysOnQuery(month time.Month, day int) (string, []interface{}, error) {
	return sq.Select("user_id", "birthday_date").
		From("birthdays").
		Where("extract(month from birthday_date) = ?", int(month)).
		Where("extract(day from birthday_date) = ?", day).
		OrderBy("user_id").
		ToSql()
}

// SetBirthday stores or replaces the birthday of a user
func (db *DB) SetBirthday(ctx context.Context, userID string, date strfmt.Date) error {
	id, err := parseUserID(userID)
	if err != nil {
		return err
	}

	sql, args, err := setBirthdayQuery(id, date)
	if err != nil {
		return errors.Wrap(err, "building query")
	}

	if _, err := db.Exec(ctx, sql, args...); err != nil {
		return errors.Wrap(err, "setting birthday")
	}

	return nil
}

// GetBirthday returns ErrNotFound when the user has no birthday stored
func (db *DB) GetBirthday(ctx context.Context, userID string) (*models.Birthday, error) {
	id, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	sql, args, err := getBirthdayQuery(id)
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var row birthdayRow
	if err := pgxscan.Get(ctx, db, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}

		return nil, errors.Wrap(err, "getting birthday")
	}

	return row.model(), nil
}

// ListBirthdays returns every stored birthday ordered by month and day
func (db *DB) ListBirthdays(ctx context.Context) ([]*models.Birthday, error) {
	sql, args, err := listBirthdaysQuery()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	return db.selectBirthdays(ctx, sql, args)
}

// BirthdaysOn returns the birthdays falling on a calendar day
func (db *DB) BirthdaysOn(ctx context.Context, month time.Month, day int) ([]*models.Birthday, error) {
	sql, args, err := birthdaysOnQuery(month, day)
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	return db.selectBirthdays(ctx, sql, args)
}

func (db *DB) selectBirthdays(ctx context.Context, sql string, args []interface{}) ([]*models.Birthday, error) {
	var rows []birthdayRow
	if err := pgxscan.Select(ctx, db, &rows, sql, args...); err != nil {
		return nil, errors.Wrap(err, "listing birthdays")
	}

	birthdays := make([]*models.Birthday, 0, len(rows))
	for _, r := range rows {
		birthdays = append(birthdays, r.model())
	}

	return birthdays, nil
}
