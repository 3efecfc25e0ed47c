package calstore

import (
	"database/sql"

	"github.com/calendarcore/calendarcore/pkg/calerr"
	"github.com/calendarcore/calendarcore/pkg/calmodel"
)

// InternTimezone looks up an existing timezone_table row for
// (bookID, tz.TZID) and returns it, inserting a new row on first sight
// (spec §4.9, component C9: timezones are interned per book rather than
// duplicated onto every event/todo that references one).
func (e *Engine) InternTimezone(bookID int64, tz calmodel.Timezone) (calmodel.Timezone, error) {
	existing, err := e.GetTimezone(bookID, tz.TZID)
	if err == nil {
		return existing, nil
	}
	if calerr.Of(err) != calerr.DBRecordNotFound {
		return calmodel.Timezone{}, err
	}

	tz.BookID = bookID
	var id int64
	insertErr := e.retryOnContention(func() error {
		res, err := e.db.Exec(
			`INSERT INTO timezone_table
			 (calendar_id, tzid, offset_from_gmt,
			  standard_name, standard_month, standard_nth, standard_dow, standard_hour, standard_bias,
			  daylight_name, daylight_month, daylight_nth, daylight_dow, daylight_hour, daylight_bias)
			 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			tz.BookID, tz.TZID, tz.OffsetFromGMT,
			tz.Standard.Name, tz.Standard.Month, tz.Standard.NthWeek, tz.Standard.DayOfWeek, tz.Standard.Hour, tz.Standard.BiasMinute,
			tz.Daylight.Name, tz.Daylight.Month, tz.Daylight.NthWeek, tz.Daylight.DayOfWeek, tz.Daylight.Hour, tz.Daylight.BiasMinute,
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if insertErr != nil {
		return calmodel.Timezone{}, calerr.DBFailedf("calstore.InternTimezone", insertErr)
	}
	tz.ID = id
	return tz, nil
}

// GetTimezone reads the timezone_table row for (bookID, tzid).
func (e *Engine) GetTimezone(bookID int64, tzid string) (calmodel.Timezone, error) {
	row := e.db.QueryRow(
		`SELECT id, calendar_id, tzid, offset_from_gmt,
		        standard_name, standard_month, standard_nth, standard_dow, standard_hour, standard_bias,
		        daylight_name, daylight_month, daylight_nth, daylight_dow, daylight_hour, daylight_bias
		 FROM timezone_table WHERE calendar_id = ? AND tzid = ?`, bookID, tzid,
	)
	var tz calmodel.Timezone
	err := row.Scan(&tz.ID, &tz.BookID, &tz.TZID, &tz.OffsetFromGMT,
		&tz.Standard.Name, &tz.Standard.Month, &tz.Standard.NthWeek, &tz.Standard.DayOfWeek, &tz.Standard.Hour, &tz.Standard.BiasMinute,
		&tz.Daylight.Name, &tz.Daylight.Month, &tz.Daylight.NthWeek, &tz.Daylight.DayOfWeek, &tz.Daylight.Hour, &tz.Daylight.BiasMinute,
	)
	if err == sql.ErrNoRows {
		return calmodel.Timezone{}, calerr.New(calerr.DBRecordNotFound, "calstore.GetTimezone", err)
	}
	if err != nil {
		return calmodel.Timezone{}, calerr.DBFailedf("calstore.GetTimezone", err)
	}
	return tz, nil
}

// ListTimezonesForBook returns every timezone interned under bookID.
func (e *Engine) ListTimezonesForBook(bookID int64) ([]calmodel.Timezone, error) {
	rows, err := e.db.Query(
		`SELECT id, calendar_id, tzid, offset_from_gmt,
		        standard_name, standard_month, standard_nth, standard_dow, standard_hour, standard_bias,
		        daylight_name, daylight_month, daylight_nth, daylight_dow, daylight_hour, daylight_bias
		 FROM timezone_table WHERE calendar_id = ? ORDER BY id`, bookID,
	)
	if err != nil {
		return nil, calerr.DBFailedf("calstore.ListTimezonesForBook", err)
	}
	defer rows.Close()

	var out []calmodel.Timezone
	for rows.Next() {
		var tz calmodel.Timezone
		if err := rows.Scan(&tz.ID, &tz.BookID, &tz.TZID, &tz.OffsetFromGMT,
			&tz.Standard.Name, &tz.Standard.Month, &tz.Standard.NthWeek, &tz.Standard.DayOfWeek, &tz.Standard.Hour, &tz.Standard.BiasMinute,
			&tz.Daylight.Name, &tz.Daylight.Month, &tz.Daylight.NthWeek, &tz.Daylight.DayOfWeek, &tz.Daylight.Hour, &tz.Daylight.BiasMinute,
		); err != nil {
			return nil, calerr.DBFailedf("calstore.ListTimezonesForBook", err)
		}
		out = append(out, tz)
	}
	return out, rows.Err()
}
