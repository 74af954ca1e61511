package services

import (
	"testing"
	"time"

	"github.com/AnshRaj112/inkwell-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func entryAt(title string, at time.Time, collectionID *string) models.Entry {
	return models.Entry{ID: primitive.NewObjectID(), Title: title, CreatedAt: at, CollectionID: collectionID}
}

func titles(entries []models.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Title)
	}
	return out
}

func tenEntriesAcrossThreeMonths() []models.Entry {
	col := "c1"
	empty := ""
	return []models.Entry{
		entryAt("mar-1", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), nil),
		entryAt("mar-15", time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC), nil),
		entryAt("mar-31-late", time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC), nil),
		entryAt("mar-col", time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC), &col),
		entryAt("mar-empty-col", time.Date(2024, time.March, 20, 8, 0, 0, 0, time.UTC), &empty),
		entryAt("feb-29", time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC), nil),
		entryAt("feb-2", time.Date(2024, time.February, 2, 10, 0, 0, 0, time.UTC), nil),
		entryAt("apr-1", time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), nil),
		entryAt("apr-9", time.Date(2024, time.April, 9, 18, 0, 0, 0, time.UTC), nil),
		entryAt("apr-col", time.Date(2024, time.April, 9, 19, 0, 0, 0, time.UTC), &col),
	}
}

func TestFilterEntriesMonthExactness(t *testing.T) {
	entries := tenEntriesAcrossThreeMonths()

	march := FilterEntries(entries, MonthQuery{Month: 2, Year: 2024})
	assert.Equal(t, []string{"mar-31-late", "mar-empty-col", "mar-15", "mar-1"}, titles(march))

	feb := FilterEntries(entries, MonthQuery{Month: 1, Year: 2024})
	assert.Equal(t, []string{"feb-29", "feb-2"}, titles(feb))

	apr := FilterEntries(entries, MonthQuery{Month: 3, Year: 2024})
	assert.Equal(t, []string{"apr-9", "apr-1"}, titles(apr))

	assert.Empty(t, FilterEntries(entries, MonthQuery{Month: 2, Year: 2023}))
}

func TestFilterEntriesSelectedDay(t *testing.T) {
	entries := tenEntriesAcrossThreeMonths()
	day, err := ParseDay("2024-04-09", time.UTC)
	require.NoError(t, err)

	got := FilterEntries(entries, MonthQuery{Month: 3, Year: 2024, Day: day})
	assert.Equal(t, []string{"apr-9"}, titles(got))
}

func TestFilterEntriesUsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:00 UTC on April 1st is still March 31st in New York.
	e := entryAt("edge", time.Date(2024, time.April, 1, 2, 0, 0, 0, time.UTC), nil)

	assert.Len(t, FilterEntries([]models.Entry{e}, MonthQuery{Month: 2, Year: 2024, Loc: ny}), 1)
	assert.Empty(t, FilterEntries([]models.Entry{e}, MonthQuery{Month: 3, Year: 2024, Loc: ny}))
}

func TestFilterEntriesSkipsZeroTimestampAndOrdersTies(t *testing.T) {
	at := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)
	first := entryAt("first", at, nil)
	second := entryAt("second", at, nil)
	pending := models.Entry{ID: primitive.NewObjectID(), Title: "pending"}

	got := FilterEntries([]models.Entry{first, pending, second}, MonthQuery{Month: 2, Year: 2024})

	assert.Equal(t, []string{"second", "first"}, titles(got))
}

func TestMarkedDays(t *testing.T) {
	entries := tenEntriesAcrossThreeMonths()
	day, _ := ParseDay("2024-03-15", time.UTC)

	assert.Equal(t, []int{1, 15, 20, 31}, MarkedDays(entries, MonthQuery{Month: 2, Year: 2024, Day: day}))
	assert.Equal(t, []int{1, 9}, MarkedDays(entries, MonthQuery{Month: 3, Year: 2024}))
}

func TestMonthQueryValidate(t *testing.T) {
	assert.NoError(t, MonthQuery{Month: 0, Year: 2024}.Validate())
	assert.NoError(t, MonthQuery{Month: 11, Year: 2024}.Validate())
	assert.Error(t, MonthQuery{Month: 12, Year: 2024}.Validate())
	assert.Error(t, MonthQuery{Month: -1, Year: 2024}.Validate())
	assert.Error(t, MonthQuery{Month: 0, Year: 10}.Validate())

	day, _ := ParseDay("2024-05-01", time.UTC)
	assert.Error(t, MonthQuery{Month: 3, Year: 2024, Day: day}.Validate())

	_, err := ParseDay("05/01/2024", time.UTC)
	assert.Error(t, err)
}

func TestDaysUntilMonth(t *testing.T) {
	now := time.Date(2024, time.April, 20, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, 11, DaysUntilMonth(now, MonthQuery{Month: 4, Year: 2024}))
	assert.Equal(t, -19, DaysUntilMonth(now, MonthQuery{Month: 3, Year: 2024}))
}

func TestMonthRangeDecember(t *testing.T) {
	start, end := MonthRange(2024, 11, time.UTC)
	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), end)
}
