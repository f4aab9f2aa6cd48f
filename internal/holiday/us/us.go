// Package us defines United States holidays and the SIFMA, Federal Reserve
// and NYSE calendars built from them.
package us

import (
	"time"

	"holidaycal/internal/holiday"
)

// Observances for US floating holidays, bounded by the year each was
// first observed nationally.
var (
	MLKDayObservance        = holiday.Since(1986, holiday.NthWeekday{Month: time.January, Weekday: time.Monday, N: 3})
	PresidentsDayObservance = holiday.Since(1971, holiday.NthWeekday{Month: time.February, Weekday: time.Monday, N: 3})
	MemorialDayObservance   = holiday.Since(1971, holiday.NthWeekday{Month: time.May, Weekday: time.Monday, N: holiday.Last})
	LaborDayObservance      = holiday.Since(1894, holiday.NthWeekday{Month: time.September, Weekday: time.Monday, N: 1})
	ColumbusDayObservance   = holiday.Since(1971, holiday.NthWeekday{Month: time.October, Weekday: time.Monday, N: 2})
	ThanksgivingObservance  = holiday.Since(1942, holiday.NthWeekday{Month: time.November, Weekday: time.Thursday, N: 4})
	JuneteenthObservance    = holiday.Since(2021, holiday.FixedDate{Month: time.June, Day: 19})
	GoodFridayObservance    = holiday.EasterOffset(-2)
)

var (
	NewYear         = holiday.MustFixed("New Year's Day", "", time.January, 1)
	MLKDay          = holiday.MustFloating("Martin Luther King Jr. Day", "Honor of Martin Luther King Jr's birthday", MLKDayObservance)
	PresidentsDay   = holiday.MustFloating("Presidents' Day", "Honor of George Washington's birthday", PresidentsDayObservance)
	GoodFriday      = holiday.MustFloating("Good Friday", "Friday before Easter Sunday", GoodFridayObservance)
	MemorialDay     = holiday.MustFloating("Memorial Day", "Mourning of fallen US military personnel", MemorialDayObservance)
	Juneteenth      = holiday.MustFloating("Juneteenth", "Juneteenth National Independence Day", JuneteenthObservance)
	IndependenceDay = holiday.MustFixed("Independence Day", "Fourth of July", time.July, 4)
	LaborDay        = holiday.MustFloating("Labor Day", "Recognition of American labor", LaborDayObservance)
	ColumbusDay     = holiday.MustFloating("Columbus Day", "Anniversary of arrival of Columbus in Americas", ColumbusDayObservance)
	VeteransDay     = holiday.MustFixed("Veterans Day", "Honor of all US veterans", time.November, 11)
	Thanksgiving    = holiday.MustFloating("Thanksgiving Day", "Day of giving thanks", ThanksgivingObservance)
	Christmas       = holiday.MustFixed("Christmas Day", "", time.December, 25)
)

// SIFMA is the SIFMA holiday recommendation for US bond markets.
var SIFMA = holiday.MustNew(holiday.Options{
	Code:     "SIFMA",
	Name:     "SIFMA Holiday Recommendations (US)",
	DateRoll: holiday.RollNearest,
	Holidays: []*holiday.Holiday{
		NewYear,
		MLKDay,
		PresidentsDay,
		MemorialDay,
		IndependenceDay,
		LaborDay,
		ColumbusDay,
		VeteransDay,
		Thanksgiving,
		Christmas,
	},
})

// FRB is the Federal Reserve Board holiday schedule.
var FRB = holiday.MustNew(holiday.Options{
	Code:     "FRB",
	Name:     "Federal Reserve Board",
	DateRoll: holiday.RollForward,
	Holidays: []*holiday.Holiday{
		NewYear,
		MLKDay,
		PresidentsDay,
		MemorialDay,
		Juneteenth,
		IndependenceDay,
		LaborDay,
		ColumbusDay,
		VeteransDay,
		Thanksgiving,
		Christmas,
	},
})

// NYSE is the New York Stock Exchange full-day closure schedule.
var NYSE = holiday.MustNew(holiday.Options{
	Code:     "NYSE",
	Name:     "New York Stock Exchange",
	DateRoll: holiday.RollNearest,
	Holidays: []*holiday.Holiday{
		NewYear,
		MLKDay,
		PresidentsDay,
		GoodFriday,
		MemorialDay,
		Juneteenth,
		IndependenceDay,
		LaborDay,
		Thanksgiving,
		Christmas,
	},
})
