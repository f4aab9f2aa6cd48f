// Package eur defines European holidays, the Eurosystem TARGET2 closing
// days and the England & Wales bank holidays.
package eur

import (
	"time"

	"holidaycal/internal/holiday"
)

var (
	NewYear       = holiday.MustFixed("New Year's Day", "", time.January, 1)
	GoodFriday    = holiday.MustFloating("Good Friday", "Friday before Easter Sunday", holiday.EasterOffset(-2))
	EasterMonday  = holiday.MustFloating("Easter Monday", "Monday after Easter Sunday", holiday.EasterOffset(1))
	LabourDay     = holiday.MustFixed("Labour Day", "International Workers' Day", time.May, 1)
	AscensionDay  = holiday.MustFloating("Ascension Day", "Fortieth day of Easter", holiday.EasterOffset(39))
	WhitMonday    = holiday.MustFloating("Whit Monday", "Monday after Pentecost", holiday.EasterOffset(50))
	ChristmasDay  = holiday.MustFixed("Christmas Day", "", time.December, 25)
	StStephensDay = holiday.MustFixed("St. Stephen's Day", "", time.December, 26)

	// TARGET closing days other than weekends are only defined from 2000.
	targetGoodFriday   = holiday.MustFloating("Good Friday", "Friday before Easter Sunday", holiday.Since(2000, holiday.EasterOffset(-2)))
	targetEasterMonday = holiday.MustFloating("Easter Monday", "Monday after Easter Sunday", holiday.Since(2000, holiday.EasterOffset(1)))
	targetLabourDay    = holiday.MustFloating("Labour Day", "International Workers' Day", holiday.Since(2000, holiday.FixedDate{Month: time.May, Day: 1}))
	targetBoxingDay    = holiday.MustFloating("St. Stephen's Day", "", holiday.Since(2000, holiday.FixedDate{Month: time.December, Day: 26}))
)

// England & Wales bank holidays.
var (
	EarlyMayBankHoliday = holiday.MustFloating("Early May Bank Holiday", "",
		holiday.Since(1978, holiday.NthWeekday{Month: time.May, Weekday: time.Monday, N: 1}))
	SpringBankHoliday = holiday.MustFloating("Spring Bank Holiday", "",
		holiday.Since(1971, holiday.NthWeekday{Month: time.May, Weekday: time.Monday, N: holiday.Last}))
	SummerBankHoliday = holiday.MustFloating("Summer Bank Holiday", "",
		holiday.Since(1971, holiday.NthWeekday{Month: time.August, Weekday: time.Monday, N: holiday.Last}))
	BoxingDay = holiday.MustFixed("Boxing Day", "", time.December, 26)
)

// TARGET is the Eurosystem TARGET2 payment system calendar. Closing days
// are not moved when they fall on a weekend.
var TARGET = holiday.MustNew(holiday.Options{
	Code: "TARGET",
	Name: "TARGET2 (Eurosystem)",
	Holidays: []*holiday.Holiday{
		NewYear,
		targetGoodFriday,
		targetEasterMonday,
		targetLabourDay,
		ChristmasDay,
		targetBoxingDay,
	},
})

// UK is the England & Wales bank holiday calendar. Fixed holidays falling
// on a weekend are substituted by the following weekday.
var UK = holiday.MustNew(holiday.Options{
	Code:     "UK",
	Name:     "England & Wales Bank Holidays",
	DateRoll: holiday.RollForward,
	Holidays: []*holiday.Holiday{
		NewYear,
		GoodFriday,
		EasterMonday,
		EarlyMayBankHoliday,
		SpringBankHoliday,
		SummerBankHoliday,
		ChristmasDay,
		BoxingDay,
	},
})
