package domain

// daysInMonth is indexed by month (1-12) for a non-leap year.
var daysInMonth = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeapYear applies the Gregorian rule: divisible by 4, except centuries
// not divisible by 400.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the length of a month, or 0 when month is not 1-12.
func DaysInMonth(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return daysInMonth[month]
}

// ValidDate reports whether (year, month, day) names a real calendar day.
func ValidDate(year, month, day int) bool {
	return day >= 1 && day <= DaysInMonth(year, month)
}
