// Package domain models NOAA Global Historical Climatology Network daily
// (GHCN-Daily) data.
//
// # Data Source
//
// GHCN-Daily is published as fixed-width ASCII files under a base location
// such as https://www.ncei.noaa.gov/pub/data/ghcn/daily/:
//
//	ghcnd-inventory.txt   one line per station and element with its period of record
//	ghcnd-stations.txt    one line per station with coordinates, elevation and name
//	all/{station}.dly     one line per station, year, month and element
//
// # Station Keys
//
// A station key is 11 characters: a 2-letter FIPS country code, a 1-character
// network code and an 8-character identifier, e.g. "USC00011084". The three
// parts are stored separately on the records and joined by Key(). Code fields
// keep their padding so the key is always 11 characters.
//
// # Daily Rows
//
// Each .dly line carries one month of one element:
//
//	ID 1-11, YEAR 12-15, MONTH 16-17, ELEMENT 18-21,
//	then 31 × (VALUE 5, MFLAG 1, QFLAG 1, SFLAG 1)   → 269 characters
//
// Every month has 31 slots. Slots past the end of the month hold -9999, as do
// days without a measurement. [ExpandRows] drops both: impossible dates via
// [ValidDate] and missing days via [MissingValue]. Neither is an error.
//
// Values are integers in the element's native unit, e.g. tenths of °C for
// TMAX/TMIN and tenths of mm for PRCP. No scaling is applied here.
//
// # Element Codes
//
// Element codes are not validated against a vocabulary. NOAA adds codes over
// time; an unknown code simply never matches a filter.
package domain
