// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

import "time"

// DOS packed timestamps use two little-endian words.
// Time word: bits 4:0 seconds/2, bits 10:5 minutes, bits 15:11 hours.
// Date word: bits 4:0 day (1-31), bits 8:5 month (1-12), bits 15:9 year since 1980.

// decodeDOSTime converts packed DOS time and date words to local wall-clock
// time. DOS clocks carry no zone, so the archive timestamp is interpreted in
// the local zone the way the original tool wrote it.
func decodeDOSTime(timeWord, dateWord uint16) (time.Time, bool) {
	sec := int(timeWord&0x1F) * 2
	minute := int(timeWord>>5) & 0x3F
	hour := int(timeWord>>11) & 0x1F

	day := int(dateWord & 0x1F)
	month := int(dateWord>>5) & 0x0F
	year := int(dateWord>>9)&0x7F + 1980

	if sec > 58 || minute > 59 || hour > 23 {
		return time.Time{}, false
	}
	if day < 1 || month < 1 || month > 12 || day > daysInMonth(year, month) {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.Local), true
}

// encodeDOSTime converts a timestamp back to packed DOS words, truncating
// seconds to the 2-second resolution of the format.
func encodeDOSTime(t time.Time) (timeWord, dateWord uint16) {
	t = t.Local()
	year := t.Year()
	if year < 1980 {
		year = 1980
	}
	if year > 1980+0x7F {
		year = 1980 + 0x7F
	}

	timeWord = uint16(t.Second()/2) | uint16(t.Minute())<<5 | uint16(t.Hour())<<11
	dateWord = uint16(t.Day()) | uint16(t.Month())<<5 | uint16(year-1980)<<9
	return timeWord, dateWord
}

// daysInMonth returns the day count of one month honoring leap years.
func daysInMonth(year, month int) int {
	switch month {
	case 2:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}
