package profile

import (
	"strconv"
	"strings"
	"time"
)

// Age in whole years. UnknownAge is used when the birth year is hidden.
type Age int

const UnknownAge Age = -1

func (a Age) Known() bool {
	return a >= 0
}

func (a Age) String() string {
	if !a.Known() {
		return Closed
	}
	return strconv.Itoa(int(a))
}

// AgeRange is an inclusive range of desired ages.
type AgeRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Contains reports whether a known age falls into the range.
// An inverted range never contains anything.
func (r *AgeRange) Contains(a Age) bool {
	if r == nil || !a.Known() || r.From > r.To {
		return false
	}
	return r.From <= int(a) && int(a) <= r.To
}

// ComputeAge calculates the age for a VK bdate string on the given date.
// VK sends "d.m.yyyy" for public birth dates and "d.m" when the year is hidden;
// everything except a full date yields UnknownAge.
func ComputeAge(bdate string, now time.Time) Age {
	parts := strings.Split(strings.TrimSpace(bdate), ".")
	if len(parts) != 3 {
		return UnknownAge
	}

	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return UnknownAge
		}
		nums[i] = n
	}

	day, month, year := nums[0], nums[1], nums[2]
	if len(parts[2]) != 4 {
		return UnknownAge
	}

	born := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes 31.02 into March; such dates are rejected.
	if born.Day() != day || int(born.Month()) != month || born.Year() != year {
		return UnknownAge
	}

	age := now.Year() - year
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < day) {
		age--
	}

	if age < 0 {
		return UnknownAge
	}

	return Age(age)
}
