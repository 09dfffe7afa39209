package flight

import (
	"fmt"
	"strconv"
)

// StatusCode is the reported state of a flight.
type StatusCode uint8

const (
	StatusUnknown       StatusCode = 0
	StatusOnTime        StatusCode = 10
	StatusLateAirline   StatusCode = 20
	StatusLateWeather   StatusCode = 30
	StatusLateTechnical StatusCode = 40
	StatusLateOther     StatusCode = 50
)

// Codes lists every status an oracle may report.
var Codes = []StatusCode{
	StatusUnknown,
	StatusOnTime,
	StatusLateAirline,
	StatusLateWeather,
	StatusLateTechnical,
	StatusLateOther,
}

func (s StatusCode) Valid() bool {
	switch s {
	case StatusUnknown, StatusOnTime, StatusLateAirline, StatusLateWeather, StatusLateTechnical, StatusLateOther:
		return true
	}
	return false
}

func (s StatusCode) String() string {
	switch s {
	case StatusUnknown:
		return "UNKNOWN"
	case StatusOnTime:
		return "ON_TIME"
	case StatusLateAirline:
		return "LATE_AIRLINE"
	case StatusLateWeather:
		return "LATE_WEATHER"
	case StatusLateTechnical:
		return "LATE_TECHNICAL"
	case StatusLateOther:
		return "LATE_OTHER"
	}
	return "STATUS_" + strconv.Itoa(int(s))
}

// ParseStatus accepts either the numeric code or its name.
func ParseStatus(s string) (StatusCode, error) {
	for _, c := range Codes {
		if s == c.String() {
			return c, nil
		}
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil || !StatusCode(n).Valid() {
		return 0, fmt.Errorf("unknown status %q", s)
	}
	return StatusCode(n), nil
}
