package sales

import (
	"regexp"
	"strings"
)

// The bulk-orders API insists on yyyy-MM-ddTHH:mm:ss.SSS±HHMM. Inputs arrive
// looser than that: trailing Z, colon offsets, and occasionally a literal
// space where query-string re-encoding ate the '+' of a 4-digit offset.
var (
	lostPlusOffset = regexp.MustCompile(`^(.*\.\d{3}) (\d{4})$`)
	colonUTCOffset = regexp.MustCompile(`^(.*[+-]\d{2}):(\d{2})$`)
)

// NormalizeTimestamp rewrites a loosely formatted timestamp into the exact
// wire format the upstream requires. The date portion is not validated;
// anything matching none of the patterns passes through unchanged.
func NormalizeTimestamp(ts string) string {
	if m := lostPlusOffset.FindStringSubmatch(ts); m != nil {
		ts = m[1] + "+" + m[2]
	}

	if strings.HasSuffix(ts, "Z") {
		return strings.TrimSuffix(ts, "Z") + "+0000"
	}

	if m := colonUTCOffset.FindStringSubmatch(ts); m != nil {
		return m[1] + m[2]
	}

	return ts
}
