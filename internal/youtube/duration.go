package youtube

import (
	"fmt"
	"regexp"
	"strconv"
)

// DurationUnknown is returned for malformed duration input; a bad duration
// never fails a whole video fetch.
const DurationUnknown = "Unknown"

var isoDurationPattern = regexp.MustCompile(
	`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)(?:\.\d+)?S)?)?$`)

// FormatDuration converts a YouTube ISO 8601 duration (for example "PT1H2M10S")
// to clock text ("1:02:10"). Malformed input yields DurationUnknown.
func FormatDuration(isoDuration string) string {
	match := isoDurationPattern.FindStringSubmatch(isoDuration)
	if match == nil || isoDuration == "P" || isoDuration == "PT" {
		return DurationUnknown
	}

	days := atoiDefault(match[1])
	hours := atoiDefault(match[2])
	minutes := atoiDefault(match[3])
	seconds := atoiDefault(match[4])

	hours += days * 24
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}

func atoiDefault(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}
