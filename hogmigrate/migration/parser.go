package migration

import (
	"fmt"
	"strconv"
	"strings"
)

const voiceKeySuffix = "_voice"

// ParseLegacyDuration converts the old bot's "days:hours:minutes:seconds"
// strings to total seconds, e.g. "76:04:59:37" -> 6580777. Segments carry
// no upper bound; these are durations, not calendar dates.
func ParseLegacyDuration(s string) (int64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return 0, fmt.Errorf("invalid time format %q: expected days:hours:minutes:seconds", s)
	}

	values := make([]int64, len(parts))
	for i, part := range parts {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time format %q: segment %q is not an integer", s, part)
		}
		if n < 0 {
			return 0, fmt.Errorf("invalid time format %q: segment %q is negative", s, part)
		}
		values[i] = n
	}

	days, hours, minutes, seconds := values[0], values[1], values[2], values[3]
	return days*86400 + hours*3600 + minutes*60 + seconds, nil
}

// ExtractVoiceUserID returns the user id embedded in keys like
// "223647480741363713_voice". Keys without the trailing suffix are not
// voice timers and report ok=false.
func ExtractVoiceUserID(key string) (string, bool) {
	if !strings.HasSuffix(key, voiceKeySuffix) {
		return "", false
	}
	return strings.TrimSuffix(key, voiceKeySuffix), true
}
