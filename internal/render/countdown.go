package render

import (
	"regexp"
	"time"
)

var lastNomineeDate = regexp.MustCompile(`const lastNomineeDate = '[^']*';`)

// Countdown rewrites the "days since the last nominee" date in countdown.js.
// The second return value is false when the script has no such constant.
func Countdown(script []byte, latest time.Time) ([]byte, bool) {
	if !lastNomineeDate.Match(script) {
		return script, false
	}
	return replaceFirst(lastNomineeDate, script,
		[]byte("const lastNomineeDate = '"+latest.Format("2006-01-02")+"';")), true
}
