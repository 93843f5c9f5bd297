package util

import (
	"encoding/json"
	"fmt"
	"log"
)

// Logging is a clumsy switch that affects what Logf does.
//
// If Logging is true, then Logf calls log.Printf.  The evaluator uses
// Logf for its diagnostics about failing condition and transform calls,
// which are absorbed rather than returned.
var Logging = false

// Logf is a silly utility function that calls log.Printf if Logging
// is true.
func Logf(format string, args ...interface{}) {
	if !Logging {
		return
	}
	log.Printf(format, args...)
}

// TruncateAt limits what Truncate emits.
var TruncateAt = 120

// Truncate renders a value as JSON cut to TruncateAt bytes, for
// diagnostics that shouldn't dump a whole document.
func Truncate(x interface{}) string {
	js, err := json.Marshal(&x)
	if err != nil {
		return fmt.Sprintf("%#v", x)
	}
	s := string(js)
	if TruncateAt < len(s) {
		s = s[:TruncateAt] + "..."
	}
	return s
}
