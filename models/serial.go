package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Ticket serials are zero-padded decimal strings read off the pack ("000",
// "000000045"). Arithmetic happens on the numeric value; formatting keeps the
// caller's padding conventions out of the core.

// ParseSerial converts a serial string to its numeric ticket position.
func ParseSerial(s string) (int, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, ValidationError("serial is required")
	}
	for _, r := range t {
		if r < '0' || r > '9' {
			return 0, ValidationError("serial %q is not numeric", s)
		}
	}
	n, err := strconv.Atoi(t)
	if err != nil {
		return 0, ValidationError("serial %q is not numeric", s)
	}
	return n, nil
}

// FormatSerial renders a ticket position back to a zero-padded serial of the
// given width.
func FormatSerial(n int, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}

// TicketsBetween is the count of tickets moved from a starting to an ending
// serial reading. Negative results are possible (mis-scan, pack swap) and are
// the caller's problem to flag as a variance.
func TicketsBetween(startingSerial string, endingSerial string) (int, error) {
	start, err := ParseSerial(startingSerial)
	if err != nil {
		return 0, err
	}
	end, err := ParseSerial(endingSerial)
	if err != nil {
		return 0, err
	}
	return end - start, nil
}
