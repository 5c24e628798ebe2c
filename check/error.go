// Copyright © 2020 The Pea Authors under an MIT-style license.

package check

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eaburns/el/loc"
)

// A checkError is a diagnostic.
// It prints on a single line; notes follow the message in parentheses.
type checkError struct {
	loc   loc.Loc
	msg   string
	notes []string
}

func note(err *checkError, f string, vs ...interface{}) {
	err.notes = append(err.notes, fmt.Sprintf(f, vs...))
}

func (err *checkError) Error() string {
	var s strings.Builder
	s.WriteString(err.loc.String())
	s.WriteString(": ")
	s.WriteString(err.msg)
	if len(err.notes) > 0 {
		s.WriteString(" (")
		s.WriteString(strings.Join(err.notes, ", "))
		s.WriteString(")")
	}
	return s.String()
}

// convertErrors sorts errors by location, removes duplicates,
// and keeps at most max of them if max is positive.
func convertErrors(cerrs []checkError, max int) []error {
	cerrs = sortErrors(cerrs)
	if max > 0 && len(cerrs) > max {
		cerrs = cerrs[:max]
	}
	var errs []error
	for i := range cerrs {
		errs = append(errs, &cerrs[i])
	}
	return errs
}

func sortErrors(errs []checkError) []checkError {
	if len(errs) == 0 {
		return errs
	}
	sort.SliceStable(errs, func(i, j int) bool {
		return errs[i].loc.Less(errs[j].loc)
	})
	dedup := []checkError{errs[0]}
	for _, e := range errs[1:] {
		d := &dedup[len(dedup)-1]
		if e.loc != d.loc || e.msg != d.msg {
			dedup = append(dedup, e)
		}
	}
	return dedup
}
