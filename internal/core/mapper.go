package core

import (
	"context"
	"strings"
	"time"

	"github.com/JonMunkholm/employees/internal/logging"
)

// ToEmployee maps an input record to an unsaved entity.
//
// An unrecognized birth date leaves BirthDay invalid and is logged at warn
// level. City and state are derived from Location when neither is given.
func ToEmployee(ctx context.Context, in EmployeeInput, ref time.Time) Employee {
	e := Employee{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		City:      strings.TrimSpace(in.City),
		State:     strings.TrimSpace(in.State),
		Location:  strings.TrimSpace(in.Location),
	}
	if e.City == "" && e.State == "" && e.Location != "" {
		e.City, e.State = SplitLocation(e.Location)
	}

	birth, err := ToPgDate(in.BirthDate, ref)
	if err != nil {
		logging.FromContext(ctx).Warn("invalid birthday format",
			"first_name", e.FirstName,
			"last_name", e.LastName,
			"birthday", in.BirthDate,
		)
	}
	e.BirthDay = birth
	return e
}
