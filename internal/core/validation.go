package core

// validation.go checks request input before it reaches the store.
//
// Field errors come back as a [ValidationError] keyed by the JSON field name.

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxEmployeeID is the largest accepted employee id.
const MaxEmployeeID int64 = 999_999_999_999_999

// MaxPageSize bounds the size of one listing page.
const MaxPageSize = 100

// Trimmed returns in with surrounding whitespace removed from every field.
func (in EmployeeInput) Trimmed() EmployeeInput {
	return EmployeeInput{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		City:      strings.TrimSpace(in.City),
		State:     strings.TrimSpace(in.State),
		Location:  strings.TrimSpace(in.Location),
		BirthDate: strings.TrimSpace(in.BirthDate),
	}
}

// Validate requires both names and a birth date. The birth date format is
// not checked here; an unrecognized value is stored as absent.
func (in EmployeeInput) Validate() error {
	return asValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.FirstName,
			validation.Required.Error("first name cannot be blank"),
			validation.Length(1, 255),
		),
		validation.Field(&in.LastName,
			validation.Required.Error("last name cannot be blank"),
			validation.Length(1, 255),
		),
		validation.Field(&in.BirthDate,
			validation.Required.Error("birth date is required"),
		),
		validation.Field(&in.Location, validation.Length(0, 255)),
	))
}

// ValidateID checks that id is in the accepted range.
func ValidateID(id int64) error {
	err := validation.Validate(id,
		validation.Required.Error("id must be at least 1"),
		validation.Min(int64(1)).Error("id must be at least 1"),
		validation.Max(MaxEmployeeID).Error("id must be at most 999999999999999"),
	)
	if err != nil {
		return NewValidationError("id", err.Error())
	}
	return nil
}

// ListQuery selects a page of employees, optionally by birth month.
type ListQuery struct {
	Page   int    `json:"page"`
	Size   int    `json:"size"`
	SortBy string `json:"sortBy"`
	// Month is only applied when ByMonth is set.
	Month   int  `json:"month"`
	ByMonth bool `json:"-"`
}

// DefaultListQuery returns the listing used when no parameters are given.
func DefaultListQuery() ListQuery {
	return ListQuery{Page: 0, Size: 10, SortBy: "id"}
}

// PageRequest returns the paging part of q.
func (q ListQuery) PageRequest() PageRequest {
	return PageRequest{Page: q.Page, Size: q.Size, SortBy: q.SortBy}
}

func (q ListQuery) Validate() error {
	return asValidationError(validation.ValidateStruct(&q,
		validation.Field(&q.Page, validation.Min(0).Error("must be at least 0")),
		validation.Field(&q.Size,
			validation.Required.Error("must be at least 1"),
			validation.Min(1).Error("must be at least 1"),
			validation.Max(MaxPageSize).Error("must be at most 100"),
		),
		validation.Field(&q.SortBy,
			validation.Required,
			validation.In(sortKeys()...).Error("unsupported sort field"),
		),
		validation.Field(&q.Month,
			validation.When(q.ByMonth,
				validation.Required.Error("must be between 1 and 12"),
				validation.Min(1).Error("must be between 1 and 12"),
				validation.Max(12).Error("must be between 1 and 12"),
			),
		),
	))
}

func sortKeys() []any {
	keys := make([]any, 0, len(SortColumns))
	for k := range SortColumns {
		keys = append(keys, k)
	}
	return keys
}
