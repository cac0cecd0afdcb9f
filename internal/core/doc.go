// Package core provides the business logic for the employee directory.
//
// This package holds all domain logic independent of the HTTP layer and of
// the storage engine. It can be used by web handlers, CLI tools, or tests
// without modification.
//
// # Import Pipeline
//
// A CSV import runs in three stages:
//
//  1. [LoadEmployees] opens a named text resource through a [TextOpener] and
//     hands the decoded stream to [ParseEmployees].
//  2. Each parsed [EmployeeInput] is mapped to an [Employee] by [ToEmployee].
//     Birth dates go through [ParseDate] with [BirthDateRules]; a value no rule
//     accepts becomes an absent birth date and is logged.
//  3. [PersistBatch] writes the whole batch with one call to the store.
//
// [Service.Import] ties the stages together. Any failure aborts the run and
// nothing from the run is applied.
//
// # Errors
//
// Failures carry one of the sentinel kinds [ErrParse], [ErrStorage],
// [ErrNotFound], [ErrValidation] or [ErrDateFormatUnrecognized]. Use
// errors.Is to branch on them and [MapError] to turn them into messages
// suitable for end users.
package core
