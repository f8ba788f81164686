// Package store persists named record collections as one JSON document per
// collection, laid out as {recordKey: {field: value}} under a base data
// directory.
//
// Reads never fail: a missing or malformed document is an empty collection.
// Documents written by older versions as bare JSON lists are re-keyed on
// read (see Options.LegacyKeys, AssignmentKey and ExamKey) and written back
// in the keyed layout on the next Save.
package store
