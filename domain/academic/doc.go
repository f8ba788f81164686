// Package academic tracks college assignments and exams.
//
// Both documents group records by upper-cased course and then by the
// upper-cased assignment or exam name. Listings are computed on every read:
// pending items report the days left and carry an URGENT alert within two
// days of the date or OVERDUE once it has passed.
package academic
