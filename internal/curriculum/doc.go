// Package curriculum extracts a degree program's course plan from a LiU programplan page.
//
// The curriculum package resolves the field-of-study filter into a FieldOfStudyMap, walks
// the plan (program, term, specialization, period, course row) and accumulates one Variant
// per distinct term/period/block combination of each course code. A course that appears
// under several specializations is tagged with every specialization it appears under.
package curriculum
