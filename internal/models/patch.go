package models

// NullableInt is a three-state patch field for a nullable integer column
// (the story→epic reference, story points). The zero value leaves the column
// untouched, which is how "field omitted" stays distinct from "field
// explicitly cleared".
type NullableInt struct {
	Set   bool  // write the column at all
	Valid bool  // false writes NULL
	Int64 int64 // value written when Valid
}

// SetInt returns a patch field that writes v.
func SetInt(v int64) NullableInt {
	return NullableInt{Set: true, Valid: true, Int64: v}
}

// ClearInt returns a patch field that writes NULL.
func ClearInt() NullableInt {
	return NullableInt{Set: true}
}
