package model

// TruncateString cuts a string down to the given maximum length, keeping it
// inside the varchar bounds of the edge tables.
func TruncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength]
}
