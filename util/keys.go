package util

// Contains checks if a string slice contains an item
func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// ContainsAny reports whether item appears in any of the slices
func ContainsAny(item string, slices ...[]string) bool {
	for _, s := range slices {
		if Contains(s, item) {
			return true
		}
	}
	return false
}

// AddKey returns a copy of slice with item appended unless already present.
// The input slice is not modified and the result is never nil.
func AddKey(slice []string, item string) []string {
	out := make([]string, len(slice), len(slice)+1)
	copy(out, slice)
	if Contains(out, item) {
		return out
	}
	return append(out, item)
}

// RemoveKey returns slice without any occurrence of item, preserving order.
// The input slice is not modified and the result is never nil.
func RemoveKey(slice []string, item string) []string {
	out := make([]string, 0, len(slice))
	for _, s := range slice {
		if s != item {
			out = append(out, s)
		}
	}
	return out
}

// Unique drops duplicates and empty strings, keeping first occurrences
func Unique(slice []string) []string {
	seen := make(map[string]bool, len(slice))
	out := make([]string, 0, len(slice))
	for _, s := range slice {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
