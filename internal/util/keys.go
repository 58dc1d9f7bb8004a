package util

// Key returns id namespaced under prefix as "<prefix>:<id>". An empty prefix
// leaves id untouched so keys stay readable by consumers that look up the bare
// signature.
func Key(prefix, id string) string {
	if prefix == "" {
		return id
	}
	return prefix + ":" + id
}
