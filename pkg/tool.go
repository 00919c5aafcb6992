package pkg

// Contains reports whether list holds want
func Contains[T comparable](list []T, want T) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
