package pointers

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

func Float64(v float64) *float64 { return &v }
func String(v string) *string    { return &v }

// NonEmpty returns nil for blank strings so absent graph properties stay absent.
func NonEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// StringOr dereferences p, substituting def when p is nil or empty.
func StringOr(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}
	return *p
}
