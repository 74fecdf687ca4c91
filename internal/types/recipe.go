package types

// Recipe is a single dish returned by the recipe lookup API.
// Optional fields are nil when the API omits them or sends null.
type Recipe struct {
	ID           string  `json:"id"`
	Name         *string `json:"name,omitempty"`
	ImageURL     *string `json:"image_url,omitempty"`
	Instructions *string `json:"instructions,omitempty"`
}

// StringValue dereferences an optional field, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
