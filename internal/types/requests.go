package types

// SubmitQueryRequest represents the request body for submitting a search query
type SubmitQueryRequest struct {
	Query string `json:"query"`
}
