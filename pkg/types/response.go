package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorEnvelope is the body of every non-2xx API response.
type ErrorEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
	ErrorCode  string `json:"errorCode"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
	Details    any    `json:"details,omitempty"`
}

// Page carries a cursor-paginated list.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}
