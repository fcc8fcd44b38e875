package response

// Envelope is the uniform body for every API response. Status carries
// "success" or "error", Data the success payload, and Errors the failure
// detail (validation messages or the apperror kind).
type Envelope struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}
