package resend

// Email is a single outbound message.
type Email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// SendResponse is the successful response body for POST /emails.
type SendResponse struct {
	ID string `json:"id"`
}

// ErrorResponse is the error response body returned by the API.
type ErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}
