package models

// ContactSubmission is a validated and sanitized contact form message
type ContactSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactSettings is the per-locale contact configuration kept in the CMS
type ContactSettings struct {
	RecipientEmail      string `json:"recipient_email"`
	SubjectTemplate     string `json:"email_subject_template"`
	ConfirmationSubject string `json:"confirmation_email_subject"`
}

// ContactResponse is returned after a message was delivered
type ContactResponse struct {
	Message string `json:"message"`
}

// ValidationErrorResponse lists every rule a submission broke
type ValidationErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

// RateLimitedResponse is returned with 429
type RateLimitedResponse struct {
	Error      string `json:"error"`
	RetryAfter int64  `json:"retryAfter"`
}
