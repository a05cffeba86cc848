package http

// ErrorResponse is the uniform error body across the catalog API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CandidateRequest struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ResumeURL   string `json:"resume_url,omitempty"`
	Category    string `json:"category"`
}

type CandidateResponse struct {
	CandidateID     string `json:"candidate_id"`
	Name            string `json:"name"`
	Title           string `json:"title,omitempty"`
	Description     string `json:"description,omitempty"`
	ResumeURL       string `json:"resume_url,omitempty"`
	Category        string `json:"category"`
	Round2Qualified bool   `json:"round2_qualified"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

type CandidateListResponse struct {
	Items []CandidateResponse `json:"items"`
}

type ReplaceQualifiedRequest struct {
	CandidateIDs []string `json:"candidate_ids"`
}

type ReplaceQualifiedResponse struct {
	QualifiedCount int `json:"qualified_count"`
}

type ImportResponse struct {
	Imported     int      `json:"imported"`
	Skipped      int      `json:"skipped"`
	SkippedNames []string `json:"skipped_names"`
}
