package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type StatusResponse struct {
	Phase                    string `json:"phase"`
	CurrentRound             int    `json:"current_round"`
	Round1DirectorMaxApprove int    `json:"round1_director_max_approve"`
	Round1ManagerMaxApprove  int    `json:"round1_manager_max_approve"`
	Round2DirectorMaxApprove int    `json:"round2_director_max_approve"`
	Round2ManagerMaxApprove  int    `json:"round2_manager_max_approve"`
	DirectorQualifyCount     int    `json:"director_qualify_count"`
	ManagerQualifyCount      int    `json:"manager_qualify_count"`
	DirectorElectCount       int    `json:"director_elect_count"`
	ManagerElectCount        int    `json:"manager_elect_count"`
}

type CandidateItem struct {
	CandidateID     string `json:"candidate_id"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	Round2Qualified bool   `json:"round2_qualified"`
}

type CandidatesResponse struct {
	Round int             `json:"round"`
	Items []CandidateItem `json:"items"`
}

type CheckResponse struct {
	HasVoted bool `json:"has_voted"`
}

type SubmitRequest struct {
	VoterID string            `json:"voter_id"`
	Round   int               `json:"round"`
	Votes   map[string]string `json:"votes"`
}

type SubmitResponse struct {
	BallotCount int `json:"ballot_count"`
}

type ResultItem struct {
	CandidateID   string `json:"candidate_id"`
	CandidateName string `json:"candidate_name"`
	Category      string `json:"category"`
	ApproveCount  int64  `json:"approve_count"`
	OpposeCount   int64  `json:"oppose_count"`
	AbstainCount  int64  `json:"abstain_count"`
}

type ResultsResponse struct {
	Round int          `json:"round"`
	Items []ResultItem `json:"items"`
}

type LiveSummaryResponse struct {
	Phase        string       `json:"phase"`
	CurrentRound int          `json:"current_round"`
	VoterCount   int64        `json:"voter_count"`
	Directors    []ResultItem `json:"directors"`
	Managers     []ResultItem `json:"managers"`
}

type UpdateConfigRequest struct {
	Round1DirectorMaxApprove *int `json:"round1_director_max_approve,omitempty"`
	Round1ManagerMaxApprove  *int `json:"round1_manager_max_approve,omitempty"`
	Round2DirectorMaxApprove *int `json:"round2_director_max_approve,omitempty"`
	Round2ManagerMaxApprove  *int `json:"round2_manager_max_approve,omitempty"`
	DirectorQualifyCount     *int `json:"director_qualify_count,omitempty"`
	ManagerQualifyCount      *int `json:"manager_qualify_count,omitempty"`
	DirectorElectCount       *int `json:"director_elect_count,omitempty"`
	ManagerElectCount        *int `json:"manager_elect_count,omitempty"`
}

type TransitionResponse struct {
	Phase string `json:"phase"`
}
