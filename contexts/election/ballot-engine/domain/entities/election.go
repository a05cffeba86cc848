package entities

import "time"

// ElectionPhase is the lifecycle position of the two-round election. Phases
// only ever move forward through the transition table below.
type ElectionPhase string

const (
	PhaseNotStarted   ElectionPhase = "not_started"
	PhaseRound1Voting ElectionPhase = "round1_voting"
	PhaseRound1Ended  ElectionPhase = "round1_ended"
	PhaseRound2Voting ElectionPhase = "round2_voting"
	PhaseRound2Ended  ElectionPhase = "round2_ended"
)

// PhaseCommand is an explicit admin lifecycle command.
type PhaseCommand string

const (
	CommandStartRound1 PhaseCommand = "start-round1"
	CommandEndRound1   PhaseCommand = "end-round1"
	CommandStartRound2 PhaseCommand = "start-round2"
	CommandEndRound2   PhaseCommand = "end-round2"
)

type phaseTransition struct {
	From ElectionPhase
	To   ElectionPhase
}

// phaseTransitions is the closed command table. Any (command, phase) pair not
// listed here is an invalid transition and must leave state untouched.
var phaseTransitions = map[PhaseCommand]phaseTransition{
	CommandStartRound1: {From: PhaseNotStarted, To: PhaseRound1Voting},
	CommandEndRound1:   {From: PhaseRound1Voting, To: PhaseRound1Ended},
	CommandStartRound2: {From: PhaseRound1Ended, To: PhaseRound2Voting},
	CommandEndRound2:   {From: PhaseRound2Voting, To: PhaseRound2Ended},
}

// TransitionFor resolves the required source and target phase for a command.
func TransitionFor(cmd PhaseCommand) (from ElectionPhase, to ElectionPhase, ok bool) {
	transition, ok := phaseTransitions[cmd]
	if !ok {
		return "", "", false
	}
	return transition.From, transition.To, true
}

// Apply returns the successor phase for cmd, or false when cmd is not legal
// from the current phase.
func (p ElectionPhase) Apply(cmd PhaseCommand) (ElectionPhase, bool) {
	transition, ok := phaseTransitions[cmd]
	if !ok || transition.From != p {
		return p, false
	}
	return transition.To, true
}

// ActiveRound reports which round accepts ballots in this phase: 1, 2, or 0
// when no voting window is open.
func (p ElectionPhase) ActiveRound() int {
	switch p {
	case PhaseRound1Voting:
		return 1
	case PhaseRound2Voting:
		return 2
	default:
		return 0
	}
}

// Category partitions candidates for quota and result bucketing.
type Category string

const (
	CategoryDirector Category = "director"
	CategoryManager  Category = "manager"
)

func ParseCategory(raw string) (Category, bool) {
	switch Category(raw) {
	case CategoryDirector, CategoryManager:
		return Category(raw), true
	default:
		return "", false
	}
}

// VoteType is the closed ballot decision enumeration.
type VoteType string

const (
	VoteTypeApprove VoteType = "approve"
	VoteTypeOppose  VoteType = "oppose"
	VoteTypeAbstain VoteType = "abstain"
)

func ParseVoteType(raw string) (VoteType, bool) {
	switch VoteType(raw) {
	case VoteTypeApprove, VoteTypeOppose, VoteTypeAbstain:
		return VoteType(raw), true
	default:
		return "", false
	}
}

// Ballot is one voter's decision on one candidate in one round. Ballots are
// immutable; the triple (VoterID, CandidateID, Round) is unique.
type Ballot struct {
	BallotID    string
	VoterID     string
	CandidateID string
	Round       int
	Type        VoteType
	CreatedAt   time.Time
}

// ElectionState is the singleton configuration and status record. Exactly one
// instance exists for the life of the election.
type ElectionState struct {
	Phase ElectionPhase

	Round1DirectorMaxApprove int
	Round1ManagerMaxApprove  int
	Round2DirectorMaxApprove int
	Round2ManagerMaxApprove  int

	DirectorQualifyCount int
	ManagerQualifyCount  int
	DirectorElectCount   int
	ManagerElectCount    int

	UpdatedAt time.Time
}

// DefaultElectionState mirrors the seeded configuration row.
func DefaultElectionState() ElectionState {
	return ElectionState{
		Phase:                    PhaseNotStarted,
		Round1DirectorMaxApprove: 60,
		Round1ManagerMaxApprove:  15,
		Round2DirectorMaxApprove: 40,
		Round2ManagerMaxApprove:  10,
		DirectorQualifyCount:     60,
		ManagerQualifyCount:      15,
		DirectorElectCount:       40,
		ManagerElectCount:        10,
	}
}

// MaxApprove returns the per-batch approve quota for a round and category.
func (s ElectionState) MaxApprove(round int, category Category) int {
	switch {
	case round == 1 && category == CategoryDirector:
		return s.Round1DirectorMaxApprove
	case round == 1 && category == CategoryManager:
		return s.Round1ManagerMaxApprove
	case round == 2 && category == CategoryDirector:
		return s.Round2DirectorMaxApprove
	case round == 2 && category == CategoryManager:
		return s.Round2ManagerMaxApprove
	default:
		return 0
	}
}

// ActiveRound derives the round currently accepting ballots from the phase.
func (s ElectionState) ActiveRound() int {
	return s.Phase.ActiveRound()
}

// CandidateTally is one row of a round result. Candidates without ballots
// still appear with zero counts.
type CandidateTally struct {
	CandidateID   string
	CandidateName string
	Category      Category
	ApproveCount  int64
	OpposeCount   int64
	AbstainCount  int64
}

// LiveSummary is the recomputable live-display view over committed ballots.
type LiveSummary struct {
	Phase        ElectionPhase
	CurrentRound int
	VoterCount   int64
	Directors    []CandidateTally
	Managers     []CandidateTally
}
