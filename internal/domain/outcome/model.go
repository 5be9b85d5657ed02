package outcome

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"
)

var (
	ErrInvalidTransition = errors.New("invalid outcome transition")
	ErrUnknownBonusType  = errors.New("unknown bonus question type")
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinal     = "FINAL"
	StatusCorrected = "CORRECTED"
	StatusCancelled = "CANCELLED"

	StatusOpen     = "OPEN"
	StatusResolved = "RESOLVED"
	StatusRevised  = "REVISED"
)

const (
	KindMatch = "match"
	KindBonus = "bonus"
)

// Ref identifies one scorable outcome, match or bonus question.
type Ref struct {
	Kind string
	ID   string
}

func MatchRef(id string) Ref { return Ref{Kind: KindMatch, ID: id} }
func BonusRef(id string) Ref { return Ref{Kind: KindBonus, ID: id} }

func (r Ref) String() string {
	return r.Kind + ":" + r.ID
}

func (r Ref) IsZero() bool {
	return r.Kind == "" || r.ID == ""
}

func ParseRef(raw string) (Ref, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return Ref{}, fmt.Errorf("invalid outcome ref %q, expected kind:id", raw)
	}
	kind := strings.ToLower(strings.TrimSpace(parts[0]))
	id := strings.TrimSpace(parts[1])
	if (kind != KindMatch && kind != KindBonus) || id == "" {
		return Ref{}, fmt.Errorf("invalid outcome ref %q, expected kind:id", raw)
	}
	return Ref{Kind: kind, ID: id}, nil
}

type BonusQuestionType string

const (
	BonusWinner            BonusQuestionType = "WINNER"
	BonusTopScorer         BonusQuestionType = "TOP_SCORER"
	BonusMostGoalsGroup    BonusQuestionType = "MOST_GOALS_GROUP"
	BonusMostConcededGroup BonusQuestionType = "MOST_CONCEDED_GROUP"
	BonusRoundOf16Teams    BonusQuestionType = "ROUND_OF_16_TEAMS"
	BonusQuarterFinalTeams BonusQuestionType = "QUARTER_FINAL_TEAMS"
	BonusSemiFinalTeams    BonusQuestionType = "SEMI_FINAL_TEAMS"
	BonusFinalTeams        BonusQuestionType = "FINAL_TEAMS"
)

var AllBonusTypes = map[BonusQuestionType]struct{}{
	BonusWinner:            {},
	BonusTopScorer:         {},
	BonusMostGoalsGroup:    {},
	BonusMostConcededGroup: {},
	BonusRoundOf16Teams:    {},
	BonusQuarterFinalTeams: {},
	BonusSemiFinalTeams:    {},
	BonusFinalTeams:        {},
}

// IsEntityBonus reports whether the type resolves to a single entity id.
func IsEntityBonus(t BonusQuestionType) bool {
	return t == BonusWinner || t == BonusTopScorer
}

// IsTeamSetBonus reports whether the type resolves to a set of team ids.
func IsTeamSetBonus(t BonusQuestionType) bool {
	switch t {
	case BonusRoundOf16Teams, BonusQuarterFinalTeams, BonusSemiFinalTeams, BonusFinalTeams:
		return true
	default:
		return false
	}
}

// IsGroupBonus reports whether the type resolves to a group→team map.
func IsGroupBonus(t BonusQuestionType) bool {
	return t == BonusMostGoalsGroup || t == BonusMostConcededGroup
}

// MatchResult is the final score of a match.
type MatchResult struct {
	HomeScore int
	AwayScore int
}

// Direction returns the sign of home−away: 1 home win, -1 away win, 0 draw.
func (r MatchResult) Direction() int {
	switch {
	case r.HomeScore > r.AwayScore:
		return 1
	case r.HomeScore < r.AwayScore:
		return -1
	default:
		return 0
	}
}

// Answer is the resolved payload of a bonus question. Exactly one of the
// fields is populated depending on the question type.
type Answer struct {
	EntityID    string
	TeamIDs     []string
	TeamByGroup map[string]string
}

// Matches reports whether the answer shape fits the question type.
func (a Answer) Matches(t BonusQuestionType) bool {
	switch {
	case IsEntityBonus(t):
		return a.EntityID != "" && len(a.TeamIDs) == 0 && len(a.TeamByGroup) == 0
	case IsTeamSetBonus(t):
		return len(a.TeamIDs) > 0 && a.EntityID == "" && len(a.TeamByGroup) == 0
	case IsGroupBonus(t):
		return len(a.TeamByGroup) > 0 && a.EntityID == "" && len(a.TeamIDs) == 0
	default:
		return false
	}
}

// MatchOutcome is owned by the tournament-state collaborator. Scores stay nil
// until the status is FINAL or CORRECTED.
type MatchOutcome struct {
	ID         string
	HomeTeamID string
	AwayTeamID string
	HomeScore  *int
	AwayScore  *int
	Status     string
	KickoffAt  time.Time
	UpdatedAt  time.Time
}

func (m MatchOutcome) Ref() Ref { return MatchRef(m.ID) }

// IsTerminal reports whether the outcome can be scored.
func (m MatchOutcome) IsTerminal() bool {
	switch m.Status {
	case StatusFinal, StatusCorrected, StatusCancelled:
		return true
	default:
		return false
	}
}

func (m MatchOutcome) Result() (MatchResult, bool) {
	if m.HomeScore == nil || m.AwayScore == nil {
		return MatchResult{}, false
	}
	return MatchResult{HomeScore: *m.HomeScore, AwayScore: *m.AwayScore}, true
}

// Begin transitions SCHEDULED → LIVE.
func (m *MatchOutcome) Begin(now time.Time) error {
	if m.Status != StatusScheduled {
		return fmt.Errorf("%w: cannot begin match %s from %s", ErrInvalidTransition, m.ID, m.Status)
	}
	m.Status = StatusLive
	m.UpdatedAt = now
	return nil
}

// Finalize transitions SCHEDULED/LIVE → FINAL and records the result.
func (m *MatchOutcome) Finalize(result MatchResult, now time.Time) error {
	switch m.Status {
	case StatusScheduled, StatusLive:
	default:
		return fmt.Errorf("%w: cannot finalize match %s from %s", ErrInvalidTransition, m.ID, m.Status)
	}
	if result.HomeScore < 0 || result.AwayScore < 0 {
		return fmt.Errorf("%w: match %s scores must be >= 0", ErrInvalidTransition, m.ID)
	}

	home, away := result.HomeScore, result.AwayScore
	m.HomeScore = &home
	m.AwayScore = &away
	m.Status = StatusFinal
	m.UpdatedAt = now
	return nil
}

// Correct transitions FINAL/CORRECTED → CORRECTED with a new result. When the
// new result equals the recorded one it is a no-op and reports changed=false,
// so no scoring pass is triggered.
func (m *MatchOutcome) Correct(result MatchResult, now time.Time) (previous MatchResult, changed bool, err error) {
	switch m.Status {
	case StatusFinal, StatusCorrected:
	default:
		return MatchResult{}, false, fmt.Errorf("%w: cannot correct match %s from %s", ErrInvalidTransition, m.ID, m.Status)
	}
	if result.HomeScore < 0 || result.AwayScore < 0 {
		return MatchResult{}, false, fmt.Errorf("%w: match %s scores must be >= 0", ErrInvalidTransition, m.ID)
	}

	current, _ := m.Result()
	if current == result {
		return current, false, nil
	}

	home, away := result.HomeScore, result.AwayScore
	m.HomeScore = &home
	m.AwayScore = &away
	m.Status = StatusCorrected
	m.UpdatedAt = now
	return current, true, nil
}

// Cancel moves any non-terminal match to CANCELLED. Scores are cleared;
// predictions against it score zero and their ledger entries are voided.
func (m *MatchOutcome) Cancel(now time.Time) error {
	if m.IsTerminal() {
		return fmt.Errorf("%w: cannot cancel match %s from %s", ErrInvalidTransition, m.ID, m.Status)
	}
	m.HomeScore = nil
	m.AwayScore = nil
	m.Status = StatusCancelled
	m.UpdatedAt = now
	return nil
}

// ResultHash is a content hash of the scorable result, used to detect
// re-triggers for an unchanged outcome.
func (m MatchOutcome) ResultHash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(m.Status))
	if result, ok := m.Result(); ok {
		fmt.Fprintf(h, "|%d-%d", result.HomeScore, result.AwayScore)
	}
	return h.Sum64()
}

// BonusOutcome is one bonus-question instance. The answer is present iff the
// status is not OPEN (or the question was cancelled).
type BonusOutcome struct {
	ID        string
	Type      BonusQuestionType
	Answer    *Answer
	Status    string
	UpdatedAt time.Time
}

func (b BonusOutcome) Ref() Ref { return BonusRef(b.ID) }

func (b BonusOutcome) IsTerminal() bool {
	switch b.Status {
	case StatusResolved, StatusRevised, StatusCancelled:
		return true
	default:
		return false
	}
}

// Resolve transitions OPEN → RESOLVED with the answer.
func (b *BonusOutcome) Resolve(answer Answer, now time.Time) error {
	if b.Status != StatusOpen {
		return fmt.Errorf("%w: cannot resolve bonus %s from %s", ErrInvalidTransition, b.ID, b.Status)
	}
	if !answer.Matches(b.Type) {
		return fmt.Errorf("%w: answer shape does not fit bonus type %s", ErrInvalidTransition, b.Type)
	}

	b.Answer = &answer
	b.Status = StatusResolved
	b.UpdatedAt = now
	return nil
}

// Revise transitions RESOLVED/REVISED → REVISED with a new answer; an equal
// answer is a no-op with changed=false.
func (b *BonusOutcome) Revise(answer Answer, now time.Time) (changed bool, err error) {
	switch b.Status {
	case StatusResolved, StatusRevised:
	default:
		return false, fmt.Errorf("%w: cannot revise bonus %s from %s", ErrInvalidTransition, b.ID, b.Status)
	}
	if !answer.Matches(b.Type) {
		return false, fmt.Errorf("%w: answer shape does not fit bonus type %s", ErrInvalidTransition, b.Type)
	}

	if b.Answer != nil && answersEqual(*b.Answer, answer) {
		return false, nil
	}

	b.Answer = &answer
	b.Status = StatusRevised
	b.UpdatedAt = now
	return true, nil
}

// Cancel moves an OPEN question to CANCELLED.
func (b *BonusOutcome) Cancel(now time.Time) error {
	if b.IsTerminal() {
		return fmt.Errorf("%w: cannot cancel bonus %s from %s", ErrInvalidTransition, b.ID, b.Status)
	}
	b.Answer = nil
	b.Status = StatusCancelled
	b.UpdatedAt = now
	return nil
}

func (b BonusOutcome) ResultHash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(b.Status))
	if b.Answer != nil {
		h.Write([]byte("|" + canonicalAnswer(*b.Answer)))
	}
	return h.Sum64()
}

func answersEqual(a, b Answer) bool {
	return canonicalAnswer(a) == canonicalAnswer(b)
}

// canonicalAnswer renders the answer in a stable order so hashing and
// comparison do not depend on slice or map iteration order.
func canonicalAnswer(a Answer) string {
	var sb strings.Builder
	sb.WriteString("e=")
	sb.WriteString(a.EntityID)

	teams := append([]string(nil), a.TeamIDs...)
	sort.Strings(teams)
	sb.WriteString(";t=")
	sb.WriteString(strings.Join(teams, ","))

	groups := make([]string, 0, len(a.TeamByGroup))
	for group := range a.TeamByGroup {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	sb.WriteString(";g=")
	for i, group := range groups {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(group)
		sb.WriteString(":")
		sb.WriteString(a.TeamByGroup[group])
	}
	return sb.String()
}
