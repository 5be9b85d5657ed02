package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/tournament-predictor/internal/domain/ledger"
	"github.com/riskibarqy/tournament-predictor/internal/domain/outcome"
	"github.com/riskibarqy/tournament-predictor/internal/domain/prediction"
	"github.com/riskibarqy/tournament-predictor/internal/domain/rules"
)

type stubOutcomeRepo struct {
	mu      sync.Mutex
	matches map[string]outcome.MatchOutcome
	bonuses map[string]outcome.BonusOutcome
}

func newStubOutcomeRepo() *stubOutcomeRepo {
	return &stubOutcomeRepo{
		matches: make(map[string]outcome.MatchOutcome),
		bonuses: make(map[string]outcome.BonusOutcome),
	}
}

func (r *stubOutcomeRepo) GetMatch(_ context.Context, id string) (outcome.MatchOutcome, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.matches[id]
	return item, ok, nil
}

func (r *stubOutcomeRepo) UpsertMatch(_ context.Context, item outcome.MatchOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches[item.ID] = item
	return nil
}

func (r *stubOutcomeRepo) ListMatches(_ context.Context) ([]outcome.MatchOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]outcome.MatchOutcome, 0, len(r.matches))
	for _, item := range r.matches {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubOutcomeRepo) GetBonus(_ context.Context, id string) (outcome.BonusOutcome, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.bonuses[id]
	return item, ok, nil
}

func (r *stubOutcomeRepo) UpsertBonus(_ context.Context, item outcome.BonusOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bonuses[item.ID] = item
	return nil
}

func (r *stubOutcomeRepo) ListBonuses(_ context.Context) ([]outcome.BonusOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]outcome.BonusOutcome, 0, len(r.bonuses))
	for _, item := range r.bonuses {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type stubPredictionView struct {
	mu    sync.Mutex
	items []prediction.Prediction
}

func (v *stubPredictionView) ListByOutcome(_ context.Context, ref outcome.Ref) ([]prediction.Prediction, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]prediction.Prediction, 0)
	for _, item := range v.items {
		if item.OutcomeRef == ref {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type stubLedgerRepo struct {
	mu         sync.Mutex
	passes     []ledger.Pass
	entries    []ledger.Entry
	commitErr  error
	commitGate chan struct{}
}

func (r *stubLedgerRepo) CommitPass(_ context.Context, pass ledger.Pass, entries []ledger.Entry) error {
	if r.commitGate != nil {
		<-r.commitGate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.commitErr != nil {
		return r.commitErr
	}

	superseded := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.SupersedesID != "" {
			superseded[entry.SupersedesID] = struct{}{}
		}
	}
	for i := range r.entries {
		if _, ok := superseded[r.entries[i].ID]; ok {
			r.entries[i].Active = false
		}
	}
	r.entries = append(r.entries, entries...)
	r.passes = append(r.passes, pass)
	return nil
}

func (r *stubLedgerRepo) GetLastPass(_ context.Context, ref outcome.Ref) (ledger.Pass, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.passes) - 1; i >= 0; i-- {
		if r.passes[i].OutcomeRef == ref {
			return r.passes[i], true, nil
		}
	}
	return ledger.Pass{}, false, nil
}

func (r *stubLedgerRepo) ListActiveByOutcome(_ context.Context, ref outcome.Ref) ([]ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ledger.Entry, 0)
	for _, entry := range r.entries {
		if entry.OutcomeRef == ref && entry.Active {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *stubLedgerRepo) ListByOutcome(_ context.Context, ref outcome.Ref) ([]ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ledger.Entry, 0)
	for _, entry := range r.entries {
		if entry.OutcomeRef == ref {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *stubLedgerRepo) ListByUser(_ context.Context, userID string) ([]ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ledger.Entry, 0)
	for _, entry := range r.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type seqIDGen struct {
	mu   sync.Mutex
	next int
}

func (g *seqIDGen) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("id-%04d", g.next), nil
}

type scoringFixture struct {
	outcomes    *stubOutcomeRepo
	predictions *stubPredictionView
	ledger      *stubLedgerRepo
	service     *ScoringService
}

func newScoringFixture(t *testing.T) *scoringFixture {
	t.Helper()

	outcomes := newStubOutcomeRepo()
	predictions := &stubPredictionView{}
	ledgerRepo := &stubLedgerRepo{}

	service := NewScoringService(outcomes, predictions, ledgerRepo, rules.DefaultConfig(), &seqIDGen{}, nil, nil)
	service.now = func() time.Time {
		return time.Date(2026, time.June, 14, 21, 0, 0, 0, time.UTC)
	}

	return &scoringFixture{
		outcomes:    outcomes,
		predictions: predictions,
		ledger:      ledgerRepo,
		service:     service,
	}
}

func intPtr(v int) *int { return &v }

func matchPrediction(id, userID, matchID string, home, away int) prediction.Prediction {
	return prediction.Prediction{
		ID:         id,
		UserID:     userID,
		OutcomeRef: outcome.MatchRef(matchID),
		HomeScore:  intPtr(home),
		AwayScore:  intPtr(away),
	}
}

func finalMatch(id string, home, away int) outcome.MatchOutcome {
	return outcome.MatchOutcome{
		ID:         id,
		HomeTeamID: "t-home",
		AwayTeamID: "t-away",
		HomeScore:  intPtr(home),
		AwayScore:  intPtr(away),
		Status:     outcome.StatusFinal,
	}
}

func TestScoringService_TriggerScoring_AwardsPointsPerCategory(t *testing.T) {
	t.Parallel()

	fx := newScoringFixture(t)
	fx.outcomes.matches["m1"] = finalMatch("m1", 2, 1)
	fx.predictions.items = []prediction.Prediction{
		matchPrediction("p1", "alice", "m1", 2, 1),
		matchPrediction("p2", "bob", "m1", 2, 0),
		matchPrediction("p3", "carol", "m1", 1, 2),
	}

	report, err := fx.service.TriggerScoring(context.Background(), outcome.MatchRef("m1"))
	if err != nil {
		t.Fatalf("TriggerScoring error: %v", err)
	}
	if report.Stage != PassDone || report.Idempotent {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Entries != 3 || report.Superseded != 0 || report.Skipped != 0 {
		t.Fatalf("unexpected counts: %+v", report)
	}

	wantPoints := map[string]int{"alice": 10, "bob": 5, "carol": 0}
	entries, _ := fx.ledger.ListActiveByOutcome(context.Background(), outcome.MatchRef("m1"))
	if len(entries) != 3 {
		t.Fatalf("got %d active entries, want 3", len(entries))
	}
	for _, entry := range entries {
		if entry.Points != wantPoints[entry.UserID] {
			t.Errorf("user %s got %d points, want %d", entry.UserID, entry.Points, wantPoints[entry.UserID])
		}
		if entry.Voided || !entry.Active {
			t.Errorf("entry for %s should be active and not voided: %+v", entry.UserID, entry)
		}
		if entry.RuleVersion != rules.DefaultConfig().Version {
			t.Errorf("entry for %s missing rule version stamp", entry.UserID)
		}
		if entry.PassID != report.PassID {
			t.Errorf("entry for %s not stamped with pass id", entry.UserID)
		}
	}
}

func TestScoringService_TriggerScoring_RetriggerIsIdempotent(t *testing.T) {
	t.Parallel()

	fx := newScoringFixture(t)
	fx.outcomes.matches["m1"] = finalMatch("m1", 2, 1)
	fx.predictions.items = []prediction.Prediction{
		matchPrediction("p1", "alice", "m1", 2, 1),
	}

	first, err := fx.service.TriggerScoring(context.Background(), outcome.MatchRef("m1"))
	if err != nil {
		t.Fatalf("first TriggerScoring error: %v", err)
	}
	second, err := fx.service.TriggerScoring(context.Background(), outcome.MatchRef("m1"))
	if err != nil {
		t.Fatalf("second TriggerScoring error: %v", err)
	}

	if !second.Idempotent {
		t.Fatalf("second trigger should be idempotent: %+v", second)
	}
	if second.PassID != first.PassID {
		t.Fatalf("idempotent trigger should report the committed pass, got %s want %s", second.PassID, first.PassID)
	}

	entries, _ := fx.ledger.ListByOutcome(context.Background(), outcome.MatchRef("m1"))
	if len(entries) != 1 {
		t.Fatalf("retrigger must not write entries, ledger has %d", len(entries))
	}
}

func TestScoringService_TriggerScoring_CorrectionSupersedesEntries(t *testing.T) {
	t.Parallel()

	fx := newScoringFixture(t)
	fx.outcomes.matches["m1"] = finalMatch("m1", 2, 1)
	fx.predictions.items = []prediction.Prediction{
		matchPrediction("p1", "alice", "m1", 2, 1),
		matchPrediction("p2", "bob", "m1", 1, 1),
	}

	if _, err := fx.service.TriggerScoring(context.Background(), outcome.MatchRef("m1")); err != nil {
		t.Fatalf("initial TriggerScoring error: %v", err)
	}

	corrected := fx.outcomes.matches["m1"]
	if _, changed, err := corrected.Correct(outcome.MatchResult{HomeScore: 1, AwayScore: 1}, time.Now()); err != nil || !changed {
		t.Fatalf("Correct failed: changed=%v err=%v", changed, err)
	}
	fx.outcomes.matches["m1"] = corrected

	report, err := fx.service.TriggerScoring(context.Background(), outcome.MatchRef("m1"))
	if err != nil {
		t.Fatalf("correction TriggerScoring error: %v", err)
	}
	if report.Idempotent {
		t.Fatal("corrected result must not be treated as idempotent")
	}
	if report.Superseded != 2 {
		t.Fatalf("got %d superseded, want 2", report.Superseded)
	}

	all, _ := fx.ledger.ListByOutcome(context.Background(), outcome.MatchRef("m1"))
	if len(all) != 4 {
		t.Fatalf("ledger should retain superseded entries, got %d want 4", len(all))
	}

	active, _ := fx.ledger.ListActiveByOutcome(context.Background(), outcome.MatchRef("m1"))
	if len(active) != 2 {
		t.Fatalf("got %d active entries, want 2", len(active))
	}
	wantPoints := map[string]int{"alice": 0, "bob": 10}
	for _, entry := range active {
		if entry.Points != wantPoints[entry.UserID] {
			t.Errorf("user %s got %d points after correction, want %d", entry.UserID, entry.Points, wantPoints[entry.UserID])
		}
		if entry.SupersedesID == "" {
			t.Errorf("corrected entry for %s should reference the entry it supersedes", entry.UserID)
		}
	}
}

func TestScoringService_TriggerScoring_CorrectionKeepsUnchangedEntries(t *testing.T) {
	t.Parallel()

	fx := newScoringFixture(t)
	fx.outcomes.matches["m1"] = finalMatch("m1", 2, 1)
	fx.predictions.items = []prediction.Prediction{
		matchPrediction("p1", "alice", "m1", 2, 1),
		matchPrediction("p2", "carol", "m1", 0, 2),
	}

	if _, err := fx.service.TriggerScoring(context.Background(), outcome.MatchRef("m1")); err != nil {
		t.Fatalf("initial TriggerScoring error: %v", err)
	}

	// alice drops from exact score to correct direction; carol stays at zero.
	corrected := fx.outcomes.matches["m1"]
	if _, changed, err := corrected.Correct(outcome.MatchResult{HomeScore: 3, AwayScore: 1}, time.Now()); err != nil || !changed {
		t.Fatalf("Correct failed: changed=%v err=%v", changed, err)
	}
	fx.outcomes.matches["m1"] = corrected

	report, err := fx.service.TriggerScoring(context.Background(), outcome.MatchRef("m1"))
	if err != nil {
		t.Fatalf("correction TriggerScoring error: %v", err)
	}
	if report.Entries != 1 || report.Superseded != 1 || report.Unchanged != 1 {
		t.Fatalf("only the changed entry should be superseded: %+v", report)
	}

	all, _ := fx.ledger.ListByOutcome(context.Background(), outcome.MatchRef("m1"))
	if len(all) != 3 {
		t.Fatalf("unchanged user must not get a new entry, ledger has %d want 3", len(all))
	}

	var carolEntries []ledger.Entry
	for _, entry := range all {
		if entry.UserID == "carol" {
			carolEntries = append(carolEntries, entry)
		}
	}
	if len(carolEntries) != 1 || !carolEntries[0].Active || carolEntries[0].SupersedesID != "" {
		t.Fatalf("carol's original entry should stay active and untouched: %+v", carolEntries)
	}

	active, _ := fx.ledger.ListActiveByOutcome(context.Background(), outcome.MatchRef("m1"))
	if len(active) != 2 {
		t.Fatalf("got %d active entries, want 2", len(active))
	}
	for _, entry := range active {
		if entry.UserID == "alice" && (entry.Points != 5 || entry.SupersedesID == "") {
			t.Errorf("alice's entry should be superseded with direction points: %+v", entry)
		}
	}
}

func TestScoringService_TriggerScoring_CancelledOutcomeVoidsEntries(t *testing.T) {
	t.Parallel()

	fx := newScoringFixture(t)
	fx.outcomes.matches["m1"] = outcome.MatchOutcome{
		ID:         "m1",
		HomeTeamID: "t-home",
		AwayTeamID: "t-away",
		Status:     outcome.StatusCancelled,
	}
	fx.predictions.items = []prediction.Prediction{
		matchPrediction("p1", "alice", "m1", 2, 1),
		matchPrediction("p2", "bob", "m1", 0, 0),
	}

	report, err := fx.service.TriggerScoring(context.Background(), outcome.MatchRef("m1"))
	if err != nil {
		t.Fatalf("TriggerScoring error: %v", err)
	}
	if report.Entries != 2 {
		t.Fatalf("cancelled outcome should still write audit entries, got %d", report.Entries)
	}

	entries, _ := fx.ledger.ListActiveByOutcome(context.Background(), outcome.MatchRef("m1"))
	for _, entry := range entries {
		if !entry.Voided || entry.Points != 0 {
			t.Errorf("entry for %s should be voided with zero points: %+v", entry.UserID, entry)
		}
	}
}

func TestScoringService_TriggerScoring_PendingOutcomeFails(t *testing.T) {
	t.Parallel()

	fx := newScoringFixture(t)
	fx.outcomes.matches["m1"] = outcome.MatchOutcome{
		ID:     "m1",
		Status: outcome.StatusLive,
	}

	_, err := fx.service.TriggerScoring(context.Background(), outcome.MatchRef("m1"))
	if !errors.Is(err, ErrOutcomePending) {
		t.Fatalf("got %v, want ErrOutcomePending", err)
	}

	entries, _ := fx.ledger.ListByOutcome(context.Background(), outcome.MatchRef("m1"))
	if len(entries) != 0 {
		t.Fatalf("pending outcome must not write entries, got %d", len(entries))
	}
}

func TestScoringService_TriggerScoring_MalformedPredictionIsSkipped(t *testing.T) {
	t.Parallel()

	fx := newScoringFixture(t)
	fx.outcomes.matches["m1"] = finalMatch("m1", 2, 1)
	fx.predictions.items = []prediction.Prediction{
		matchPrediction("p1", "alice", "m1", 2, 1),
		{
			// Bonus-shaped prediction stored against a match outcome.
			ID:         "p2",
			UserID:     "mallory",
			OutcomeRef: outcome.MatchRef("m1"),
			Answer:     &outcome.Answer{EntityID: "team-x"},
		},
	}

	report, err := fx.service.TriggerScoring(context.Background(), outcome.MatchRef("m1"))
	if err != nil {
		t.Fatalf("TriggerScoring error: %v", err)
	}
	if report.Skipped != 1 || report.Entries != 1 {
		t.Fatalf("malformed prediction should be skipped without failing the pass: %+v", report)
	}

	entries, _ := fx.ledger.ListActiveByOutcome(context.Background(), outcome.MatchRef("m1"))
	if len(entries) != 1 || entries[0].UserID != "alice" {
		t.Fatalf("only the well-formed prediction should have an entry: %+v", entries)
	}
}

func TestScoringService_TriggerScoring_CommitFailureLeavesLedgerIntact(t *testing.T) {
	t.Parallel()

	fx := newScoringFixture(t)
	fx.outcomes.matches["m1"] = finalMatch("m1", 2, 1)
	fx.predictions.items = []prediction.Prediction{
		matchPrediction("p1", "alice", "m1", 2, 1),
	}
	fx.ledger.commitErr = errors.New("connection reset")

	_, err := fx.service.TriggerScoring(context.Background(), outcome.MatchRef("m1"))
	if !errors.Is(err, ErrCommitFailed) {
		t.Fatalf("got %v, want ErrCommitFailed", err)
	}

	entries, _ := fx.ledger.ListByOutcome(context.Background(), outcome.MatchRef("m1"))
	if len(entries) != 0 {
		t.Fatalf("failed commit must leave no entries, got %d", len(entries))
	}

	// The pass is safe to retry once the store recovers.
	fx.ledger.commitErr = nil
	report, err := fx.service.TriggerScoring(context.Background(), outcome.MatchRef("m1"))
	if err != nil {
		t.Fatalf("retry TriggerScoring error: %v", err)
	}
	if report.Entries != 1 {
		t.Fatalf("retry should commit the pass, got %+v", report)
	}
}

func TestScoringService_TriggerScoring_ConcurrentTriggerIsRejected(t *testing.T) {
	t.Parallel()

	fx := newScoringFixture(t)
	fx.outcomes.matches["m1"] = finalMatch("m1", 2, 1)
	fx.predictions.items = []prediction.Prediction{
		matchPrediction("p1", "alice", "m1", 2, 1),
	}
	gate := make(chan struct{})
	fx.ledger.commitGate = gate

	firstDone := make(chan error, 1)
	go func() {
		_, err := fx.service.TriggerScoring(context.Background(), outcome.MatchRef("m1"))
		firstDone <- err
	}()

	// Wait until the first pass holds the lock and is parked on commit.
	deadline := time.After(2 * time.Second)
	for !fx.service.locks.Held("match:m1") {
		select {
		case <-deadline:
			t.Fatal("first pass never acquired the outcome lock")
		case <-time.After(time.Millisecond):
		}
	}

	_, err := fx.service.TriggerScoring(context.Background(), outcome.MatchRef("m1"))
	if !errors.Is(err, ErrScoringInProgress) {
		t.Fatalf("got %v, want ErrScoringInProgress", err)
	}

	close(gate)
	if err := <-firstDone; err != nil {
		t.Fatalf("first TriggerScoring error: %v", err)
	}

	// The lock is released after commit; a re-trigger is a clean no-op.
	report, err := fx.service.TriggerScoring(context.Background(), outcome.MatchRef("m1"))
	if err != nil {
		t.Fatalf("post-commit TriggerScoring error: %v", err)
	}
	if !report.Idempotent {
		t.Fatalf("expected idempotent re-trigger, got %+v", report)
	}
}

func TestScoringService_TriggerScoring_RuleVersionChangeForcesRescore(t *testing.T) {
	t.Parallel()

	fx := newScoringFixture(t)
	fx.outcomes.matches["m1"] = finalMatch("m1", 2, 1)
	fx.predictions.items = []prediction.Prediction{
		matchPrediction("p1", "alice", "m1", 2, 0),
	}

	if _, err := fx.service.TriggerScoring(context.Background(), outcome.MatchRef("m1")); err != nil {
		t.Fatalf("initial TriggerScoring error: %v", err)
	}

	fx.service.ruleConfig.Version = "v2"
	fx.service.ruleConfig.CorrectOutcomePoints = 7

	report, err := fx.service.TriggerScoring(context.Background(), outcome.MatchRef("m1"))
	if err != nil {
		t.Fatalf("rescore TriggerScoring error: %v", err)
	}
	if report.Idempotent {
		t.Fatal("rule version change must force a new pass")
	}

	active, _ := fx.ledger.ListActiveByOutcome(context.Background(), outcome.MatchRef("m1"))
	if len(active) != 1 || active[0].Points != 7 || active[0].RuleVersion != "v2" {
		t.Fatalf("active entry should carry the new rule version and weight: %+v", active)
	}
}

func TestScoringService_GetUserTotal_SkipsInactiveAndVoided(t *testing.T) {
	t.Parallel()

	fx := newScoringFixture(t)
	fx.ledger.entries = []ledger.Entry{
		{ID: "e1", UserID: "alice", OutcomeRef: outcome.MatchRef("m1"), Points: 10, Active: true},
		{ID: "e2", UserID: "alice", OutcomeRef: outcome.MatchRef("m2"), Points: 5, Active: false},
		{ID: "e3", UserID: "alice", OutcomeRef: outcome.MatchRef("m3"), Points: 0, Active: true, Voided: true},
		{ID: "e4", UserID: "alice", OutcomeRef: outcome.BonusRef("b1"), Points: 6, Active: true},
	}

	total, err := fx.service.GetUserTotal(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserTotal error: %v", err)
	}
	if total.Points != 16 || total.Entries != 2 {
		t.Fatalf("unexpected total: %+v", total)
	}
}
