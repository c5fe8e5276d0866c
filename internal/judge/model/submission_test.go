package model_test

import (
	"testing"

	"codearena/internal/judge/model"
	appErr "codearena/pkg/errors"
)

func TestSubmissionStatusLifecycle(t *testing.T) {
	terminal := []model.SubmissionStatus{
		model.StatusAccepted,
		model.StatusWrongAnswer,
		model.StatusTimeLimitExceeded,
		model.StatusRuntimeError,
		model.StatusCompilationError,
	}
	for _, s := range terminal {
		if !s.Valid() {
			t.Fatalf("%s should be a valid status", s)
		}
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []model.SubmissionStatus{model.StatusPending, model.StatusRunning} {
		if !s.Valid() {
			t.Fatalf("%s should be a valid status", s)
		}
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
	if model.SubmissionStatus("judged").Valid() {
		t.Fatal("unknown status accepted as valid")
	}
}

func TestSubmissionMessageValidate(t *testing.T) {
	base := model.SubmissionMessage{
		SubmissionID: "s1",
		ProblemID:    "p1",
		Code:         "print(1)",
		TestCases:    []model.TestCasePayload{{InputData: "", ExpectedOutput: "1"}},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid message rejected: %v", err)
	}

	archived := base
	archived.TestCases = nil
	archived.TestCaseArchive = "p1.json.gz"
	if err := archived.Validate(); err != nil {
		t.Fatalf("archive-only message rejected: %v", err)
	}

	mutate := []func(m *model.SubmissionMessage){
		func(m *model.SubmissionMessage) { m.SubmissionID = "" },
		func(m *model.SubmissionMessage) { m.ProblemID = "" },
		func(m *model.SubmissionMessage) { m.Code = "" },
		func(m *model.SubmissionMessage) { m.TestCases = nil },
	}
	for i, f := range mutate {
		m := base
		f(&m)
		if err := m.Validate(); !appErr.Is(err, appErr.ValidationFailed) {
			t.Fatalf("case %d: got %v, want ValidationFailed", i, err)
		}
	}
}

func TestScoringMessageValidate(t *testing.T) {
	base := model.ScoringMessage{
		SubmissionID:    "s1",
		ContestID:       "c1",
		UserID:          "u1",
		TestCasesPassed: 2,
		TotalTestCases:  3,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid message rejected: %v", err)
	}

	inverted := base
	inverted.TestCasesPassed = 4
	if err := inverted.Validate(); !appErr.Is(err, appErr.ValidationFailed) {
		t.Fatalf("passed > total: got %v, want ValidationFailed", err)
	}
}
