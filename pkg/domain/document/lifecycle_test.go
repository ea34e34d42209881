package document_test

import (
	"testing"

	"github.com/specmark/specmark/pkg/domain/document"
)

func TestStatusMachineHappyPath(t *testing.T) {
	m, err := document.NewStatusMachine(document.StatusDraft, 1)
	if err != nil {
		t.Fatalf("NewStatusMachine() error = %v", err)
	}

	steps := []struct {
		event string
		want  document.Status
	}{
		{document.EventPlan, document.StatusPlanned},
		{document.EventStart, document.StatusInProgress},
		{document.EventReview, document.StatusReview},
		{document.EventApprove, document.StatusComplete},
	}
	for _, step := range steps {
		if err := m.Transition(step.event); err != nil {
			t.Fatalf("Transition(%q) error = %v", step.event, err)
		}
		if m.Current() != step.want {
			t.Fatalf("after %q: status = %q, want %q", step.event, m.Current(), step.want)
		}
	}
}

func TestStatusMachineInvalidEvent(t *testing.T) {
	m, err := document.NewStatusMachine(document.StatusDraft, 1)
	if err != nil {
		t.Fatalf("NewStatusMachine() error = %v", err)
	}
	if err := m.Transition(document.EventApprove); err == nil {
		t.Error("approve from draft should fail")
	}
	if m.Current() != document.StatusDraft {
		t.Errorf("status = %q, want draft after rejected event", m.Current())
	}
}

func TestStatusMachineBlockAndUnblock(t *testing.T) {
	m, err := document.NewStatusMachine(document.StatusInProgress, 2)
	if err != nil {
		t.Fatalf("NewStatusMachine() error = %v", err)
	}
	if err := m.Transition(document.EventBlock); err != nil {
		t.Fatalf("Transition(block) error = %v", err)
	}
	if m.Current() != document.StatusBlocked {
		t.Fatalf("status = %q, want blocked", m.Current())
	}
	if err := m.Transition(document.EventUnblock); err != nil {
		t.Fatalf("Transition(unblock) error = %v", err)
	}
	if m.Current() != document.StatusPlanned {
		t.Errorf("status = %q, want planned after unblock", m.Current())
	}
}

func TestStatusMachineReopen(t *testing.T) {
	m, err := document.NewStatusMachine(document.StatusComplete, 3)
	if err != nil {
		t.Fatalf("NewStatusMachine() error = %v", err)
	}
	if err := m.Transition(document.EventReopen); err != nil {
		t.Fatalf("Transition(reopen) error = %v", err)
	}
	if m.Current() != document.StatusInProgress {
		t.Errorf("status = %q, want in_progress", m.Current())
	}
}

func TestStatusMachineDeprecateIsTerminal(t *testing.T) {
	m, err := document.NewStatusMachine(document.StatusPlanned, 4)
	if err != nil {
		t.Fatalf("NewStatusMachine() error = %v", err)
	}
	if err := m.Transition(document.EventDeprecate); err != nil {
		t.Fatalf("Transition(deprecate) error = %v", err)
	}
	if err := m.Transition(document.EventPlan); err == nil {
		t.Error("deprecated documents accept no further events")
	}
}

func TestParseStatusNormalization(t *testing.T) {
	tests := []struct {
		in   string
		want document.Status
		ok   bool
	}{
		{"In Progress", document.StatusInProgress, true},
		{"in-progress", document.StatusInProgress, true},
		{"DRAFT", document.StatusDraft, true},
		{"complete", document.StatusComplete, true},
		{"finished", "", false},
	}
	for _, tt := range tests {
		got, ok := document.ParseStatus(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
