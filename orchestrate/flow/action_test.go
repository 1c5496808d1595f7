package flow_test

import (
	"testing"

	"github.com/tailored-agentic-units/flow/orchestrate/flow"
)

func TestAction(t *testing.T) {
	tests := []struct {
		name     string
		action   flow.Action
		wantName string
		isStop   bool
		isZero   bool
		str      string
	}{
		{name: "named", action: flow.Act("search"), wantName: "search", str: "search"},
		{name: "empty name", action: flow.Act(""), isZero: true, str: "<none>"},
		{name: "no action", action: flow.NoAction, isZero: true, str: "<none>"},
		{name: "stop", action: flow.Stop, isStop: true, str: "<stop>"},
		{name: "named default", action: flow.Act(flow.DefaultAction), wantName: "default", str: "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.action.Name(); got != tt.wantName {
				t.Errorf("expected name %q, got %q", tt.wantName, got)
			}
			if got := tt.action.IsStop(); got != tt.isStop {
				t.Errorf("expected IsStop %v, got %v", tt.isStop, got)
			}
			if got := tt.action.IsZero(); got != tt.isZero {
				t.Errorf("expected IsZero %v, got %v", tt.isZero, got)
			}
			if got := tt.action.String(); got != tt.str {
				t.Errorf("expected String %q, got %q", tt.str, got)
			}
		})
	}
}

func TestAction_Comparable(t *testing.T) {
	if flow.Act("") != flow.NoAction {
		t.Error("expected Act(\"\") to equal NoAction")
	}
	if flow.Act("stop") == flow.Stop {
		t.Error("expected a named action never to equal Stop")
	}
}
