package enums

import "testing"

func TestLineItemStatusTransitionMatrix(t *testing.T) {
	allowed := map[LineItemStatus]map[LineItemStatus]bool{
		LineItemStatusPending: {
			LineItemStatusPicked:     true,
			LineItemStatusOutOfStock: true,
			LineItemStatusRemoved:    true,
		},
		LineItemStatusPicked: {
			LineItemStatusOutOfStock: true,
			LineItemStatusRemoved:    true,
		},
		LineItemStatusOutOfStock: {
			LineItemStatusPicked:  true,
			LineItemStatusRemoved: true,
		},
		LineItemStatusRemoved: {},
	}

	for _, from := range validLineItemStatuses {
		for _, to := range validLineItemStatuses {
			got := from.CanTransitionTo(to)
			want := allowed[from][to]
			if got != want {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestLineItemStatusNeverRevertsToPending(t *testing.T) {
	for _, from := range []LineItemStatus{LineItemStatusPicked, LineItemStatusOutOfStock, LineItemStatusRemoved} {
		if from.CanTransitionTo(LineItemStatusPending) {
			t.Errorf("%s -> pending permitted; pending has no inbound edges", from)
		}
	}
}

func TestLineItemStatusRejectsUnknownTarget(t *testing.T) {
	if LineItemStatusPending.CanTransitionTo(LineItemStatus("misplaced")) {
		t.Fatalf("transition to unknown status permitted")
	}
}

func TestParseLineItemStatus(t *testing.T) {
	for _, candidate := range validLineItemStatuses {
		parsed, err := ParseLineItemStatus(string(candidate))
		if err != nil {
			t.Fatalf("parse %q: %v", candidate, err)
		}
		if parsed != candidate {
			t.Fatalf("parse %q: got %q", candidate, parsed)
		}
	}
	if _, err := ParseLineItemStatus("misplaced"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}
