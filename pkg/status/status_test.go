package status

import "testing"

func TestStepIndex(t *testing.T) {
	cases := []struct {
		s    Status
		want int
	}{
		{New, 0},
		{InReview, 1},
		{AwaitingPayment, 2},
		{PaymentProofUploaded, 3},
		{Paid, 4},
		{InProgress, 5},
		{Completed, 6},
		{DeclinedByMaster, 1},
		{Cancelled, 0},
		{Status("SOMETHING_ELSE"), 0},
		{Status(""), 0},
	}
	for _, c := range cases {
		if got := StepIndex(c.s); got != c.want {
			t.Errorf("StepIndex(%q) = %d, want %d", c.s, got, c.want)
		}
	}
}

func TestTerminalAndFinal(t *testing.T) {
	for _, s := range All {
		wantTerminal := s == DeclinedByMaster || s == Cancelled
		if got := Terminal(s); got != wantTerminal {
			t.Errorf("Terminal(%q) = %v, want %v", s, got, wantTerminal)
		}
		wantFinal := wantTerminal || s == Completed
		if got := Final(s); got != wantFinal {
			t.Errorf("Final(%q) = %v, want %v", s, got, wantFinal)
		}
	}
}

func TestResolveVisualCoversAllStatuses(t *testing.T) {
	for _, s := range All {
		v := ResolveVisual(s, false)
		if v.Label == "" || v.Color == "" || v.Background == "" {
			t.Errorf("ResolveVisual(%q) has empty fields: %+v", s, v)
		}
	}
}

func TestResolveVisualBreachWins(t *testing.T) {
	for _, s := range All {
		v := ResolveVisual(s, true)
		if v.Label != "Нарушен SLA" {
			t.Errorf("ResolveVisual(%q, breached) label = %q", s, v.Label)
		}
		if v.Color != "#c63f38" {
			t.Errorf("ResolveVisual(%q, breached) color = %q", s, v.Color)
		}
	}
}

func TestResolveVisualUnknown(t *testing.T) {
	v := ResolveVisual(Status("WEIRD"), false)
	if v.Label != "WEIRD" {
		t.Errorf("unknown status label = %q, want raw value", v.Label)
	}
	if v.Color != "#7b8496" {
		t.Errorf("unknown status color = %q, want neutral grey", v.Color)
	}
	if v := ResolveVisual("", false); v.Label != "Неизвестно" {
		t.Errorf("empty status label = %q", v.Label)
	}
}

func TestResolveActionExactEntries(t *testing.T) {
	cases := []struct {
		role Role
		s    Status
		want ActionKey
	}{
		{RoleClient, New, ActionOpenChat},
		{RoleClient, AwaitingPayment, ActionOpenPayment},
		{RoleClient, Completed, ActionLeaveReview},
		{RoleClient, DeclinedByMaster, ActionCreateNew},
		{RoleClient, Cancelled, ActionCreateNew},
		{RoleMaster, New, ActionTake},
		{RoleMaster, InReview, ActionSetPrice},
		{RoleMaster, PaymentProofUploaded, ActionConfirmPayment},
		{RoleMaster, Paid, ActionStartWork},
		{RoleMaster, InProgress, ActionCompleteWork},
		{RoleAdmin, PaymentProofUploaded, ActionConfirmPaymentAdmin},
	}
	for _, c := range cases {
		if got := ResolveAction(c.s, c.role); got.Key != c.want {
			t.Errorf("ResolveAction(%q, %q) = %q, want %q", c.s, c.role, got.Key, c.want)
		}
	}
}

func TestResolveActionRoleDefault(t *testing.T) {
	// every admin status except the proof check resolves via the role
	// default
	for _, s := range All {
		if s == PaymentProofUploaded {
			continue
		}
		if got := ResolveAction(s, RoleAdmin); got.Key != ActionManageStatus {
			t.Errorf("ResolveAction(%q, admin) = %q, want manage_status", s, got.Key)
		}
	}
}

func TestResolveActionFallbacks(t *testing.T) {
	// unknown status for a role without a role default hits the global
	// default
	if got := ResolveAction(Status("WEIRD"), RoleMaster); got.Key != ActionOpenDetails {
		t.Errorf("unknown status for master = %q, want open_details", got.Key)
	}
	// unknown role falls back to the client table
	if got := ResolveAction(New, Role("ghost")); got.Key != ActionOpenChat {
		t.Errorf("unknown role = %q, want client table entry", got.Key)
	}
	// and is still total for unknown status too
	if got := ResolveAction(Status("WEIRD"), Role("ghost")); got.Key != ActionOpenDetails {
		t.Errorf("unknown role+status = %q, want open_details", got.Key)
	}
}
