package workflow

import (
	"context"
	"errors"
	"testing"
)

type guardKey struct{}

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StatePendingAdmin, false},
		{StatePendingMainLawyer, false},
		{StatePendingAssignedLawyer, false},
		{StateApproved, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"head of chain", StatePendingAdmin, true},
		{"end of chain", StateApproved, true},
		{"unknown state", State("rejected"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTrigger_String(t *testing.T) {
	if got := TriggerApproveAdmin.String(); got != "APPROVE_ADMIN" {
		t.Errorf("Trigger.String() = %v, want %v", got, "APPROVE_ADMIN")
	}
}

func TestBuilder_ConfigureReturnsSameConfig(t *testing.T) {
	builder := NewBuilder()

	config := builder.Configure(StatePendingAdmin)
	if config == nil {
		t.Fatal("Configure() returned nil")
	}

	if config2 := builder.Configure(StatePendingAdmin); config != config2 {
		t.Error("Configure() should return same config for same state")
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	NewBuilder().Configure(State("INVALID"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()

	NewBuilder().Build(State("INVALID"))
}

func TestBuilder_PermitPanicsOnInvalidTarget(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Permit() should panic on invalid target state")
		}
	}()

	NewBuilder().Configure(StatePendingAdmin).Permit(TriggerApproveAdmin, State("INVALID"))
}

func TestStateMachine_Permit(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePendingAdmin).
		Permit(TriggerApproveAdmin, StatePendingMainLawyer)

	machine := builder.Build(StatePendingAdmin)
	ctx := context.Background()

	if !machine.CanFire(ctx, TriggerApproveAdmin) {
		t.Error("CanFire() should return true for permitted trigger")
	}
	if err := machine.Fire(ctx, TriggerApproveAdmin); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}
	if machine.State() != StatePendingMainLawyer {
		t.Errorf("State after Fire() = %v, want %v", machine.State(), StatePendingMainLawyer)
	}
}

func TestStateMachine_GuardFails(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePendingAdmin).
		PermitIf(TriggerApproveAdmin, StatePendingMainLawyer, func(ctx context.Context) bool {
			return false
		})

	machine := builder.Build(StatePendingAdmin)

	if machine.CanFire(context.Background(), TriggerApproveAdmin) {
		t.Error("CanFire() should be false when every guard fails")
	}

	err := machine.Fire(context.Background(), TriggerApproveAdmin)
	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() error = %v, want %v", err, ErrGuardFailed)
	}
	if machine.State() != StatePendingAdmin {
		t.Errorf("State should remain %v after failed Fire(), got %v", StatePendingAdmin, machine.State())
	}
}

func TestStateMachine_FirstPassingGuardWins(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateApproved).
		PermitIf(TriggerReassignMainLawyer, StatePendingMainLawyer, func(ctx context.Context) bool {
			return ctx.Value(guardKey{}).(bool)
		}).
		PermitIf(TriggerReassignMainLawyer, StatePendingAdmin, func(ctx context.Context) bool {
			return !ctx.Value(guardKey{}).(bool)
		})

	m1 := builder.Build(StateApproved)
	if err := m1.Fire(context.WithValue(context.Background(), guardKey{}, true), TriggerReassignMainLawyer); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if m1.State() != StatePendingMainLawyer {
		t.Errorf("State after Fire() = %v, want %v", m1.State(), StatePendingMainLawyer)
	}

	m2 := builder.Build(StateApproved)
	if err := m2.Fire(context.WithValue(context.Background(), guardKey{}, false), TriggerReassignMainLawyer); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if m2.State() != StatePendingAdmin {
		t.Errorf("State after Fire() = %v, want %v", m2.State(), StatePendingAdmin)
	}
}

func TestStateMachine_Fire_InvalidTransition(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePendingAdmin).
		Permit(TriggerApproveAdmin, StatePendingMainLawyer)

	machine := builder.Build(StatePendingAdmin)

	err := machine.Fire(context.Background(), TriggerApproveMainLawyer)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
	if machine.State() != StatePendingAdmin {
		t.Errorf("State should remain %v after failed Fire(), got %v", StatePendingAdmin, machine.State())
	}
}

func TestStateMachine_Fire_NoConfiguration(t *testing.T) {
	machine := NewBuilder().Build(StateApproved)

	if err := machine.Fire(context.Background(), TriggerApproveAdmin); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
	if got := machine.PermittedTriggers(); len(got) != 0 {
		t.Errorf("PermittedTriggers() = %v, want empty", got)
	}
}

func TestStateMachine_BuildIsolatedFromBuilder(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePendingAdmin).Permit(TriggerApproveAdmin, StatePendingMainLawyer)
	machine := builder.Build(StatePendingAdmin)

	builder.Configure(StatePendingAdmin).Permit(TriggerReassignExecuting, StatePendingAdmin)

	if machine.CanFire(context.Background(), TriggerReassignExecuting) {
		t.Error("machine should not see configuration added after Build()")
	}
}

func TestApprovalMachine_PermittedTriggers(t *testing.T) {
	task := newTask()
	machine := BuildApprovalStateMachine(task)

	got := machine.PermittedTriggers()
	want := []Trigger{TriggerApproveAdmin, TriggerReassignExecuting, TriggerReassignMainLawyer}
	if len(got) != len(want) {
		t.Fatalf("PermittedTriggers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PermittedTriggers()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
