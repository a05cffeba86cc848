package commands

import (
	"context"
	"log/slog"
	"time"

	application "quorum/contexts/election/ballot-engine/application"
	"quorum/contexts/election/ballot-engine/domain/entities"
	domainerrors "quorum/contexts/election/ballot-engine/domain/errors"
	"quorum/contexts/election/ballot-engine/ports"
)

// LifecycleUseCase owns admin phase transitions and singleton config updates.
// Transition serialization happens in storage (conditional update on the
// singleton row), so two racing end-round1 calls cannot both succeed.
type LifecycleUseCase struct {
	States ports.ElectionStateRepository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (uc LifecycleUseCase) Transition(ctx context.Context, cmd entities.PhaseCommand) (entities.ElectionState, error) {
	logger := application.ResolveLogger(uc.Logger)
	from, to, ok := entities.TransitionFor(cmd)
	if !ok {
		return entities.ElectionState{}, domainerrors.ErrInvalidTransition
	}

	state, err := uc.States.Transition(ctx, cmd, uc.now())
	if err != nil {
		logger.Warn("phase transition rejected",
			"event", "election_phase_transition_rejected",
			"module", "election/ballot-engine",
			"layer", "application",
			"command", string(cmd),
			"error", err.Error(),
		)
		return entities.ElectionState{}, err
	}

	if err := uc.appendPhaseEvent(ctx, from, to); err != nil {
		// Best effort: the transition itself is already durable.
		logger.Error("phase change event append failed",
			"event", "election_phase_event_failed",
			"module", "election/ballot-engine",
			"layer", "application",
			"command", string(cmd),
			"error", err.Error(),
		)
	}

	logger.Info("phase transition applied",
		"event", "election_phase_transition_applied",
		"module", "election/ballot-engine",
		"layer", "application",
		"command", string(cmd),
		"from", string(from),
		"to", string(to),
	)
	return state, nil
}

func (uc LifecycleUseCase) UpdateConfig(
	ctx context.Context,
	update ports.ElectionConfigUpdate,
) (entities.ElectionState, error) {
	logger := application.ResolveLogger(uc.Logger)
	state, err := uc.States.UpdateConfig(ctx, update, uc.now())
	if err != nil {
		return entities.ElectionState{}, err
	}
	logger.Info("election config updated",
		"event", "election_config_updated",
		"module", "election/ballot-engine",
		"layer", "application",
		"phase", string(state.Phase),
	)
	return state, nil
}

func (uc LifecycleUseCase) GetState(ctx context.Context) (entities.ElectionState, error) {
	return uc.States.Get(ctx)
}

func (uc LifecycleUseCase) appendPhaseEvent(ctx context.Context, from, to entities.ElectionPhase) error {
	if uc.Outbox == nil {
		return nil
	}
	now := uc.now()
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newElectionEnvelope(eventID, "phase.changed", string(to), now, map[string]any{
		"from":        string(from),
		"to":          string(to),
		"occurred_at": now.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc LifecycleUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
