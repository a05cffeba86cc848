package ballotengine

import (
	"log/slog"

	httpadapter "quorum/contexts/election/ballot-engine/adapters/http"
	"quorum/contexts/election/ballot-engine/adapters/memory"
	"quorum/contexts/election/ballot-engine/application/commands"
	"quorum/contexts/election/ballot-engine/application/queries"
	"quorum/contexts/election/ballot-engine/domain/entities"
	"quorum/contexts/election/ballot-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Ballots   ports.BallotRepository
	States    ports.ElectionStateRepository
	Directory ports.CandidateDirectory
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	submitUseCase := commands.SubmitUseCase{
		Ballots:   deps.Ballots,
		States:    deps.States,
		Directory: deps.Directory,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	lifecycleUseCase := commands.LifecycleUseCase{
		States: deps.States,
		Outbox: deps.Outbox,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	statusUseCase := queries.StatusUseCase{
		Ballots:   deps.Ballots,
		States:    deps.States,
		Directory: deps.Directory,
	}
	resultsUseCase := queries.ResultsUseCase{
		Ballots:   deps.Ballots,
		States:    deps.States,
		Directory: deps.Directory,
	}
	return Module{
		Handler: httpadapter.Handler{
			Submit:    submitUseCase,
			Lifecycle: lifecycleUseCase,
			Status:    statusUseCase,
			Results:   resultsUseCase,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Ballot, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Ballots:   store,
		States:    store,
		Directory: store,
		Outbox:    store,
		Clock:     store,
		IDGen:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
