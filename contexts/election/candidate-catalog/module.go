package candidatecatalog

import (
	"log/slog"

	httpadapter "quorum/contexts/election/candidate-catalog/adapters/http"
	"quorum/contexts/election/candidate-catalog/adapters/memory"
	"quorum/contexts/election/candidate-catalog/application/commands"
	"quorum/contexts/election/candidate-catalog/application/queries"
	"quorum/contexts/election/candidate-catalog/domain/entities"
	"quorum/contexts/election/candidate-catalog/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Candidates ports.CandidateRepository
	Ballots    ports.BallotReferenceChecker
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	catalogUseCase := commands.CatalogUseCase{
		Candidates: deps.Candidates,
		Ballots:    deps.Ballots,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	importUseCase := commands.ImportUseCase{
		Candidates: deps.Candidates,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	catalogQueries := queries.CatalogQueries{
		Candidates: deps.Candidates,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Catalog:  catalogUseCase,
			Importer: importUseCase,
			Queries:  catalogQueries,
			Logger:   deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Candidate, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Candidates: store,
		Ballots:    store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
