package commands

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	application "quorum/contexts/election/candidate-catalog/application"
	"quorum/contexts/election/candidate-catalog/domain/entities"
	domainerrors "quorum/contexts/election/candidate-catalog/domain/errors"
	"quorum/contexts/election/candidate-catalog/ports"
)

// csvHeader is the import/template column order.
var csvHeader = []string{"name", "title", "description", "category", "resume_url"}

type ImportResult struct {
	Imported     int
	Skipped      int
	SkippedNames []string
}

// ImportUseCase bulk-loads candidates from an admin-supplied CSV file. Rows
// are deduplicated by candidate name against the catalog and within the file;
// duplicates are skipped and reported, never overwritten.
type ImportUseCase struct {
	Candidates ports.CandidateRepository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc ImportUseCase) ImportCSV(ctx context.Context, file io.Reader) (ImportResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return ImportResult{}, domainerrors.ErrInvalidImportFile
	}
	if len(header) == 0 || !strings.EqualFold(strings.TrimSpace(header[0]), csvHeader[0]) {
		return ImportResult{}, domainerrors.ErrInvalidImportFile
	}

	existing, err := uc.Candidates.ListAll(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	knownNames := make(map[string]struct{}, len(existing))
	for _, candidate := range existing {
		knownNames[candidate.Name] = struct{}{}
	}

	now := uc.now()
	result := ImportResult{SkippedNames: []string{}}
	toImport := make([]entities.Candidate, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ImportResult{}, domainerrors.ErrInvalidImportFile
		}

		name := strings.TrimSpace(field(record, 0))
		if name == "" {
			continue
		}
		if _, dup := knownNames[name]; dup {
			result.Skipped++
			result.SkippedNames = append(result.SkippedNames, name)
			continue
		}

		// Anything other than an explicit manager cell defaults to director.
		category := entities.CategoryDirector
		if strings.EqualFold(strings.TrimSpace(field(record, 3)), string(entities.CategoryManager)) {
			category = entities.CategoryManager
		}

		candidateID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return ImportResult{}, err
		}
		toImport = append(toImport, entities.Candidate{
			CandidateID:     candidateID,
			Name:            name,
			Title:           strings.TrimSpace(field(record, 1)),
			Description:     strings.TrimSpace(field(record, 2)),
			ResumeURL:       strings.TrimSpace(field(record, 4)),
			Category:        category,
			Round2Qualified: false,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		knownNames[name] = struct{}{}
		result.Imported++
	}

	if len(toImport) > 0 {
		if err := uc.Candidates.CreateBatch(ctx, toImport); err != nil {
			return ImportResult{}, err
		}
	}

	logger.Info("candidate import completed",
		"event", "catalog_import_completed",
		"module", "election/candidate-catalog",
		"layer", "application",
		"imported", result.Imported,
		"skipped", result.Skipped,
	)
	return result, nil
}

// TemplateCSV renders the import template: header plus one example row.
func (uc ImportUseCase) TemplateCSV() []byte {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	_ = writer.Write(csvHeader)
	_ = writer.Write([]string{
		"Jane Doe",
		"Head of Operations",
		"Twenty years of operations leadership.",
		"director",
		"https://example.com/resume.pdf",
	})
	writer.Flush()
	return buf.Bytes()
}

func field(record []string, index int) string {
	if index >= len(record) {
		return ""
	}
	return record[index]
}

func (uc ImportUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
