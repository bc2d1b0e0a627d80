package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/auctionarena/auction-arena/internal/domain/auction"
	"github.com/auctionarena/auction-arena/internal/domain/auctionset"
	"github.com/auctionarena/auction-arena/internal/domain/player"
	idgen "github.com/auctionarena/auction-arena/internal/platform/id"
	"github.com/auctionarena/auction-arena/internal/platform/logging"
)

// lakhsToUnits converts a spreadsheet base price expressed in lakhs into the
// auction's smallest currency unit.
const lakhsToUnits = 100000

const importWorkerCount = 8

// ImportRow is one loosely-typed spreadsheet record, keyed by external column
// name.
type ImportRow map[string]string

// ColumnBinding maps an external spreadsheet column onto a player field.
// Bindings are data, not code: the header translation table is injected, so
// template changes never touch the engine.
type ColumnBinding struct {
	ExternalKey string
	Apply       func(p *player.Player, value string)
}

// DefaultColumnMap covers the standard upload template.
func DefaultColumnMap() []ColumnBinding {
	return []ColumnBinding{
		{ExternalKey: "Name", Apply: func(p *player.Player, v string) { p.Name = v }},
		{ExternalKey: "Role", Apply: func(p *player.Player, v string) { p.Role = v }},
		{ExternalKey: "Batting Style", Apply: func(p *player.Player, v string) { p.BattingStyle = v }},
		{ExternalKey: "Bowling Style", Apply: func(p *player.Player, v string) { p.BowlingStyle = v }},
		{ExternalKey: "Nationality", Apply: func(p *player.Player, v string) { p.Nationality = v }},
		{ExternalKey: "Player Number", Apply: func(p *player.Player, v string) {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				p.PlayerNumber = n
			}
		}},
		{ExternalKey: "Base Price", Apply: func(p *player.Player, v string) { p.BasePrice = parseLakhs(v) }},
		{ExternalKey: "Marquee", Apply: func(p *player.Player, v string) {
			p.Marquee = strings.EqualFold(strings.TrimSpace(v), "yes") || strings.EqualFold(strings.TrimSpace(v), "true")
		}},
	}
}

// parseLakhs converts a lakhs figure to base units, rounding half away from
// zero. Unparseable input maps to zero, never an error.
func parseLakhs(raw string) int64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(value * lakhsToUnits))
}

// SkippedRow explains why one upload row was not imported.
type SkippedRow struct {
	PlayerNumber int
	Name         string
	Reason       string
}

// ImportResult is the per-batch outcome; partial data problems are reported
// here, not raised as errors.
type ImportResult struct {
	Imported int
	Skipped  []SkippedRow
}

// preferredSetKey is the external column naming the set a row belongs to.
const preferredSetKey = "Set"

// ImportService ingests spreadsheet rows as players, idempotently.
type ImportService struct {
	auctionRepo auction.Repository
	setRepo     auctionset.Repository
	playerRepo  player.Repository
	activity    ActivityRecorder
	columns     []ColumnBinding
	idGen       idgen.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewImportService(
	auctionRepo auction.Repository,
	setRepo auctionset.Repository,
	playerRepo player.Repository,
	activity ActivityRecorder,
	columns []ColumnBinding,
	idGen idgen.Generator,
	logger *logging.Logger,
) *ImportService {
	if activity == nil {
		activity = NopActivityRecorder{}
	}
	if len(columns) == 0 {
		columns = DefaultColumnMap()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &ImportService{
		auctionRepo: auctionRepo,
		setRepo:     setRepo,
		playerRepo:  playerRepo,
		activity:    activity,
		columns:     columns,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

// ImportPlayers ingests rows for the auction. Rows failing validation, rows
// whose player number is already persisted, and in-batch duplicates (first
// row wins) are collected into the skipped list; the batch itself never
// fails for data problems. Only an unknown auction is a hard error.
func (s *ImportService) ImportPlayers(ctx context.Context, organizerID, auctionID string, rows []ImportRow) (ImportResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ImportService.ImportPlayers")
	defer span.End()

	if organizerID == "" {
		return ImportResult{}, fmt.Errorf("%w: organizer id is required", ErrInvalidInput)
	}
	if auctionID == "" {
		return ImportResult{}, fmt.Errorf("%w: auction id is required", ErrInvalidInput)
	}

	owner, exists, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return ImportResult{}, fmt.Errorf("get auction: %w", err)
	}
	if !exists {
		return ImportResult{}, fmt.Errorf("%w: auction=%s", ErrNotFound, auctionID)
	}
	if owner.OrganizerID != organizerID {
		return ImportResult{}, fmt.Errorf("%w: auction belongs to another organizer", ErrForbidden)
	}

	result := ImportResult{Skipped: []SkippedRow{}}

	taken, err := s.playerRepo.ListNumbersByAuction(ctx, owner.ID)
	if err != nil {
		return ImportResult{}, fmt.Errorf("list player numbers: %w", err)
	}

	candidates := make([]player.Player, 0, len(rows))
	setNames := make(map[string]struct{})
	seenInBatch := make(map[int]struct{})

	for _, row := range rows {
		candidate := player.Player{AuctionID: owner.ID, Status: player.StatusIdle}
		for _, binding := range s.columns {
			if value, ok := row[binding.ExternalKey]; ok {
				binding.Apply(&candidate, strings.TrimSpace(value))
			}
		}

		if reason := requiredFieldsMissing(candidate); reason != "" {
			result.Skipped = append(result.Skipped, SkippedRow{
				PlayerNumber: candidate.PlayerNumber,
				Name:         candidate.Name,
				Reason:       reason,
			})
			continue
		}
		if _, ok := taken[candidate.PlayerNumber]; ok {
			result.Skipped = append(result.Skipped, SkippedRow{
				PlayerNumber: candidate.PlayerNumber,
				Name:         candidate.Name,
				Reason:       "already exists",
			})
			continue
		}
		if _, ok := seenInBatch[candidate.PlayerNumber]; ok {
			// First occurrence wins; later duplicates within one upload are
			// skipped rather than silently inserted.
			result.Skipped = append(result.Skipped, SkippedRow{
				PlayerNumber: candidate.PlayerNumber,
				Name:         candidate.Name,
				Reason:       "duplicate player number in upload",
			})
			continue
		}
		seenInBatch[candidate.PlayerNumber] = struct{}{}

		if name := strings.TrimSpace(row[preferredSetKey]); name != "" {
			setNames[name] = struct{}{}
			candidate.SetID = name // resolved to an id below
		}
		candidates = append(candidates, candidate)
	}

	setIDs, err := s.resolveSets(ctx, owner.ID, setNames)
	if err != nil {
		return ImportResult{}, err
	}

	prepared := make([]player.Player, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.SetID != "" {
			candidate.SetID = setIDs[candidate.SetID]
		}
		playerID, err := s.idGen.NewID()
		if err != nil {
			return ImportResult{}, fmt.Errorf("generate player id: %w", err)
		}
		candidate.ID = playerID
		prepared = append(prepared, candidate)
	}

	if len(prepared) == 0 {
		return result, nil
	}

	failed, err := s.playerRepo.CreateBatch(ctx, prepared)
	if err != nil {
		s.logger.WarnContext(ctx, "bulk player insert failed, salvaging row by row",
			"auction_id", owner.ID, "rows", len(prepared), "error", err)
		salvaged, skipped := s.salvageIndividually(ctx, prepared)
		result.Imported += salvaged
		result.Skipped = append(result.Skipped, skipped...)
	} else {
		result.Imported = len(prepared) - len(failed)
		for idx, insertErr := range failed {
			item := prepared[idx]
			result.Skipped = append(result.Skipped, SkippedRow{
				PlayerNumber: item.PlayerNumber,
				Name:         item.Name,
				Reason:       insertErr.Error(),
			})
		}
	}

	sort.SliceStable(result.Skipped, func(i, j int) bool {
		return result.Skipped[i].PlayerNumber < result.Skipped[j].PlayerNumber
	})

	s.activity.Record(ActivityEvent{
		AuctionID: owner.ID,
		Kind:      ActivityPlayersImport,
		Price:     int64(result.Imported),
		At:        s.now(),
	})

	return result, nil
}

func requiredFieldsMissing(candidate player.Player) string {
	var missing []string
	if candidate.PlayerNumber <= 0 {
		missing = append(missing, "player number")
	}
	if candidate.Name == "" {
		missing = append(missing, "name")
	}
	if candidate.Role == "" {
		missing = append(missing, "role")
	}
	if len(missing) == 0 {
		return ""
	}
	return "missing required fields: " + strings.Join(missing, ", ")
}

// resolveSets maps preferred set names to ids, bulk-creating the missing ones
// in idle state.
func (s *ImportService) resolveSets(ctx context.Context, auctionID string, names map[string]struct{}) (map[string]string, error) {
	ids := make(map[string]string, len(names))
	for name := range names {
		existing, exists, err := s.setRepo.GetByAuctionAndName(ctx, auctionID, name)
		if err != nil {
			return nil, fmt.Errorf("fetch set %q: %w", name, err)
		}
		if exists {
			ids[name] = existing.ID
			continue
		}

		setID, err := s.idGen.NewID()
		if err != nil {
			return nil, fmt.Errorf("generate set id: %w", err)
		}
		created := auctionset.Set{
			ID:        setID,
			AuctionID: auctionID,
			Name:      name,
			State:     auctionset.StateIdle,
		}
		if err := s.setRepo.Create(ctx, created); err != nil {
			return nil, fmt.Errorf("create set %q: %w", name, err)
		}
		ids[name] = setID
	}

	return ids, nil
}

// salvageIndividually retries each prepared row on its own after a failed
// bulk insert, so one poisoned document cannot sink the batch.
func (s *ImportService) salvageIndividually(ctx context.Context, prepared []player.Player) (int, []SkippedRow) {
	workers, err := ants.NewPool(importWorkerCount)
	if err != nil {
		s.logger.WarnContext(ctx, "salvage pool unavailable, falling back to sequential inserts", "error", err)
		return s.salvageSequentially(ctx, prepared)
	}
	defer workers.Release()

	var (
		mu       sync.Mutex
		imported int
		skipped  []SkippedRow
		wg       sync.WaitGroup
	)
	for _, item := range prepared {
		item := item
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()

			insertErr := s.playerRepo.Create(ctx, item)
			mu.Lock()
			defer mu.Unlock()
			if insertErr != nil {
				skipped = append(skipped, SkippedRow{
					PlayerNumber: item.PlayerNumber,
					Name:         item.Name,
					Reason:       insertErr.Error(),
				})
				return
			}
			imported++
		}); err != nil {
			wg.Done()
			mu.Lock()
			skipped = append(skipped, SkippedRow{
				PlayerNumber: item.PlayerNumber,
				Name:         item.Name,
				Reason:       err.Error(),
			})
			mu.Unlock()
		}
	}
	wg.Wait()

	return imported, skipped
}

func (s *ImportService) salvageSequentially(ctx context.Context, prepared []player.Player) (int, []SkippedRow) {
	var (
		imported int
		skipped  []SkippedRow
	)
	for _, item := range prepared {
		if err := s.playerRepo.Create(ctx, item); err != nil {
			skipped = append(skipped, SkippedRow{
				PlayerNumber: item.PlayerNumber,
				Name:         item.Name,
				Reason:       err.Error(),
			})
			continue
		}
		imported++
	}

	return imported, skipped
}
