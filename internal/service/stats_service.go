package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"testboard/internal/cache"
	"testboard/internal/domain"
	"testboard/internal/dto"
	"testboard/internal/logger"
	"testboard/internal/validation"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	exportFormatCSV   = "csv"
	exportFormatJSON  = "json"
	exportFormatExcel = "excel"
)

var exportHeader = []string{"User ID", "Score", "Start Time", "End Time", "Completion Time (s)"}

// StatsService serves creator-facing aggregates and raw exports for a test.
type StatsService interface {
	GetTestStats(ctx context.Context, userID, testID string) (*dto.TestStatsResponse, error)
	ExportTestStats(ctx context.Context, userID, testID, format string) (*dto.ExportResult, error)
}

type statsServiceImpl struct {
	gate        *accessGate
	attemptRepo domain.AttemptRepository
	statsCache  domain.Cache
	cacheTTL    time.Duration
	validator   *validation.Validator
	group       singleflight.Group
}

// NewStatsService creates a new instance of StatsService. statsCache may be
// nil when caching is disabled.
func NewStatsService(
	userRepo domain.UserRepository,
	testRepo domain.TestRepository,
	attemptRepo domain.AttemptRepository,
	statsCache domain.Cache,
	cacheTTL time.Duration,
) StatsService {
	return &statsServiceImpl{
		gate:        &accessGate{users: userRepo, tests: testRepo},
		attemptRepo: attemptRepo,
		statsCache:  statsCache,
		cacheTTL:    cacheTTL,
		validator:   validation.NewValidator(),
	}
}

// GetTestStats returns the cached aggregate when present; otherwise it
// computes it from the store, with concurrent misses for the same test
// collapsed into a single computation.
func (s *statsServiceImpl) GetTestStats(ctx context.Context, userID, testID string) (*dto.TestStatsResponse, error) {
	if _, err := s.gate.requireOwnership(ctx, userID, testID); err != nil {
		return nil, err
	}

	key := cache.TestStatsKey(testID)
	if s.statsCache != nil {
		cached, err := s.statsCache.Get(ctx, key)
		if err == nil {
			var resp dto.TestStatsResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return &resp, nil
			}
			logger.Get().Warn("Discarding unreadable cached stats", zap.String("key", key))
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Stats cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		resp, err := s.computeStats(ctx, testID)
		if err != nil {
			return nil, err
		}
		if s.statsCache != nil {
			payload, merr := json.Marshal(resp)
			if merr == nil {
				if cerr := s.statsCache.Set(ctx, key, string(payload), s.cacheTTL); cerr != nil {
					logger.Get().Warn("Stats cache write failed", zap.String("key", key), zap.Error(cerr))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dto.TestStatsResponse), nil
}

func (s *statsServiceImpl) computeStats(ctx context.Context, testID string) (*dto.TestStatsResponse, error) {
	avgScore, err := s.attemptRepo.GetAverageScore(ctx, testID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to aggregate scores")
	}
	avgCompletion, err := s.attemptRepo.GetAverageCompletionSeconds(ctx, testID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to aggregate completion time")
	}
	questionStats, err := s.attemptRepo.GetQuestionStats(ctx, testID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to aggregate question stats")
	}

	resp := &dto.TestStatsResponse{
		AverageScore:   roundTenth(avgScore),
		CompletionTime: roundTenth(avgCompletion),
		Difficulty:     make(map[string]dto.QuestionDifficultyResponse, len(questionStats)),
	}
	for _, qs := range questionStats {
		resp.Difficulty["question_"+qs.QuestionID] = dto.QuestionDifficultyResponse{
			CorrectPercentage: roundTenth(qs.CorrectPercentage),
			AverageTime:       roundTenth(qs.AverageTime),
		}
	}
	return resp, nil
}

// ExportTestStats renders the raw per-attempt rows in the requested format.
func (s *statsServiceImpl) ExportTestStats(ctx context.Context, userID, testID, format string) (*dto.ExportResult, error) {
	if errs := s.validator.ValidateExportFormat(format); len(errs) > 0 {
		return nil, errs
	}
	if _, err := s.gate.requireOwnership(ctx, userID, testID); err != nil {
		return nil, err
	}

	records, err := s.attemptRepo.GetAttemptRecords(ctx, testID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to load attempt records")
	}

	rows := make([]dto.AttemptExportRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, dto.AttemptExportRow{
			UserID:            rec.UserID,
			Score:             rec.Score,
			StartTime:         rec.StartTime,
			EndTime:           rec.EndTime,
			CompletionSeconds: roundTenth(rec.CompletionSeconds),
		})
	}

	switch format {
	case exportFormatCSV:
		return exportCSV(testID, rows)
	case exportFormatJSON:
		return exportJSON(testID, rows)
	case exportFormatExcel:
		return exportExcel(testID, rows)
	}
	// ValidateExportFormat keeps this unreachable.
	return nil, domain.NewInvalidFormatError("format", format)
}

func exportCSV(testID string, rows []dto.AttemptExportRow) (*dto.ExportResult, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, domain.NewInternalError("failed to render csv export", err)
	}
	for _, row := range rows {
		record := []string{
			row.UserID,
			formatScore(row.Score),
			row.StartTime.Format(time.RFC3339),
			formatEndTime(row.EndTime),
			strconv.FormatFloat(row.CompletionSeconds, 'f', 1, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, domain.NewInternalError("failed to render csv export", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, domain.NewInternalError("failed to render csv export", err)
	}
	return &dto.ExportResult{
		ContentType: "text/csv",
		Filename:    fmt.Sprintf("test_%s_stats.csv", testID),
		Body:        buf.Bytes(),
	}, nil
}

func exportJSON(testID string, rows []dto.AttemptExportRow) (*dto.ExportResult, error) {
	body, err := json.Marshal(rows)
	if err != nil {
		return nil, domain.NewInternalError("failed to render json export", err)
	}
	return &dto.ExportResult{
		ContentType: "application/json",
		Filename:    fmt.Sprintf("test_%s_stats.json", testID),
		Body:        body,
	}, nil
}

func exportExcel(testID string, rows []dto.AttemptExportRow) (*dto.ExportResult, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, domain.NewInternalError("failed to render excel export", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, domain.NewInternalError("failed to render excel export", err)
		}
	}
	for i, row := range rows {
		values := []interface{}{
			row.UserID,
			formatScore(row.Score),
			row.StartTime.Format(time.RFC3339),
			formatEndTime(row.EndTime),
			row.CompletionSeconds,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, domain.NewInternalError("failed to render excel export", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, domain.NewInternalError("failed to render excel export", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, domain.NewInternalError("failed to render excel export", err)
	}
	return &dto.ExportResult{
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Filename:    fmt.Sprintf("test_%s_stats.xlsx", testID),
		Body:        buf.Bytes(),
	}, nil
}

func formatScore(score *float64) string {
	if score == nil {
		return ""
	}
	return strconv.FormatFloat(*score, 'f', 1, 64)
}

func formatEndTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
