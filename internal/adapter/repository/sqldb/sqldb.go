// Package sqldb implements the analysis repository on top of sqlx. The same
// queries serve PostgreSQL (pgx) and SQLite (modernc): they are written with
// '?' placeholders and rebound for the connected driver.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/phishing-detector/internal/entity"
	"github.com/vadimbarashkov/phishing-detector/pkg/postgres"
)

func isUnavailableError(err error) bool {
	return postgres.IsUnavailable(err) || errors.Is(err, sql.ErrConnDone)
}

type analysisDB struct {
	ID                 string    `db:"id"`
	URL                string    `db:"url"`
	URLHash            string    `db:"url_hash"`
	AnalysisResult     string    `db:"analysis_result"`
	RiskLevel          string    `db:"risk_level"`
	Prediction         string    `db:"prediction"`
	Probability        float64   `db:"probability"`
	Confidence         string    `db:"confidence"`
	FeaturesExtracted  int       `db:"features_extracted"`
	ProcessingTime     float64   `db:"processing_time"`
	ThreatIntelligence string    `db:"threat_intelligence"`
	CreatedBy          string    `db:"created_by"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func fromEntity(rec *entity.AnalysisRecord) (*analysisDB, error) {
	result, err := json.Marshal(rec.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis result: %w", err)
	}

	intel, err := json.Marshal(rec.ThreatIntelligence)
	if err != nil {
		return nil, fmt.Errorf("failed to encode threat intelligence: %w", err)
	}

	return &analysisDB{
		ID:                 rec.ID,
		URL:                rec.URL,
		URLHash:            rec.URLHash,
		AnalysisResult:     string(result),
		RiskLevel:          string(rec.RiskLevel),
		Prediction:         string(rec.Prediction),
		Probability:        rec.Probability,
		Confidence:         string(rec.Confidence),
		FeaturesExtracted:  rec.FeaturesExtracted,
		ProcessingTime:     rec.ProcessingTime,
		ThreatIntelligence: string(intel),
		CreatedBy:          rec.CreatedBy,
		CreatedAt:          rec.CreatedAt,
		UpdatedAt:          rec.UpdatedAt,
	}, nil
}

func (a *analysisDB) toEntity() (*entity.AnalysisRecord, error) {
	rec := &entity.AnalysisRecord{
		ID:                a.ID,
		URL:               a.URL,
		URLHash:           a.URLHash,
		RiskLevel:         entity.RiskLevel(a.RiskLevel),
		Prediction:        entity.Prediction(a.Prediction),
		Probability:       a.Probability,
		Confidence:        entity.Confidence(a.Confidence),
		FeaturesExtracted: a.FeaturesExtracted,
		ProcessingTime:    a.ProcessingTime,
		CreatedBy:         a.CreatedBy,
		CreatedAt:         a.CreatedAt.UTC(),
		UpdatedAt:         a.UpdatedAt.UTC(),
	}

	if a.AnalysisResult != "" {
		if err := json.Unmarshal([]byte(a.AnalysisResult), &rec.Result); err != nil {
			return nil, fmt.Errorf("failed to decode analysis result: %w", err)
		}
	}
	if a.ThreatIntelligence != "" {
		if err := json.Unmarshal([]byte(a.ThreatIntelligence), &rec.ThreatIntelligence); err != nil {
			return nil, fmt.Errorf("failed to decode threat intelligence: %w", err)
		}
	}

	return rec, nil
}

const columns = `id, url, url_hash, analysis_result, risk_level, prediction, probability, confidence,
	features_extracted, processing_time, threat_intelligence, created_by, created_at, updated_at`

type AnalysisRepository struct {
	db *sqlx.DB
}

func NewAnalysisRepository(db *sqlx.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Upsert inserts rec, or overwrites the record with the same URL hash. On
// conflict the stored id and created_at win, every other field is replaced.
func (r *AnalysisRepository) Upsert(ctx context.Context, rec *entity.AnalysisRecord) (*entity.AnalysisRecord, error) {
	const op = "adapter.repository.sqldb.AnalysisRepository.Upsert"
	const query = `INSERT INTO url_analysis (` + columns + `)
	VALUES (:id, :url, :url_hash, :analysis_result, :risk_level, :prediction, :probability, :confidence,
		:features_extracted, :processing_time, :threat_intelligence, :created_by, :created_at, :updated_at)
	ON CONFLICT (url_hash) DO UPDATE SET
		url = excluded.url,
		analysis_result = excluded.analysis_result,
		risk_level = excluded.risk_level,
		prediction = excluded.prediction,
		probability = excluded.probability,
		confidence = excluded.confidence,
		features_extracted = excluded.features_extracted,
		processing_time = excluded.processing_time,
		threat_intelligence = excluded.threat_intelligence,
		created_by = excluded.created_by,
		updated_at = excluded.updated_at
	RETURNING ` + columns

	row, err := fromEntity(rec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q, args, err := r.db.BindNamed(query, row)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to bind query: %w", op, err)
	}

	var saved analysisDB

	if err := r.db.GetContext(ctx, &saved, q, args...); err != nil {
		if isUnavailableError(err) {
			return nil, fmt.Errorf("%s: %w: %w", op, entity.ErrStoreUnavailable, err)
		}

		return nil, fmt.Errorf("%s: failed to upsert into url_analysis table: %w", op, err)
	}

	out, err := saved.toEntity()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Count returns the number of records matching every non-empty field of filter.
func (r *AnalysisRepository) Count(ctx context.Context, filter entity.AnalysisFilter) (int64, error) {
	const op = "adapter.repository.sqldb.AnalysisRepository.Count"

	var (
		conds []string
		args  []any
	)

	if filter.Prediction != "" {
		conds = append(conds, "prediction = ?")
		args = append(args, string(filter.Prediction))
	}
	if filter.RiskLevel != "" {
		conds = append(conds, "risk_level = ?")
		args = append(args, string(filter.RiskLevel))
	}
	if filter.CreatedBy != "" {
		conds = append(conds, "created_by = ?")
		args = append(args, filter.CreatedBy)
	}

	query := `SELECT COUNT(*) FROM url_analysis`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}

	var n int64

	if err := r.db.GetContext(ctx, &n, r.db.Rebind(query), args...); err != nil {
		if isUnavailableError(err) {
			return 0, fmt.Errorf("%s: %w: %w", op, entity.ErrStoreUnavailable, err)
		}

		return 0, fmt.Errorf("%s: failed to count url_analysis rows: %w", op, err)
	}

	return n, nil
}

// Recent returns at most limit records, newest first.
func (r *AnalysisRepository) Recent(ctx context.Context, limit int) ([]entity.AnalysisRecord, error) {
	const op = "adapter.repository.sqldb.AnalysisRepository.Recent"
	const query = `SELECT ` + columns + ` FROM url_analysis ORDER BY created_at DESC, id DESC LIMIT ?`

	if limit <= 0 {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrInvalidLimit)
	}

	var rows []analysisDB

	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), limit); err != nil {
		if isUnavailableError(err) {
			return nil, fmt.Errorf("%s: %w: %w", op, entity.ErrStoreUnavailable, err)
		}

		return nil, fmt.Errorf("%s: failed to select from url_analysis table: %w", op, err)
	}

	records := make([]entity.AnalysisRecord, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].toEntity()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		records = append(records, *rec)
	}

	return records, nil
}

func (r *AnalysisRepository) Ping(ctx context.Context) error {
	const op = "adapter.repository.sqldb.AnalysisRepository.Ping"

	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w: %w", op, entity.ErrStoreUnavailable, err)
	}

	return nil
}
