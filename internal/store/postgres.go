package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/unifai/unifai/pkg/scoring"
)

// Postgres stores predictions in the predictions table.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open database. Run platform.AutoMigrate first.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Insert stores a new prediction.
func (p *Postgres) Insert(ctx context.Context, rec Record) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO predictions (id, module_type, input_data, prediction_result, confidence_score, risk_level, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, string(rec.Module), string(rec.Input),
		rec.Result.Prediction, rec.Result.Confidence, string(rec.Result.RiskLevel), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// SetExplanation attaches generated explanation text to a stored prediction.
func (p *Postgres) SetExplanation(ctx context.Context, id, text string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE predictions SET ai_explanation = $1 WHERE id = $2`,
		text, id,
	)
	if err != nil {
		return fmt.Errorf("update explanation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update explanation: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

const selectColumns = `SELECT id, module_type, input_data, prediction_result, confidence_score, risk_level, ai_explanation, created_at
	FROM predictions`

// Get loads one prediction by ID.
func (p *Postgres) Get(ctx context.Context, id string) (*Record, error) {
	row := p.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get prediction: %w", err)
	}
	return rec, nil
}

// List returns the newest predictions first.
func (p *Postgres) List(ctx context.Context, f Filter) ([]Record, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if f.Module != "" {
		rows, err = p.db.QueryContext(ctx,
			selectColumns+` WHERE module_type = $1 ORDER BY created_at DESC LIMIT $2`,
			string(f.Module), f.limit())
	} else {
		rows, err = p.db.QueryContext(ctx,
			selectColumns+` ORDER BY created_at DESC LIMIT $1`, f.limit())
	}
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var (
		rec         Record
		module      string
		input       []byte
		risk        string
		explanation sql.NullString
	)
	if err := s.Scan(&rec.ID, &module, &input, &rec.Result.Prediction, &rec.Result.Confidence,
		&risk, &explanation, &rec.CreatedAt); err != nil {
		return nil, err
	}
	level, err := scoring.ParseRiskLevel(risk)
	if err != nil {
		return nil, err
	}
	rec.Module = scoring.Module(module)
	rec.Input = input
	rec.Result.RiskLevel = level
	rec.Explanation = explanation.String
	return &rec, nil
}
