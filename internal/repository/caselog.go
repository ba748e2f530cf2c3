// Package repository persists diagnosis cases for audit. Every diagnosis
// served over the API can be recorded here so clinician feedback can be
// joined back to the exact inputs and differential the system produced.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/raredx-server/internal/domain"
)

// DiagnosisCase is one recorded diagnosis with its full inputs and outputs
type DiagnosisCase struct {
	CaseID           uuid.UUID               `json:"case_id"`
	Patient          *domain.PatientRecord   `json:"patient"`
	Result           *domain.DiagnosisResult `json:"result"`
	PrimaryDiagnosis string                  `json:"primary_diagnosis"`
	Confidence       float64                 `json:"confidence"`
	ModelVersion     string                  `json:"model_version"`
}

// CaseRepository handles diagnosis case persistence
type CaseRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *pgxpool.Pool, logger *logrus.Logger) *CaseRepository {
	return &CaseRepository{
		db:  db,
		log: logger,
	}
}

// Create inserts a new diagnosis case
func (r *CaseRepository) Create(ctx context.Context, diagnosisCase *DiagnosisCase) error {
	patientJSON, err := json.Marshal(diagnosisCase.Patient)
	if err != nil {
		return fmt.Errorf("encoding patient record: %w", err)
	}
	resultJSON, err := json.Marshal(diagnosisCase.Result)
	if err != nil {
		return fmt.Errorf("encoding diagnosis result: %w", err)
	}

	query := `
		INSERT INTO diagnosis_cases (
			case_id, patient, result, primary_diagnosis, confidence, model_version
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)`

	_, err = r.db.Exec(ctx, query,
		diagnosisCase.CaseID,
		patientJSON,
		resultJSON,
		diagnosisCase.PrimaryDiagnosis,
		diagnosisCase.Confidence,
		diagnosisCase.ModelVersion,
	)

	if err != nil {
		r.log.WithFields(logrus.Fields{
			"case_id": diagnosisCase.CaseID,
			"error":   err,
		}).Error("Failed to record diagnosis case")
		return fmt.Errorf("creating diagnosis case: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"case_id":           diagnosisCase.CaseID,
		"primary_diagnosis": diagnosisCase.PrimaryDiagnosis,
	}).Info("Diagnosis case recorded")

	return nil
}

// GetByCaseID retrieves a diagnosis case by its identifier
func (r *CaseRepository) GetByCaseID(ctx context.Context, caseID uuid.UUID) (*DiagnosisCase, error) {
	query := `
		SELECT case_id, patient, result, primary_diagnosis, confidence, model_version
		FROM diagnosis_cases
		WHERE case_id = $1`

	diagnosisCase, err := scanCase(r.db.QueryRow(ctx, query, caseID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("diagnosis case not found: %w", domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"case_id": caseID,
			"error":   err,
		}).Error("Failed to get diagnosis case")
		return nil, fmt.Errorf("getting diagnosis case: %w", err)
	}

	return diagnosisCase, nil
}

// ListByDiagnosis retrieves cases for one primary diagnosis with pagination,
// newest first
func (r *CaseRepository) ListByDiagnosis(ctx context.Context, diagnosis string, limit, offset int) ([]*DiagnosisCase, error) {
	query := `
		SELECT case_id, patient, result, primary_diagnosis, confidence, model_version
		FROM diagnosis_cases
		WHERE primary_diagnosis = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, diagnosis, limit, offset)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"primary_diagnosis": diagnosis,
			"error":             err,
		}).Error("Failed to list diagnosis cases")
		return nil, fmt.Errorf("listing diagnosis cases: %w", err)
	}
	defer rows.Close()

	var cases []*DiagnosisCase
	for rows.Next() {
		diagnosisCase, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning diagnosis case row: %w", err)
		}
		cases = append(cases, diagnosisCase)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating diagnosis case rows: %w", err)
	}

	return cases, nil
}

// Delete removes a diagnosis case
func (r *CaseRepository) Delete(ctx context.Context, caseID uuid.UUID) error {
	query := `DELETE FROM diagnosis_cases WHERE case_id = $1`

	result, err := r.db.Exec(ctx, query, caseID)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"case_id": caseID,
			"error":   err,
		}).Error("Failed to delete diagnosis case")
		return fmt.Errorf("deleting diagnosis case: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("diagnosis case not found: %w", domain.ErrNotFound)
	}

	return nil
}

func scanCase(row pgx.Row) (*DiagnosisCase, error) {
	var diagnosisCase DiagnosisCase
	var patientJSON, resultJSON []byte

	err := row.Scan(
		&diagnosisCase.CaseID,
		&patientJSON,
		&resultJSON,
		&diagnosisCase.PrimaryDiagnosis,
		&diagnosisCase.Confidence,
		&diagnosisCase.ModelVersion,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(patientJSON, &diagnosisCase.Patient); err != nil {
		return nil, fmt.Errorf("decoding patient record: %w", err)
	}
	if err := json.Unmarshal(resultJSON, &diagnosisCase.Result); err != nil {
		return nil, fmt.Errorf("decoding diagnosis result: %w", err)
	}

	return &diagnosisCase, nil
}
