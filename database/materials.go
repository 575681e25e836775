package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/declarant/declarant/helper"
	"github.com/declarant/declarant/model"
	loadSql "github.com/declarant/declarant/sql"
)

// MaterialsDBHandlerFunctions defines the interface for Materials database operations.
type MaterialsDBHandlerFunctions interface {
	UpsertMaterial(rec *model.MaterialRecord) (bool, error)
	UpsertAll(ctx context.Context, records []*model.MaterialRecord) (*model.UpsertStats, error)
	SelectMaterial(materialID string) (*model.MaterialRecord, error)
	SelectAllMaterials() ([]*model.MaterialRecord, error)
	DeleteMaterial(materialID string) error
}

// MaterialsDBHandler handles persisted assessment rows
type MaterialsDBHandler struct {
	db *helper.Database
}

// NewMaterialsDBHandler creates a new materials database handler.
// It initializes the database connection and loads material-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewMaterialsDBHandler(db *helper.Database, force bool) (*MaterialsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	materialsDbHandler := &MaterialsDBHandler{
		db: db,
	}

	err := loadSql.LoadMaterialsSql(materialsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load materials sql", err)
	}

	err = materialsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized MaterialsDBHandler")

	return materialsDbHandler, nil
}

// CreateTable creates the 'materials' table in the database.
// If the table already exists, it does not create it again.
func (h *MaterialsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_materials();`)
	if err != nil {
		log.Panicf("error initializing materials table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table materials")

	return nil
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// upsertMaterial runs one upsert on the given querier (connection or
// transaction) and reports whether the row was freshly inserted
func upsertMaterial(ctx context.Context, q rowQuerier, rec *model.MaterialRecord) (bool, error) {
	mentionsJSON, err := json.Marshal(rec.Mentions)
	if err != nil {
		return false, helper.NewError("marshal mentions", err)
	}
	if rec.Mentions == nil {
		mentionsJSON = []byte("[]")
	}

	row := q.QueryRowContext(
		ctx,
		`SELECT * FROM upsert_material($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.MaterialID,
		rec.SupplierName,
		rec.DeclarationDate,
		rec.Compliant,
		rec.Recyclability,
		rec.RecycledContentPercent,
		pq.Array(rec.RestrictedSubstances),
		rec.Notes,
		mentionsJSON,
		rec.SourcePath,
	)

	var inserted bool
	var scannedMentions []byte
	err = row.Scan(
		&rec.MaterialID,
		&rec.SupplierName,
		&rec.DeclarationDate,
		&rec.Compliant,
		&rec.Recyclability,
		&rec.RecycledContentPercent,
		pq.Array(&rec.RestrictedSubstances),
		&rec.Notes,
		&scannedMentions,
		&rec.SourcePath,
		&rec.CreatedAt,
		&inserted,
	)
	if err != nil {
		return false, helper.NewError("scan", err)
	}

	if err := json.Unmarshal(scannedMentions, &rec.Mentions); err != nil {
		return false, helper.NewError("unmarshal mentions", err)
	}

	return inserted, nil
}

// UpsertMaterial inserts or overwrites a single assessment row
func (h *MaterialsDBHandler) UpsertMaterial(rec *model.MaterialRecord) (bool, error) {
	return upsertMaterial(context.Background(), h.db.Instance, rec)
}

// UpsertAll writes all records in a single transaction.
// Any failure rolls back the whole batch.
func (h *MaterialsDBHandler) UpsertAll(ctx context.Context, records []*model.MaterialRecord) (*model.UpsertStats, error) {
	stats := &model.UpsertStats{}
	if len(records) == 0 {
		return stats, nil
	}

	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return nil, helper.NewError("begin transaction", err)
	}

	for _, rec := range records {
		inserted, err := upsertMaterial(ctx, tx, rec)
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				return nil, helper.NewError("rollback", rollbackErr)
			}
			return nil, helper.NewError(fmt.Sprintf("upsert material %s", rec.MaterialID), err)
		}
		if inserted {
			stats.Inserted++
		} else {
			stats.Updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, helper.NewError("commit transaction", err)
	}

	h.db.Logger.Info("Upserted materials", slog.Int("inserted", stats.Inserted), slog.Int("updated", stats.Updated))

	return stats, nil
}

// SelectMaterial retrieves an assessment row by material id
func (h *MaterialsDBHandler) SelectMaterial(materialID string) (*model.MaterialRecord, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_material($1)`,
		materialID,
	)

	rec := &model.MaterialRecord{}
	var mentionsJSON []byte
	err := row.Scan(
		&rec.MaterialID,
		&rec.SupplierName,
		&rec.DeclarationDate,
		&rec.Compliant,
		&rec.Recyclability,
		&rec.RecycledContentPercent,
		pq.Array(&rec.RestrictedSubstances),
		&rec.Notes,
		&mentionsJSON,
		&rec.SourcePath,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	if err := json.Unmarshal(mentionsJSON, &rec.Mentions); err != nil {
		return nil, helper.NewError("unmarshal mentions", err)
	}

	return rec, nil
}

// SelectAllMaterials retrieves all assessment rows ordered by material id
func (h *MaterialsDBHandler) SelectAllMaterials() ([]*model.MaterialRecord, error) {
	rows, err := h.db.Instance.Query(`SELECT * FROM select_all_materials()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var records []*model.MaterialRecord
	for rows.Next() {
		rec := &model.MaterialRecord{}
		var mentionsJSON []byte
		err := rows.Scan(
			&rec.MaterialID,
			&rec.SupplierName,
			&rec.DeclarationDate,
			&rec.Compliant,
			&rec.Recyclability,
			&rec.RecycledContentPercent,
			pq.Array(&rec.RestrictedSubstances),
			&rec.Notes,
			&mentionsJSON,
			&rec.SourcePath,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		if err := json.Unmarshal(mentionsJSON, &rec.Mentions); err != nil {
			return nil, helper.NewError("unmarshal mentions", err)
		}

		records = append(records, rec)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return records, nil
}

// DeleteMaterial deletes an assessment row by material id
func (h *MaterialsDBHandler) DeleteMaterial(materialID string) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_material($1)`,
		materialID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
