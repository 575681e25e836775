package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/declarant/declarant/helper"
	"github.com/declarant/declarant/model"
	loadSql "github.com/declarant/declarant/sql"
)

// DeclarationsDBHandlerFunctions defines the interface for Declarations database operations.
type DeclarationsDBHandlerFunctions interface {
	InsertDeclaration(decl *model.Declaration) error
	SelectDeclaration(rid uuid.UUID) (*model.Declaration, error)
	SelectDeclarationsByMaterial(materialID string) ([]*model.Declaration, error)
	SelectAllDeclarations(lastUploadedAt *time.Time, limit int) ([]*model.Declaration, error)
	DeleteDeclaration(rid uuid.UUID) error
}

// DeclarationsDBHandler handles declaration-related database operations
type DeclarationsDBHandler struct {
	db *helper.Database
}

// NewDeclarationsDBHandler creates a new declarations database handler.
// It initializes the database connection and loads declaration-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewDeclarationsDBHandler(db *helper.Database, force bool) (*DeclarationsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	declarationsDbHandler := &DeclarationsDBHandler{
		db: db,
	}

	err := loadSql.LoadDeclarationsSql(declarationsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load declarations sql", err)
	}

	err = declarationsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized DeclarationsDBHandler")

	return declarationsDbHandler, nil
}

// CreateTable creates the 'declarations' table in the database.
// If the table already exists, it does not create it again.
func (h *DeclarationsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_declarations();`)
	if err != nil {
		log.Panicf("error initializing declarations table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table declarations")

	return nil
}

// InsertDeclaration inserts a new declaration registry row
func (h *DeclarationsDBHandler) InsertDeclaration(decl *model.Declaration) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_declaration($1, $2, $3, $4, $5)`,
		decl.Filename,
		decl.MaterialID,
		decl.SKU,
		decl.SupplierName,
		decl.Metadata,
	)

	err := row.Scan(
		&decl.ID,
		&decl.RID,
		&decl.Filename,
		&decl.MaterialID,
		&decl.SKU,
		&decl.SupplierName,
		&decl.Metadata,
		&decl.UploadedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectDeclaration retrieves a declaration by RID
func (h *DeclarationsDBHandler) SelectDeclaration(rid uuid.UUID) (*model.Declaration, error) {
	decl := &model.Declaration{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_declaration($1)`,
		rid,
	)

	err := row.Scan(
		&decl.ID,
		&decl.RID,
		&decl.Filename,
		&decl.MaterialID,
		&decl.SKU,
		&decl.SupplierName,
		&decl.Metadata,
		&decl.UploadedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return decl, nil
}

// SelectDeclarationsByMaterial retrieves all declarations uploaded for a material
func (h *DeclarationsDBHandler) SelectDeclarationsByMaterial(materialID string) ([]*model.Declaration, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_declarations_by_material($1)`,
		materialID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var declarations []*model.Declaration
	for rows.Next() {
		decl := &model.Declaration{}
		err := rows.Scan(
			&decl.ID,
			&decl.RID,
			&decl.Filename,
			&decl.MaterialID,
			&decl.SKU,
			&decl.SupplierName,
			&decl.Metadata,
			&decl.UploadedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		declarations = append(declarations, decl)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return declarations, nil
}

// SelectAllDeclarations retrieves all declarations with pagination
func (h *DeclarationsDBHandler) SelectAllDeclarations(lastUploadedAt *time.Time, limit int) ([]*model.Declaration, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_all_declarations($1, $2)`,
		lastUploadedAt,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var declarations []*model.Declaration
	for rows.Next() {
		decl := &model.Declaration{}
		err := rows.Scan(
			&decl.ID,
			&decl.RID,
			&decl.Filename,
			&decl.MaterialID,
			&decl.SKU,
			&decl.SupplierName,
			&decl.Metadata,
			&decl.UploadedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		declarations = append(declarations, decl)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return declarations, nil
}

// DeleteDeclaration deletes a declaration by RID
func (h *DeclarationsDBHandler) DeleteDeclaration(rid uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_declaration($1)`,
		rid,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
