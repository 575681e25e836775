package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed chunks.sql
var chunksSQL string

//go:embed declarations.sql
var declarationsSQL string

//go:embed materials.sql
var materialsSQL string

// Function lists for verification
var ChunksFunctions = []string{
	"init_chunks",
	"upsert_chunk",
	"select_chunk",
	"select_chunks_by_material",
	"select_chunks_by_similarity",
	"delete_chunks_by_material",
}

var DeclarationsFunctions = []string{
	"init_declarations",
	"insert_declaration",
	"select_declaration",
	"select_declarations_by_material",
	"select_all_declarations",
	"delete_declaration",
}

var MaterialsFunctions = []string{
	"init_materials",
	"upsert_material",
	"select_material",
	"select_all_materials",
	"delete_material",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadChunksSql loads chunk-related SQL functions
func LoadChunksSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, ChunksFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing chunks functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(chunksSQL)
	if err != nil {
		return fmt.Errorf("error executing chunks SQL: %w", err)
	}

	exist, err := checkFunctions(db, ChunksFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL chunks functions loaded successfully")
	return nil
}

// LoadDeclarationsSql loads declaration-related SQL functions
func LoadDeclarationsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, DeclarationsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing declarations functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(declarationsSQL)
	if err != nil {
		return fmt.Errorf("error executing declarations SQL: %w", err)
	}

	exist, err := checkFunctions(db, DeclarationsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL declarations functions loaded successfully")
	return nil
}

// LoadMaterialsSql loads material-related SQL functions
func LoadMaterialsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, MaterialsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing materials functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(materialsSQL)
	if err != nil {
		return fmt.Errorf("error executing materials SQL: %w", err)
	}

	exist, err := checkFunctions(db, MaterialsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL materials functions loaded successfully")
	return nil
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadChunksSql(db, force); err != nil {
		return err
	}

	if err := LoadDeclarationsSql(db, force); err != nil {
		return err
	}

	if err := LoadMaterialsSql(db, force); err != nil {
		return err
	}

	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
