package models

import (
	"fmt"
	"log"
	"os"

	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/*
Column Mismatch Report Usage:

Lists database columns that have no matching field in the Go model structs.

To generate the report:

1. Set the environment variable: GENERATE_COLUMN_REPORT=true
2. Run the application: go run main.go

Example output:
=== COLUMN MISMATCH REPORT ===
--- Table: posts ---
Found 1 columns not accounted for in model:
  - legacy_summary

=== SUMMARY ===
Total mismatched columns across all tables: 1
*/

// All returns every persisted model in migration order
func All() []interface{} {
	return []interface{}{
		&Author{},
		&Post{},
		&Tag{},
		&PostTagLink{},
	}
}

// Migrate creates or updates the tables for every model
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}

func GenerateModels(db *gorm.DB) {
	if err := db.Exec("SELECT 1").Error; err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             0,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: false,
			Colorful:                  true,
		},
	)
	db = db.Session(&gorm.Session{
		Logger:                 newLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./generated",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(
		Author{},
		Post{},
		Tag{},
		PostTagLink{},
	)

	fmt.Println("Migrating models...")
	if err := Migrate(db); err != nil {
		fmt.Printf("Error during models migration: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Database migration completed successfully!")

	GenerateColumnMismatchReport(db)

	g.Execute()
	fmt.Println("Model generation complete!")
}

// GenerateColumnMismatchReport prints the columns present in the database but absent from the models
func GenerateColumnMismatchReport(db *gorm.DB) {
	fmt.Println("=== COLUMN MISMATCH REPORT ===")

	totalMismatches := 0
	for _, model := range All() {
		mismatches, table, err := ColumnMismatches(db, model)
		if err != nil {
			fmt.Printf("Error inspecting %T: %v\n", model, err)
			continue
		}

		fmt.Printf("\n--- Table: %s ---\n", table)
		if len(mismatches) == 0 {
			fmt.Println("All columns are accounted for in the model.")
			continue
		}
		fmt.Printf("Found %d columns not accounted for in model:\n", len(mismatches))
		for _, col := range mismatches {
			fmt.Printf("  - %s\n", col)
		}
		totalMismatches += len(mismatches)
	}

	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Total mismatched columns across all tables: %d\n", totalMismatches)
}

// ColumnMismatches returns the columns of model's table that the model does not map, and the table name.
// A table that does not exist yet has no mismatches.
func ColumnMismatches(db *gorm.DB, model interface{}) ([]string, string, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, "", fmt.Errorf("parse model: %w", err)
	}
	table := stmt.Schema.Table

	if !db.Migrator().HasTable(model) {
		return nil, table, nil
	}

	columnTypes, err := db.Migrator().ColumnTypes(model)
	if err != nil {
		return nil, table, fmt.Errorf("error querying columns for table %s: %w", table, err)
	}

	modelFields := make(map[string]bool, len(stmt.Schema.DBNames))
	for _, name := range stmt.Schema.DBNames {
		modelFields[name] = true
	}

	var mismatches []string
	for _, col := range columnTypes {
		if !modelFields[col.Name()] {
			mismatches = append(mismatches, col.Name())
		}
	}
	return mismatches, table, nil
}
