package models

import (
	"fmt"
	"sort"

	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

/*
Maintenance modes

GENERATE_MODELS=true runs the migration and writes typed query helpers for every model
into ./generated using gorm/gen.

GENERATE_COLUMN_REPORT=true prints, for each table, the database columns that no model
field maps to. Useful after hand-edited migrations or a restore from an older dump.

Example output:
=== COLUMN MISMATCH REPORT ===
--- Table: posts ---
Found 1 columns not accounted for in model:
  - legacy_slug
*/

// AllModels returns every persisted model in migration order.
func AllModels() []any {
	return []any{
		&User{},
		&Group{},
		&Category{},
		&Tag{},
		&Post{},
		&Comment{},
		&Contact{},
		&Newsletter{},
	}
}

// GenerateModels migrates the schema and generates query code into outPath.
func GenerateModels(db *gorm.DB, outPath string) error {
	if outPath == "" {
		outPath = "./generated"
	}

	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("migrating models: %w", err)
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(
		User{},
		Group{},
		Category{},
		Tag{},
		Post{},
		Comment{},
		Contact{},
		Newsletter{},
	)
	g.Execute()

	return nil
}

// TableReport lists the columns of one table that no model field accounts for.
type TableReport struct {
	Table     string
	Exists    bool
	Unmatched []string
}

// ColumnReport compares the live schema against the model definitions.
func ColumnReport(db *gorm.DB) ([]TableReport, error) {
	var reports []TableReport

	for _, model := range AllModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parsing model %T: %w", model, err)
		}
		report := TableReport{Table: stmt.Schema.Table}

		if !db.Migrator().HasTable(model) {
			reports = append(reports, report)
			continue
		}
		report.Exists = true

		columnTypes, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("reading columns for %s: %w", report.Table, err)
		}
		report.Unmatched = findColumnMismatches(columnTypes, stmt.Schema)
		reports = append(reports, report)
	}

	return reports, nil
}

// findColumnMismatches finds columns that exist in the database but not in the model
func findColumnMismatches(columnTypes []gorm.ColumnType, s *schema.Schema) []string {
	var mismatches []string
	for _, col := range columnTypes {
		if s.LookUpField(col.Name()) == nil {
			mismatches = append(mismatches, col.Name())
		}
	}
	sort.Strings(mismatches)
	return mismatches
}

// PrintColumnReport writes the report in the format shown above.
func PrintColumnReport(reports []TableReport) {
	fmt.Println("=== COLUMN MISMATCH REPORT ===")

	total := 0
	for _, r := range reports {
		fmt.Printf("\n--- Table: %s ---\n", r.Table)
		switch {
		case !r.Exists:
			fmt.Println("Table does not exist yet (will be created during migration)")
		case len(r.Unmatched) == 0:
			fmt.Println("All columns are accounted for in the model.")
		default:
			fmt.Printf("Found %d columns not accounted for in model:\n", len(r.Unmatched))
			for _, col := range r.Unmatched {
				fmt.Printf("  - %s\n", col)
			}
			total += len(r.Unmatched)
		}
	}

	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Total mismatched columns across all tables: %d\n", total)
}
