package main

import (
	"context"
	"fmt"
	"log"

	"github.com/declarant/declarant"
	"github.com/declarant/declarant/helper"
	"github.com/declarant/declarant/model"
)

const sampleDeclaration = `Declaration of Conformity

Supplier: Acme Corp
Material: MAT-1
Date: 2026-01-15

This declaration confirms that the packaging of material MAT-1 complies
with Directive 94/62/EC on packaging and packaging waste.

Lead, cadmium and hexavalent chromium have not been intentionally
introduced into the manufacture or processing of the packaging.
The packaging is fully recyclable and contains 40 percent recycled content.`

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	d, err := declarant.NewDeclarant(dbConfig, nil, 384)
	if err != nil {
		log.Fatalf("Failed to create declarant: %v", err)
	}
	defer d.Close()

	// Set up the default pipeline (word-window chunking, MiniLM embeddings,
	// Anthropic generation; requires ANTHROPIC_API_KEY)
	if err := d.UseDefaultPipeline(""); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	doc := &model.SourceDocument{
		Filename:   "acme_mat1_declaration.txt",
		MaterialID: "MAT-1",
		Text:       sampleDeclaration,
	}

	// Run the full assessment against a one-entry BOM
	fmt.Println("Assessing declaration...")
	result, err := d.Assess(context.Background(), []string{"MAT-1"}, []*model.SourceDocument{doc})
	if err != nil {
		log.Fatalf("Failed to assess: %v", err)
	}
	fmt.Printf("Inserted: %d, updated: %d, skipped: %d\n", result.Inserted, result.Updated, result.Skipped)

	// Inspect the persisted assessment row
	material, err := d.Materials.SelectMaterial("MAT-1")
	if err != nil {
		log.Fatalf("Failed to select material: %v", err)
	}
	fmt.Printf("\nMaterial %s\n", material.MaterialID)
	fmt.Printf("Supplier: %s\n", material.SupplierName)
	if material.Compliant != nil {
		fmt.Printf("Compliant: %t\n", *material.Compliant)
	}
	for _, mention := range material.Mentions {
		fmt.Printf("Mention: %s\n", mention.Keyword)
	}

	// The indexed chunks stay searchable
	queryText := "Which regulations does the packaging comply with?"
	fmt.Printf("\nQuerying: %s\n", queryText)

	config := model.DefaultQueryConfig()
	config.TopK = 3

	results, err := d.Search(context.Background(), queryText, &config)
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}

	fmt.Printf("\nFound %d results:\n", len(results))
	for i, result := range results {
		fmt.Printf("\n--- Result %d ---\n", i+1)
		fmt.Printf("Distance: %.4f\n", result.Distance)
		fmt.Printf("Content: %s\n", result.Chunk.Content)
	}

	fmt.Println("\nBasic example completed successfully!")
}
