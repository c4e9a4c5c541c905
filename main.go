package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/asaidimu/go-hifadhi/core/persistence"
	"github.com/asaidimu/go-hifadhi/core/query"
	"github.com/asaidimu/go-hifadhi/core/schema"
	"github.com/asaidimu/go-hifadhi/core/storage"
)

const (
	basePath       = "data"
	userSchemaJSON = `{
		"name": "users",
		"fields": [
			{
				"name": "name",
				"type": "string",
				"required": true
			},
			{
				"name": "email",
				"type": "string",
				"required": true,
				"unique": true
			},
			{
				"name": "age",
				"type": "number",
				"indexed": true
			},
			{
				"name": "role",
				"type": "string",
				"enum": ["admin", "member", "guest"]
			},
			{
				"name": "active",
				"type": "boolean"
			}
		]
	}`
)

func main() {
	defer os.RemoveAll(basePath)

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	sc, err := schema.ParseSchema([]byte(userSchemaJSON))
	if err != nil {
		log.Fatalf("failed to parse schema: %v", err)
	}

	users, err := persistence.NewCollection(sc, storage.NewOSGateway(logger), basePath, logger)
	if err != nil {
		log.Fatalf("failed to create collection: %v", err)
	}
	if err := users.Initialize(); err != nil {
		log.Fatalf("failed to initialize collection: %v", err)
	}

	users.Subscribe(persistence.EventInsertSuccess, func(ctx context.Context, event persistence.Event) error {
		fmt.Printf("event: %s on %s\n", event.Type, event.Collection)
		return nil
	})

	alice, err := users.InsertOne(schema.Document{
		"name":   "Alice",
		"email":  "alice@example.com",
		"age":    30,
		"role":   "admin",
		"active": true,
	})
	if err != nil {
		log.Fatalf("insert failed: %v", err)
	}
	fmt.Printf("inserted %s\n", alice[schema.FieldID])

	if _, err := users.InsertMany([]schema.Document{
		{"name": "Bob", "email": "bob@example.com", "age": 30, "role": "member", "active": false},
		{"name": "Carol", "email": "carol@example.com", "age": 41, "role": "member", "active": true},
	}); err != nil {
		log.Fatalf("batch insert failed: %v", err)
	}

	// Duplicate email: rejected by the unique constraint.
	if _, err := users.InsertOne(schema.Document{
		"name":  "Mallory",
		"email": "alice@example.com",
	}); err != nil {
		fmt.Printf("rejected duplicate: %v\n", err)
	}

	active30 := users.Find(query.Where("age", 30), query.Where("active", true))
	fmt.Printf("active users aged 30: %d\n", len(active30))

	users.OpenTransaction()
	if _, err := users.UpdateByID(alice[schema.FieldID].(string), schema.Document{"role": "member"}); err != nil {
		log.Fatalf("update failed: %v", err)
	}
	if err := users.AbortTransaction(); err != nil {
		log.Fatalf("abort failed: %v", err)
	}

	reloaded, _ := users.FindByID(alice[schema.FieldID].(string))
	fmt.Printf("role after abort: %v\n", reloaded["role"])
	fmt.Printf("total records: %d\n", users.CountAll())
}
