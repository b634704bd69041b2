package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/prefeitura-rio/app-fomento/internal/config"
	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/prefeitura-rio/app-fomento/internal/services"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// SeedZonas maps bairros of Rio de Janeiro to the dashboard zones.
var SeedZonas = map[models.Zona][]string{
	models.ZonaCentro: {
		"Centro", "Lapa", "Santa Teresa", "Gamboa", "Saúde", "Santo Cristo",
		"Cidade Nova", "Catumbi", "Estácio", "Rio Comprido", "Paquetá",
	},
	models.ZonaSul: {
		"Copacabana", "Ipanema", "Leblon", "Botafogo", "Flamengo", "Laranjeiras",
		"Catete", "Glória", "Humaitá", "Jardim Botânico", "Gávea", "Lagoa",
		"Leme", "Urca", "Cosme Velho", "São Conrado", "Rocinha", "Vidigal",
	},
	models.ZonaNorte: {
		"Tijuca", "Vila Isabel", "Grajaú", "Andaraí", "Maracanã", "Méier",
		"Engenho Novo", "Madureira", "Penha", "Olaria", "Ramos", "Bonsucesso",
		"Ilha do Governador", "Irajá", "Pavuna", "Complexo do Alemão", "Maré",
		"São Cristóvão", "Benfica", "Cascadura",
	},
	models.ZonaOeste: {
		"Barra da Tijuca", "Recreio dos Bandeirantes", "Jacarepaguá", "Campo Grande",
		"Bangu", "Realengo", "Santa Cruz", "Guaratiba", "Sepetiba", "Padre Miguel",
		"Taquara", "Freguesia (Jacarepaguá)", "Vargem Grande", "Cidade de Deus",
	},
}

func main() {
	cityID := flag.String("city", "rio-de-janeiro", "city whose zone table is seeded")
	replace := flag.Bool("replace", false, "delete the existing table of the city first")
	flag.Parse()

	fmt.Printf("🌱 Seeding zone table for %s...\n", *cityID)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := zap.NewNop()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db, err := config.NewMongoDB(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()
	cache := config.NewRedis(ctx, cfg, logger)

	collection := db.Collection(cfg.ZonaCollection)
	count, err := collection.CountDocuments(ctx, bson.M{"cityId": *cityID})
	if err != nil {
		log.Fatalf("Failed to count existing rows: %v", err)
	}
	if count > 0 {
		if !*replace {
			fmt.Printf("⚠️  Found %d existing rows; new bairros are merged in (use -replace to start over)\n", count)
		} else {
			result, err := collection.DeleteMany(ctx, bson.M{"cityId": *cityID})
			if err != nil {
				log.Fatalf("Failed to delete existing rows: %v", err)
			}
			fmt.Printf("🗑️  Deleted %d existing rows\n", result.DeletedCount)
		}
	}

	zones := services.NewZoneService(db, cache, cfg, logger)

	names := make([]string, 0, len(SeedZonas))
	for zona := range SeedZonas {
		names = append(names, string(zona))
	}
	sort.Strings(names)

	seeded := 0
	for _, name := range names {
		zona := models.Zona(name)
		for _, bairro := range SeedZonas[zona] {
			if _, err := zones.SetZona(ctx, *cityID, bairro, zona); err != nil {
				log.Fatalf("Failed to seed %q: %v", bairro, err)
			}
			seeded++
		}
		fmt.Printf("  ✓ [%s] %d bairros\n", zona, len(SeedZonas[zona]))
	}

	fmt.Printf("\n🎉 Seeded %d bairros successfully!\n", seeded)
}
