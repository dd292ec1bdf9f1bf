// Command seed creates collection indexes and loads a small sample catalog.
package main

import (
	"context"
	"log"
	"time"

	"electrohive-be/internal/cart"
	"electrohive-be/internal/config"
	"electrohive-be/internal/db"
	"electrohive-be/internal/product"
	"electrohive-be/internal/user"
)

func main() {
	cfg := config.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.Connect(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer db.Disconnect(context.Background(), database)

	if err := cart.NewRepository(database).CreateIndexes(ctx); err != nil {
		log.Fatalf("failed creating cart indexes: %v", err)
	}
	if err := user.NewRepository(database).CreateIndexes(ctx); err != nil {
		log.Fatalf("failed creating user indexes: %v", err)
	}

	products := []*product.Product{
		{Name: "Wireless Earbuds Pro", Brand: "Portronics", Category: "audio", Price: 2499, ImageURL: "/images/earbuds-pro.jpg", Stock: 120, Description: "Active noise cancellation, 24h battery"},
		{Name: "Mechanical Keyboard TKL", Brand: "Portronics", Category: "peripherals", Price: 4999, ImageURL: "/images/keyboard-tkl.jpg", Stock: 45, Description: "Hot-swappable switches, RGB"},
		{Name: "65W GaN Charger", Brand: "Portronics", Category: "power", Price: 1799, ImageURL: "/images/gan-65w.jpg", Stock: 200, Description: "Dual USB-C, one USB-A"},
		{Name: "Smartwatch Active", Brand: "Portronics", Category: "wearables", Price: 3499, ImageURL: "/images/watch-active.jpg", Stock: 80, Description: "AMOLED display, SpO2"},
		{Name: "Bluetooth Speaker Mini", Brand: "Portronics", Category: "audio", Price: 1299, ImageURL: "/images/speaker-mini.jpg", Stock: 150, Description: "IPX6, 12h playtime"},
	}

	if err := product.NewRepository(database).Insert(ctx, products); err != nil {
		log.Fatalf("failed seeding products: %v", err)
	}

	log.Printf("seeded %d products into %s", len(products), cfg.DBName)
}
