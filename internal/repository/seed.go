package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/engineermuzamil/modernstore/internal/domain"
)

// SeedDemoData loads the starter catalog and the admin account. It is a no-op
// when products already exist, so it is safe to run on every startup.
func SeedDemoData(ctx context.Context, store Store, adminEmail, adminPasswordHash string) error {
	existing, err := store.ListProducts(ctx, domain.ProductFilter{})
	if err != nil {
		return fmt.Errorf("check existing products: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	if _, err := store.GetUserByEmail(ctx, adminEmail); errors.Is(err, domain.ErrUserNotFound) {
		admin := &domain.User{
			ID:           uuid.New(),
			Email:        adminEmail,
			PasswordHash: adminPasswordHash,
			FirstName:    "Admin",
			LastName:     "User",
			Role:         domain.RoleAdmin,
			CreatedAt:    time.Now().UTC(),
		}
		if err := store.CreateUser(ctx, admin); err != nil {
			return fmt.Errorf("seed admin user: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}

	seedProducts := []domain.Product{
		{Title: "Premium Wireless Headphones", Description: "High-quality audio with noise cancellation", Price: 299.99, Category: "electronics", Stock: 45},
		{Title: "Classic Denim Jacket", Description: "Timeless style for any occasion", Price: 89.99, Category: "clothing", Stock: 23},
		{Title: "Smart Coffee Maker", Description: "Programmable brewing with app control", Price: 199.99, Category: "home", Stock: 15},
		{Title: "JavaScript Guide", Description: "Complete guide to modern JavaScript", Price: 49.99, Category: "books", Stock: 30},
		{Title: "Premium Yoga Mat Set", Description: "Eco-friendly with carrying strap", Price: 79.99, Category: "sports", Stock: 20},
		{Title: "Latest Smartphone", Description: "5G enabled with amazing camera", Price: 899.99, Category: "electronics", Stock: 12},
		{Title: "Designer Table Lamp", Description: "Minimalist design with warm light", Price: 129.99, Category: "home", Stock: 8},
		{Title: "Performance Running Shoes", Description: "Lightweight with superior cushioning", Price: 159.99, Category: "clothing", Stock: 35},
	}
	now := time.Now().UTC()
	for i := range seedProducts {
		product := seedProducts[i]
		product.ID = uuid.New()
		product.CreatedAt = now
		product.UpdatedAt = now
		if err := store.CreateProduct(ctx, &product); err != nil {
			return fmt.Errorf("seed product %q: %w", product.Title, err)
		}
	}

	log.Printf("seeded %d demo products", len(seedProducts))
	return nil
}
