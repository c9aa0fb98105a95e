package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/engineermuzamil/modernstore/internal/auth"
	"github.com/engineermuzamil/modernstore/internal/cache"
	"github.com/engineermuzamil/modernstore/internal/domain"
	"github.com/engineermuzamil/modernstore/internal/repository"
)

const maxLineQuantity = 99

// CartService mutates the per-customer staging area. Every stock check here
// is advisory — a fast user-facing rejection, not a reservation. Checkout
// re-validates everything inside its own atomic unit.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	ledger   repository.StockLedger
	cache    cache.CartCache
	sfg      singleflight.Group // prevents cache stampede on hot carts

	// genMu/gens guard the cache fill against concurrent invalidation: a fill
	// started before a mutation must not leave a stale view cached after it.
	genMu sync.Mutex
	gens  map[uuid.UUID]uint64
}

func NewCartService(store repository.Store, cartCache cache.CartCache) *CartService {
	return &CartService{
		carts:    store,
		products: store,
		ledger:   store,
		cache:    cartCache,
		gens:     make(map[uuid.UUID]uint64),
	}
}

func (s *CartService) generation(userID uuid.UUID) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.gens[userID]
}

func (s *CartService) bumpGeneration(userID uuid.UUID) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.gens[userID]++
}

func (s *CartService) GetCart(ctx context.Context, identity domain.Identity) ([]domain.CartLine, error) {
	if err := auth.RequireCustomer(identity); err != nil {
		return nil, err
	}

	v, err, _ := s.sfg.Do(identity.UserID.String(), func() (interface{}, error) {
		if s.cache != nil {
			lines, cacheErr := s.cache.Get(ctx, identity.UserID)
			if cacheErr == nil {
				return lines, nil
			}
			if !errors.Is(cacheErr, cache.ErrCacheMiss) {
				log.Printf("cart cache get error: %v", cacheErr)
			}
		}

		gen := s.generation(identity.UserID)
		lines, repoErr := s.carts.GetCart(ctx, identity.UserID)
		if repoErr != nil {
			return nil, repoErr
		}

		if s.cache != nil {
			go func() {
				setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if setErr := s.cache.Set(setCtx, identity.UserID, lines); setErr != nil {
					log.Printf("cart cache set error: %v", setErr)
					return
				}
				// A mutation landed while this fill was in flight; its
				// invalidation may have run before the Set, so drop the entry.
				if s.generation(identity.UserID) != gen {
					if delErr := s.cache.Delete(setCtx, identity.UserID); delErr != nil {
						log.Printf("cart cache invalidate error: %v", delErr)
					}
				}
			}()
		}
		return lines, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.CartLine), nil
}

func (s *CartService) AddItem(ctx context.Context, identity domain.Identity, productID uuid.UUID, qty int) (*domain.CartItem, error) {
	if err := auth.RequireCustomer(identity); err != nil {
		return nil, err
	}
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}

	newTotal := qty
	existing, err := s.carts.GetItem(ctx, identity.UserID, productID)
	if err == nil {
		newTotal += existing.Quantity
	} else if !errors.Is(err, domain.ErrCartItemNotFound) {
		return nil, err
	}

	if err := s.advisoryStockCheck(ctx, productID, newTotal); err != nil {
		return nil, err
	}

	item, err := s.carts.AddItem(ctx, identity.UserID, productID, qty)
	if err != nil {
		return nil, err
	}
	s.invalidateCache(identity.UserID)
	return item, nil
}

// SetQuantity replaces the staged quantity; qty <= 0 removes the entry, so a
// set-to-zero round-trips to "never added".
func (s *CartService) SetQuantity(ctx context.Context, identity domain.Identity, productID uuid.UUID, qty int) (*domain.CartItem, error) {
	if err := auth.RequireCustomer(identity); err != nil {
		return nil, err
	}
	if qty <= 0 {
		return nil, s.RemoveItem(ctx, identity, productID)
	}
	if qty > maxLineQuantity {
		return nil, &domain.ValidationError{Field: "quantity", Reason: "must be between 1 and 99"}
	}

	if err := s.advisoryStockCheck(ctx, productID, qty); err != nil {
		return nil, err
	}

	item, err := s.carts.SetQuantity(ctx, identity.UserID, productID, qty)
	if err != nil {
		return nil, err
	}
	s.invalidateCache(identity.UserID)
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, identity domain.Identity, productID uuid.UUID) error {
	if err := auth.RequireCustomer(identity); err != nil {
		return err
	}
	if err := s.carts.RemoveItem(ctx, identity.UserID, productID); err != nil {
		return err
	}
	s.invalidateCache(identity.UserID)
	return nil
}

func (s *CartService) Clear(ctx context.Context, identity domain.Identity) error {
	if err := auth.RequireCustomer(identity); err != nil {
		return err
	}
	if err := s.carts.Clear(ctx, identity.UserID); err != nil {
		return err
	}
	s.invalidateCache(identity.UserID)
	return nil
}

// advisoryStockCheck rejects quantities the current snapshot cannot satisfy.
// It is a UX optimization only: stock may still drain between this check and
// checkout, which is why the coordinator re-validates inside its transaction.
func (s *CartService) advisoryStockCheck(ctx context.Context, productID uuid.UUID, wanted int) error {
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return err
	}
	available, err := s.ledger.CurrentStock(ctx, productID)
	if err != nil {
		return err
	}
	if available < wanted {
		return &domain.InsufficientStockError{
			ProductID: productID,
			Requested: wanted,
			Available: available,
		}
	}
	return nil
}

// InvalidateCartView is the shared invalidation entry point; checkout calls
// it after consuming the cart.
func (s *CartService) InvalidateCartView(userID uuid.UUID) {
	s.invalidateCache(userID)
}

func (s *CartService) invalidateCache(userID uuid.UUID) {
	s.bumpGeneration(userID)
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cart cache invalidate error: %v", err)
	}
}

func validateQuantity(qty int) error {
	if qty < 1 || qty > maxLineQuantity {
		return &domain.ValidationError{Field: "quantity", Reason: "must be between 1 and 99"}
	}
	return nil
}
