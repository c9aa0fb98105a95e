package repository

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/engineermuzamil/modernstore/internal/domain"
)

// MemoryStore is an in-process Store used for development and tests. One
// mutex covers users, products, carts and orders, so the checkout unit is
// trivially atomic: validation runs in a first pass and nothing is applied
// until every line is known to fit.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]*domain.User
	byEmail  map[string]uuid.UUID
	products map[uuid.UUID]*domain.Product
	carts    map[uuid.UUID]map[uuid.UUID]*domain.CartItem // userID -> productID -> item
	orders   map[uuid.UUID][]*domain.Order                // userID -> orders, newest first
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uuid.UUID]*domain.User),
		byEmail:  make(map[string]uuid.UUID),
		products: make(map[uuid.UUID]*domain.Product),
		carts:    make(map[uuid.UUID]map[uuid.UUID]*domain.CartItem),
		orders:   make(map[uuid.UUID][]*domain.Order),
	}
}

func (s *MemoryStore) Close() error { return nil }

// --- users ---

func (s *MemoryStore) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return domain.ErrDuplicateEmail
	}
	u := *user
	s.users[u.ID] = &u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byEmail[email]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	u := *s.users[id]
	return &u, nil
}

// --- products ---

func (s *MemoryStore) ListProducts(_ context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var products []*domain.Product
	for _, product := range s.products {
		if filter.Category != "" && filter.Category != "all" && product.Category != filter.Category {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(product.Title), needle) &&
				!strings.Contains(strings.ToLower(product.Description), needle) {
				continue
			}
		}
		p := *product
		products = append(products, &p)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (s *MemoryStore) GetProduct(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[id]
	if !exists {
		return nil, domain.ErrProductNotFound
	}
	p := *product
	return &p, nil
}

func (s *MemoryStore) CreateProduct(_ context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := *product
	s.products[p.ID] = &p
	return nil
}

func (s *MemoryStore) UpdateProduct(_ context.Context, id uuid.UUID, update domain.ProductUpdate) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, exists := s.products[id]
	if !exists {
		return nil, domain.ErrProductNotFound
	}
	if update.Title != nil {
		product.Title = *update.Title
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.ImageURL != nil {
		product.ImageURL = *update.ImageURL
	}
	if update.Category != nil {
		product.Category = *update.Category
	}
	if update.Stock != nil {
		product.Stock = *update.Stock
	}
	product.UpdatedAt = time.Now().UTC()
	p := *product
	return &p, nil
}

func (s *MemoryStore) DeleteProduct(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return domain.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

// --- stock ledger ---

func (s *MemoryStore) CurrentStock(_ context.Context, productID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[productID]
	if !exists {
		return 0, domain.ErrProductNotFound
	}
	return product.Stock, nil
}

func (s *MemoryStore) TryDecrement(_ context.Context, productID uuid.UUID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tryDecrementLocked(productID, qty)
}

func (s *MemoryStore) tryDecrementLocked(productID uuid.UUID, qty int) error {
	product, exists := s.products[productID]
	if !exists {
		return domain.ErrProductNotFound
	}
	if product.Stock < qty {
		return &domain.InsufficientStockError{
			ProductID: productID,
			Requested: qty,
			Available: product.Stock,
		}
	}
	product.Stock -= qty
	product.UpdatedAt = time.Now().UTC()
	return nil
}

// --- cart ---

func (s *MemoryStore) GetCart(_ context.Context, userID uuid.UUID) ([]domain.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.cartItemsSorted(userID)
	lines := make([]domain.CartLine, 0, len(items))
	for _, item := range items {
		product, exists := s.products[item.ProductID]
		if !exists {
			continue
		}
		lines = append(lines, domain.CartLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Title:     product.Title,
			Price:     product.Price,
			ImageURL:  product.ImageURL,
			Stock:     product.Stock,
		})
	}
	if len(lines) == 0 {
		return nil, nil
	}
	return lines, nil
}

func (s *MemoryStore) GetItem(_ context.Context, userID, productID uuid.UUID) (*domain.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.carts[userID][productID]
	if !exists {
		return nil, domain.ErrCartItemNotFound
	}
	it := *item
	return &it, nil
}

func (s *MemoryStore) AddItem(_ context.Context, userID, productID uuid.UUID, qty int) (*domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[productID]; !exists {
		return nil, domain.ErrProductNotFound
	}
	cart := s.cartLocked(userID)
	if item, exists := cart[productID]; exists {
		item.Quantity += qty
		it := *item
		return &it, nil
	}
	item := &domain.CartItem{ProductID: productID, Quantity: qty, AddedAt: time.Now().UTC()}
	cart[productID] = item
	it := *item
	return &it, nil
}

func (s *MemoryStore) SetQuantity(_ context.Context, userID, productID uuid.UUID, qty int) (*domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[productID]; !exists {
		return nil, domain.ErrProductNotFound
	}
	cart := s.cartLocked(userID)
	item, exists := cart[productID]
	if !exists {
		item = &domain.CartItem{ProductID: productID, AddedAt: time.Now().UTC()}
		cart[productID] = item
	}
	item.Quantity = qty
	it := *item
	return &it, nil
}

func (s *MemoryStore) RemoveItem(_ context.Context, userID, productID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts[userID], productID)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
	return nil
}

// --- orders ---

func (s *MemoryStore) PlaceOrder(_ context.Context, userID uuid.UUID, shipping domain.ShippingDetails) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.cartItemsSorted(userID)
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	// First pass: validate every line so no partial decrement is ever applied.
	lines := make([]domain.OrderLine, 0, len(items))
	for _, item := range items {
		product, exists := s.products[item.ProductID]
		if !exists {
			return nil, domain.ErrProductNotFound
		}
		if product.Stock < item.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Available: product.Stock,
			}
		}
		lines = append(lines, domain.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
	}

	// Second pass: apply decrements, persist the order, clear the cart.
	order := &domain.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Shipping:  shipping,
		Lines:     lines,
		CreatedAt: time.Now().UTC(),
	}
	for _, line := range lines {
		if err := s.tryDecrementLocked(line.ProductID, line.Quantity); err != nil {
			return nil, err
		}
		order.Total += line.UnitPrice * float64(line.Quantity)
	}
	s.orders[userID] = append([]*domain.Order{order}, s.orders[userID]...)
	delete(s.carts, userID)

	o := *order
	return &o, nil
}

func (s *MemoryStore) GetOrder(_ context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, order := range s.orders[userID] {
		if order.ID == orderID {
			o := *order
			return &o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (s *MemoryStore) ListOrdersByUser(_ context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]*domain.Order, 0, len(s.orders[userID]))
	for _, order := range s.orders[userID] {
		o := *order
		orders = append(orders, &o)
	}
	return orders, nil
}

// --- helpers ---

func (s *MemoryStore) cartLocked(userID uuid.UUID) map[uuid.UUID]*domain.CartItem {
	cart, exists := s.carts[userID]
	if !exists {
		cart = make(map[uuid.UUID]*domain.CartItem)
		s.carts[userID] = cart
	}
	return cart
}

// cartItemsSorted returns the user's cart entries in ascending product id
// order, the same stable order the checkout decrement phase uses.
func (s *MemoryStore) cartItemsSorted(userID uuid.UUID) []*domain.CartItem {
	cart := s.carts[userID]
	items := make([]*domain.CartItem, 0, len(cart))
	for _, item := range cart {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return bytes.Compare(items[i].ProductID[:], items[j].ProductID[:]) < 0
	})
	return items
}
