package cart

import (
	"context"
	"errors"
	"time"

	"electrohive-be/internal/logger"
	"electrohive-be/internal/product"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Service is the cart aggregator: it keeps the line collection for one user
// and re-derives totals from current product prices on every mutation.
type Service interface {
	AddItem(ctx context.Context, userID, productID string, quantity int) (*View, error)
	GetCart(ctx context.Context, userID string) (*View, error)
	UpdateItemQuantity(ctx context.Context, userID, lineID string, quantity int) (*View, error)
	RemoveItem(ctx context.Context, userID, lineID string) (*View, error)
	Clear(ctx context.Context, userID string) error
}

type service struct {
	repo     Repository
	products product.Repository
	cache    ViewCache
	sfg      singleflight.Group // collapses concurrent cache misses per user
}

func NewService(repo Repository, products product.Repository, cache ViewCache) Service {
	return &service{repo: repo, products: products, cache: cache}
}

// AddItem merges quantity into an existing line for the same product, or
// appends a new line preserving insertion order. Totals are recomputed and
// persisted in the same write as the lines.
func (s *service) AddItem(ctx context.Context, userID, productID string, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	p, err := s.products.GetByID(ctx, pid)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}

	c, err := s.getOrNew(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range c.Lines {
		if c.Lines[i].ProductID == pid {
			c.Lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		c.Lines = append(c.Lines, CartLine{
			ID:        primitive.NewObjectID(),
			ProductID: pid,
			Quantity:  quantity,
			AddedAt:   time.Now(),
		})
	}

	return s.commit(ctx, c)
}

func (s *service) GetCart(ctx context.Context, userID string) (*View, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cached, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			logger.FromCtx(ctx).Warn("cart cache get failed", zap.Error(err))
		}

		c, err := s.repo.Get(ctx, userID)
		if errors.Is(err, ErrCartNotFound) {
			return &View{Items: []LineView{}}, nil
		}
		if err != nil {
			return nil, err
		}

		view, err := s.populate(ctx, c)
		if err != nil {
			return nil, err
		}

		if err := s.cache.Set(ctx, userID, view); err != nil {
			logger.FromCtx(ctx).Warn("cart cache set failed", zap.Error(err))
		}
		return view, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*View), nil
}

func (s *service) UpdateItemQuantity(ctx context.Context, userID, lineID string, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	lid, err := primitive.ObjectIDFromHex(lineID)
	if err != nil {
		return nil, ErrLineNotFound
	}

	c, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		return nil, ErrLineNotFound
	}
	if err != nil {
		return nil, err
	}

	found := false
	for i := range c.Lines {
		if c.Lines[i].ID == lid {
			c.Lines[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil, ErrLineNotFound
	}

	return s.commit(ctx, c)
}

func (s *service) RemoveItem(ctx context.Context, userID, lineID string) (*View, error) {
	lid, err := primitive.ObjectIDFromHex(lineID)
	if err != nil {
		return nil, ErrLineNotFound
	}

	c, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		return nil, ErrLineNotFound
	}
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range c.Lines {
		if c.Lines[i].ID == lid {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrLineNotFound
	}

	c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
	return s.commit(ctx, c)
}

// Clear unconditionally resets the cart to an empty line sequence and zero
// totals. There is nothing to recompute.
func (s *service) Clear(ctx context.Context, userID string) error {
	c, err := s.getOrNew(ctx, userID)
	if err != nil {
		return err
	}

	c.Lines = []CartLine{}
	c.TotalPrice = 0
	c.TotalItems = 0

	if err := s.repo.Save(ctx, c); err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

func (s *service) getOrNew(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		return &Cart{UserID: userID, Lines: []CartLine{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// commit recomputes totals at current prices, persists lines+totals in one
// write, invalidates the cached view and returns the populated view. Any
// price-lookup failure aborts before the write, so nothing partial lands.
func (s *service) commit(ctx context.Context, c *Cart) (*View, error) {
	byID, err := s.lookupProducts(ctx, c)
	if err != nil {
		return nil, err
	}

	var total float64
	var count int
	for _, l := range c.Lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, ErrProductNotFound
		}
		total += float64(l.Quantity) * p.Price
		count += l.Quantity
	}
	c.TotalPrice = total
	c.TotalItems = count

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(c.UserID)

	return buildView(c, byID), nil
}

// populate builds the read-only view from stored totals. A line whose product
// has since disappeared is omitted from display; mutations, not reads, are the
// place where that aborts.
func (s *service) populate(ctx context.Context, c *Cart) (*View, error) {
	byID, err := s.lookupProducts(ctx, c)
	if err != nil {
		return nil, err
	}
	return buildView(c, byID), nil
}

func (s *service) lookupProducts(ctx context.Context, c *Cart) (map[primitive.ObjectID]*product.Product, error) {
	ids := make([]primitive.ObjectID, 0, len(c.Lines))
	for _, l := range c.Lines {
		ids = append(ids, l.ProductID)
	}
	return s.products.GetByIDs(ctx, ids)
}

func (s *service) invalidate(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		logger.L().Warn("cart cache invalidation failed",
			zap.String("user_id", userID), zap.Error(err))
	}
}

func buildView(c *Cart, byID map[primitive.ObjectID]*product.Product) *View {
	v := &View{
		Items:      make([]LineView, 0, len(c.Lines)),
		TotalPrice: c.TotalPrice,
		TotalItems: c.TotalItems,
	}
	for _, l := range c.Lines {
		p, ok := byID[l.ProductID]
		if !ok {
			continue
		}
		v.Items = append(v.Items, LineView{
			ID:        l.ID.Hex(),
			ProductID: p.ID.Hex(),
			Name:      p.Name,
			Price:     p.Price,
			ImageURL:  p.ImageURL,
			Stock:     p.Stock,
			Quantity:  l.Quantity,
			Subtotal:  float64(l.Quantity) * p.Price,
		})
	}
	return v
}
