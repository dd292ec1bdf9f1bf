package cart

import (
	"context"
	"errors"
	"testing"

	"electrohive-be/internal/product"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeRepo is an in-memory cart store so tests can run full mutation
// sequences against evolving state.
type fakeRepo struct {
	carts    map[string]*Cart
	getErr   error
	saveErr  error
	saves    int
	lastSave *Cart
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{carts: map[string]*Cart{}}
}

func (f *fakeRepo) Get(ctx context.Context, userID string) (*Cart, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	c, ok := f.carts[userID]
	if !ok {
		return nil, ErrCartNotFound
	}
	cp := *c
	cp.Lines = append([]CartLine(nil), c.Lines...)
	return &cp, nil
}

func (f *fakeRepo) Save(ctx context.Context, c *Cart) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	cp := *c
	cp.Lines = append([]CartLine(nil), c.Lines...)
	f.carts[c.UserID] = &cp
	f.lastSave = &cp
	return nil
}

func (f *fakeRepo) CreateIndexes(ctx context.Context) error { return nil }

// fakeProducts serves price lookups from a fixed map.
type fakeProducts struct {
	byID    map[primitive.ObjectID]*product.Product
	lookups int
	err     error
}

func (f *fakeProducts) GetByID(ctx context.Context, id primitive.ObjectID) (*product.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lookups++
	return f.byID[id], nil
}

func (f *fakeProducts) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*product.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lookups++
	out := map[primitive.ObjectID]*product.Product{}
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeProducts) List(ctx context.Context) ([]*product.Product, error) { return nil, nil }
func (f *fakeProducts) Insert(ctx context.Context, ps []*product.Product) error {
	return nil
}

func newFixture() (*fakeRepo, *fakeProducts, Service, primitive.ObjectID, primitive.ObjectID) {
	repo := newFakeRepo()
	pX := primitive.NewObjectID()
	pY := primitive.NewObjectID()
	products := &fakeProducts{byID: map[primitive.ObjectID]*product.Product{
		pX: {ID: pX, Name: "Wireless Earbuds", Price: 100, Stock: 50},
		pY: {ID: pY, Name: "GaN Charger", Price: 40, Stock: 10},
	}}
	svc := NewService(repo, products, NoopCache{})
	return repo, products, svc, pX, pY
}

func TestService_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("New line on empty cart derives totals", func(t *testing.T) {
		_, _, svc, pX, _ := newFixture()

		view, err := svc.AddItem(ctx, "u1", pX.Hex(), 2)

		require.NoError(t, err)
		require.Len(t, view.Items, 1)
		assert.Equal(t, 2, view.Items[0].Quantity)
		assert.Equal(t, float64(200), view.TotalPrice)
		assert.Equal(t, 2, view.TotalItems)
	})

	t.Run("Same product is additive, never a second line", func(t *testing.T) {
		_, _, svc, pX, _ := newFixture()

		_, err := svc.AddItem(ctx, "u1", pX.Hex(), 2)
		require.NoError(t, err)
		view, err := svc.AddItem(ctx, "u1", pX.Hex(), 3)
		require.NoError(t, err)

		require.Len(t, view.Items, 1)
		assert.Equal(t, 5, view.Items[0].Quantity)
		assert.Equal(t, float64(500), view.TotalPrice)
		assert.Equal(t, 5, view.TotalItems)
	})

	t.Run("Insertion order preserved", func(t *testing.T) {
		_, _, svc, pX, pY := newFixture()

		_, err := svc.AddItem(ctx, "u1", pX.Hex(), 1)
		require.NoError(t, err)
		view, err := svc.AddItem(ctx, "u1", pY.Hex(), 2)
		require.NoError(t, err)

		require.Len(t, view.Items, 2)
		assert.Equal(t, pX.Hex(), view.Items[0].ProductID)
		assert.Equal(t, pY.Hex(), view.Items[1].ProductID)
		assert.Equal(t, float64(100+80), view.TotalPrice)
		assert.Equal(t, 3, view.TotalItems)
	})

	t.Run("Unknown product", func(t *testing.T) {
		repo, _, svc, _, _ := newFixture()

		_, err := svc.AddItem(ctx, "u1", primitive.NewObjectID().Hex(), 1)

		assert.ErrorIs(t, err, ErrProductNotFound)
		assert.Zero(t, repo.saves)
	})

	t.Run("Malformed product id", func(t *testing.T) {
		_, _, svc, _, _ := newFixture()

		_, err := svc.AddItem(ctx, "u1", "not-an-id", 1)

		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Non-positive quantity", func(t *testing.T) {
		repo, _, svc, pX, _ := newFixture()

		_, err := svc.AddItem(ctx, "u1", pX.Hex(), 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		_, err = svc.AddItem(ctx, "u1", pX.Hex(), -3)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.Zero(t, repo.saves)
	})

	t.Run("Lookup failure aborts with no partial write", func(t *testing.T) {
		repo, products, svc, pX, _ := newFixture()
		products.err = errors.New("store down")

		_, err := svc.AddItem(ctx, "u1", pX.Hex(), 1)

		assert.Error(t, err)
		assert.Zero(t, repo.saves)
	})
}

func TestService_UpdateItemQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("Quantity below one rejected, cart untouched", func(t *testing.T) {
		repo, _, svc, pX, _ := newFixture()
		_, err := svc.AddItem(ctx, "u1", pX.Hex(), 2)
		require.NoError(t, err)
		savesBefore := repo.saves

		_, err = svc.UpdateItemQuantity(ctx, "u1", repo.lastSave.Lines[0].ID.Hex(), 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		_, err = svc.UpdateItemQuantity(ctx, "u1", repo.lastSave.Lines[0].ID.Hex(), -1)
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		assert.Equal(t, savesBefore, repo.saves)
		assert.Equal(t, 2, repo.carts["u1"].Lines[0].Quantity)
	})

	t.Run("Unknown line", func(t *testing.T) {
		_, _, svc, pX, _ := newFixture()
		_, err := svc.AddItem(ctx, "u1", pX.Hex(), 2)
		require.NoError(t, err)

		_, err = svc.UpdateItemQuantity(ctx, "u1", primitive.NewObjectID().Hex(), 3)
		assert.ErrorIs(t, err, ErrLineNotFound)
	})

	t.Run("No cart at all", func(t *testing.T) {
		_, _, svc, _, _ := newFixture()

		_, err := svc.UpdateItemQuantity(ctx, "nobody", primitive.NewObjectID().Hex(), 3)
		assert.ErrorIs(t, err, ErrLineNotFound)
	})

	t.Run("Totals follow the current price, not the add-time price", func(t *testing.T) {
		repo, products, svc, pX, _ := newFixture()
		_, err := svc.AddItem(ctx, "u1", pX.Hex(), 2)
		require.NoError(t, err)

		// Price changes between add and update.
		products.byID[pX].Price = 150

		view, err := svc.UpdateItemQuantity(ctx, "u1", repo.lastSave.Lines[0].ID.Hex(), 3)
		require.NoError(t, err)
		assert.Equal(t, float64(450), view.TotalPrice)
		assert.Equal(t, 3, view.TotalItems)
	})
}

func TestService_RemoveItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Removing the last line zeroes totals", func(t *testing.T) {
		repo, _, svc, pX, _ := newFixture()
		_, err := svc.AddItem(ctx, "u1", pX.Hex(), 4)
		require.NoError(t, err)

		view, err := svc.RemoveItem(ctx, "u1", repo.lastSave.Lines[0].ID.Hex())
		require.NoError(t, err)

		assert.Empty(t, view.Items)
		assert.Equal(t, float64(0), view.TotalPrice)
		assert.Equal(t, 0, view.TotalItems)
	})

	t.Run("Remaining lines keep derived totals", func(t *testing.T) {
		repo, _, svc, pX, pY := newFixture()
		_, err := svc.AddItem(ctx, "u1", pX.Hex(), 1)
		require.NoError(t, err)
		_, err = svc.AddItem(ctx, "u1", pY.Hex(), 2)
		require.NoError(t, err)

		var lineX primitive.ObjectID
		for _, l := range repo.lastSave.Lines {
			if l.ProductID == pX {
				lineX = l.ID
			}
		}

		view, err := svc.RemoveItem(ctx, "u1", lineX.Hex())
		require.NoError(t, err)
		require.Len(t, view.Items, 1)
		assert.Equal(t, float64(80), view.TotalPrice)
		assert.Equal(t, 2, view.TotalItems)
	})

	t.Run("Unknown line", func(t *testing.T) {
		_, _, svc, pX, _ := newFixture()
		_, err := svc.AddItem(ctx, "u1", pX.Hex(), 1)
		require.NoError(t, err)

		_, err = svc.RemoveItem(ctx, "u1", primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrLineNotFound)
	})
}

func TestService_Clear(t *testing.T) {
	ctx := context.Background()
	repo, _, svc, pX, pY := newFixture()

	_, err := svc.AddItem(ctx, "u1", pX.Hex(), 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "u1", pY.Hex(), 5)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, "u1"))

	saved := repo.carts["u1"]
	assert.Empty(t, saved.Lines)
	assert.Equal(t, float64(0), saved.TotalPrice)
	assert.Equal(t, 0, saved.TotalItems)
}

func TestService_TotalsInvariant(t *testing.T) {
	// After every mutation: total price == sum(qty * current price) and
	// total items == sum(qty).
	ctx := context.Background()
	repo, products, svc, pX, pY := newFixture()

	check := func() {
		t.Helper()
		saved := repo.carts["u1"]
		var wantPrice float64
		var wantItems int
		for _, l := range saved.Lines {
			wantPrice += float64(l.Quantity) * products.byID[l.ProductID].Price
			wantItems += l.Quantity
		}
		assert.Equal(t, wantPrice, saved.TotalPrice)
		assert.Equal(t, wantItems, saved.TotalItems)
	}

	_, err := svc.AddItem(ctx, "u1", pX.Hex(), 2)
	require.NoError(t, err)
	check()

	_, err = svc.AddItem(ctx, "u1", pY.Hex(), 1)
	require.NoError(t, err)
	check()

	_, err = svc.AddItem(ctx, "u1", pX.Hex(), 3)
	require.NoError(t, err)
	check()

	_, err = svc.UpdateItemQuantity(ctx, "u1", repo.carts["u1"].Lines[1].ID.Hex(), 7)
	require.NoError(t, err)
	check()

	_, err = svc.RemoveItem(ctx, "u1", repo.carts["u1"].Lines[0].ID.Hex())
	require.NoError(t, err)
	check()
}

func TestService_GetCart(t *testing.T) {
	ctx := context.Background()

	t.Run("No cart yet yields an empty view", func(t *testing.T) {
		_, _, svc, _, _ := newFixture()

		view, err := svc.GetCart(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, view.Items)
		assert.Equal(t, float64(0), view.TotalPrice)
	})

	t.Run("Populated view carries product detail", func(t *testing.T) {
		_, _, svc, pX, _ := newFixture()
		_, err := svc.AddItem(ctx, "u1", pX.Hex(), 2)
		require.NoError(t, err)

		view, err := svc.GetCart(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, view.Items, 1)
		assert.Equal(t, "Wireless Earbuds", view.Items[0].Name)
		assert.Equal(t, float64(100), view.Items[0].Price)
		assert.Equal(t, 50, view.Items[0].Stock)
		assert.Equal(t, float64(200), view.Items[0].Subtotal)
	})

	t.Run("Vanished product omitted from display", func(t *testing.T) {
		_, products, svc, pX, pY := newFixture()
		_, err := svc.AddItem(ctx, "u1", pX.Hex(), 1)
		require.NoError(t, err)
		_, err = svc.AddItem(ctx, "u1", pY.Hex(), 1)
		require.NoError(t, err)

		delete(products.byID, pY)

		view, err := svc.GetCart(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, view.Items, 1)
		assert.Equal(t, pX.Hex(), view.Items[0].ProductID)
	})
}

func TestService_GetCart_CacheInteraction(t *testing.T) {
	ctx := context.Background()

	repo := newFakeRepo()
	pX := primitive.NewObjectID()
	products := &fakeProducts{byID: map[primitive.ObjectID]*product.Product{
		pX: {ID: pX, Name: "Earbuds", Price: 100, Stock: 5},
	}}
	cache := &recordingCache{views: map[string]*View{}}
	svc := NewService(repo, products, cache)

	_, err := svc.AddItem(ctx, "u1", pX.Hex(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.deletes, "mutation must invalidate the cached view")

	// Miss populates the cache.
	_, err = svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// Hit skips the repository.
	lookupsBefore := products.lookups
	view, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, lookupsBefore, products.lookups)
}

type recordingCache struct {
	views   map[string]*View
	sets    int
	deletes int
}

func (c *recordingCache) Get(ctx context.Context, userID string) (*View, error) {
	if v, ok := c.views[userID]; ok {
		return v, nil
	}
	return nil, ErrCacheMiss
}

func (c *recordingCache) Set(ctx context.Context, userID string, v *View) error {
	c.sets++
	c.views[userID] = v
	return nil
}

func (c *recordingCache) Delete(ctx context.Context, userID string) error {
	c.deletes++
	delete(c.views, userID)
	return nil
}
