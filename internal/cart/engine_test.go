package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-order-service/internal/apperr"
	mock_cart "food-order-service/internal/cart/mocks"
	"food-order-service/internal/client"
	"food-order-service/internal/entity"
	"food-order-service/internal/session"
)

var (
	pho = entity.CartLine{ProductID: 1, Name: "Phở bò", UnitPrice: 45000, Quantity: 2}
	tra = entity.CartLine{ProductID: 2, Name: "Trà đá", UnitPrice: 5000, Quantity: 1}
)

func TestLoadLoggedOutMakesNoCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock_cart.NewMockRemoteStore(ctrl)
	e := NewEngine(remote)

	require.NoError(t, e.Load(context.Background(), 0))
	assert.True(t, e.Snapshot().IsEmpty())
}

func TestLoadReplacesWholesale(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock_cart.NewMockRemoteStore(ctrl)
	ctx := context.Background()

	gomock.InOrder(
		remote.EXPECT().FetchCart(gomock.Any(), 7).Return([]entity.CartLine{pho, tra}, nil),
		remote.EXPECT().FetchCart(gomock.Any(), 7).Return([]entity.CartLine{pho, tra}, nil),
		remote.EXPECT().FetchCart(gomock.Any(), 7).Return([]entity.CartLine{tra}, nil),
	)

	e := NewEngine(remote)
	require.NoError(t, e.Load(ctx, 7))
	first := e.Snapshot()
	require.NoError(t, e.Load(ctx, 7))
	assert.Equal(t, first, e.Snapshot())
	assert.Equal(t, entity.Cart{UserID: 7, Lines: []entity.CartLine{pho, tra}}, first)

	require.NoError(t, e.Load(ctx, 7))
	assert.Equal(t, []entity.CartLine{tra}, e.Snapshot().Lines)
}

func TestLoadFailureDegradesToEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock_cart.NewMockRemoteStore(ctrl)
	ctx := context.Background()

	gomock.InOrder(
		remote.EXPECT().FetchCart(gomock.Any(), 7).Return([]entity.CartLine{pho}, nil),
		remote.EXPECT().FetchCart(gomock.Any(), 7).Return(nil, apperr.NewNetworkError("GET /cart/7", context.DeadlineExceeded)),
	)

	e := NewEngine(remote)
	require.NoError(t, e.Load(ctx, 7))
	require.Len(t, e.Snapshot().Lines, 1)

	err := e.Load(ctx, 7)
	assert.ErrorIs(t, err, apperr.ErrNetworkFailure)
	assert.True(t, e.Snapshot().IsEmpty())
}

func TestLoadDropsAndMergesBadLines(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock_cart.NewMockRemoteStore(ctrl)

	remote.EXPECT().FetchCart(gomock.Any(), 7).Return([]entity.CartLine{
		pho,
		{ProductID: 3, Name: "Chè", UnitPrice: 15000, Quantity: 0},
		tra,
		{ProductID: 1, Name: "Phở bò", UnitPrice: 45000, Quantity: 1},
	}, nil)

	e := NewEngine(remote)
	require.NoError(t, e.Load(context.Background(), 7))

	lines := e.Snapshot().Lines
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].ProductID)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, 2, lines[1].ProductID)
}

func TestAddRequiresUserAndQuantity(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock_cart.NewMockRemoteStore(ctrl)
	e := NewEngine(remote)
	ctx := context.Background()

	assert.ErrorIs(t, e.Add(ctx, 0, 1, 1), apperr.ErrNotAuthenticated)
	assert.ErrorIs(t, e.Add(ctx, 7, 1, 0), apperr.ErrInvalidArgument)
	assert.ErrorIs(t, e.Add(ctx, 7, 1, -2), apperr.ErrInvalidArgument)
}

func TestMutationsWithoutUserAreNoops(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock_cart.NewMockRemoteStore(ctrl)
	e := NewEngine(remote)
	ctx := context.Background()

	assert.NoError(t, e.Remove(ctx, 0, 1))
	assert.NoError(t, e.UpdateQuantity(ctx, 0, 1, 3))
	assert.NoError(t, e.Clear(ctx, 0))
}

func TestAddThenReload(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock_cart.NewMockRemoteStore(ctrl)

	gomock.InOrder(
		remote.EXPECT().AddItem(gomock.Any(), 7, 1, 2).Return(nil),
		remote.EXPECT().FetchCart(gomock.Any(), 7).Return([]entity.CartLine{pho}, nil),
	)

	e := NewEngine(remote)
	var notified []entity.Cart
	e.Subscribe(func(c entity.Cart) { notified = append(notified, c) })

	require.NoError(t, e.Add(context.Background(), 7, 1, 2))
	assert.Equal(t, []entity.CartLine{pho}, e.Snapshot().Lines)
	require.Len(t, notified, 1)
	assert.Equal(t, []entity.CartLine{pho}, notified[0].Lines)
}

func TestFailedMutationLeavesCartUntouched(t *testing.T) {
	testCases := []struct {
		name   string
		expect func(remote *mock_cart.MockRemoteStore, failure error)
		run    func(e *Engine) error
	}{
		{
			name: "add",
			expect: func(remote *mock_cart.MockRemoteStore, failure error) {
				remote.EXPECT().AddItem(gomock.Any(), 7, 2, 1).Return(failure)
			},
			run: func(e *Engine) error { return e.Add(context.Background(), 7, 2, 1) },
		},
		{
			name: "update",
			expect: func(remote *mock_cart.MockRemoteStore, failure error) {
				remote.EXPECT().UpdateItem(gomock.Any(), 7, 1, 5).Return(failure)
			},
			run: func(e *Engine) error { return e.UpdateQuantity(context.Background(), 7, 1, 5) },
		},
		{
			name: "remove",
			expect: func(remote *mock_cart.MockRemoteStore, failure error) {
				remote.EXPECT().RemoveItem(gomock.Any(), 7, 1).Return(failure)
			},
			run: func(e *Engine) error { return e.Remove(context.Background(), 7, 1) },
		},
		{
			name: "clear",
			expect: func(remote *mock_cart.MockRemoteStore, failure error) {
				remote.EXPECT().ClearCart(gomock.Any(), 7).Return(failure)
			},
			run: func(e *Engine) error { return e.Clear(context.Background(), 7) },
		},
	}

	failures := []error{
		apperr.NewNetworkError("op", errors.New("connection reset")),
		apperr.NewRemoteError(500, "lỗi máy chủ"),
	}

	for _, tc := range testCases {
		for _, failure := range failures {
			t.Run(tc.name+"/"+failure.Error(), func(t *testing.T) {
				ctrl := gomock.NewController(t)
				remote := mock_cart.NewMockRemoteStore(ctrl)
				remote.EXPECT().FetchCart(gomock.Any(), 7).Return([]entity.CartLine{pho}, nil).Times(1)
				tc.expect(remote, failure)

				e := NewEngine(remote)
				require.NoError(t, e.Load(context.Background(), 7))
				before := e.Snapshot()

				err := tc.run(e)
				require.Error(t, err)
				assert.ErrorIs(t, err, failure)
				assert.Equal(t, before, e.Snapshot())
			})
		}
	}
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock_cart.NewMockRemoteStore(ctrl)

	gomock.InOrder(
		remote.EXPECT().RemoveItem(gomock.Any(), 7, 1).Return(nil),
		remote.EXPECT().FetchCart(gomock.Any(), 7).Return([]entity.CartLine{tra}, nil),
		remote.EXPECT().RemoveItem(gomock.Any(), 7, 2).Return(nil),
		remote.EXPECT().FetchCart(gomock.Any(), 7).Return(nil, nil),
	)

	e := NewEngine(remote)
	require.NoError(t, e.UpdateQuantity(context.Background(), 7, 1, 0))
	assert.Equal(t, []entity.CartLine{tra}, e.Snapshot().Lines)
	require.NoError(t, e.UpdateQuantity(context.Background(), 7, 2, -1))
	assert.True(t, e.Snapshot().IsEmpty())
}

func TestClear(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock_cart.NewMockRemoteStore(ctrl)

	gomock.InOrder(
		remote.EXPECT().ClearCart(gomock.Any(), 7).Return(nil),
		remote.EXPECT().FetchCart(gomock.Any(), 7).Return([]entity.CartLine{}, nil),
	)

	e := NewEngine(remote)
	require.NoError(t, e.Clear(context.Background(), 7))
	assert.True(t, e.Snapshot().IsEmpty())
	assert.Equal(t, 7, e.Snapshot().UserID)
}

func TestSuccessfulMutationWithFailedReload(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock_cart.NewMockRemoteStore(ctrl)

	gomock.InOrder(
		remote.EXPECT().AddItem(gomock.Any(), 7, 1, 1).Return(nil),
		remote.EXPECT().FetchCart(gomock.Any(), 7).Return(nil, apperr.NewRemoteError(502, "bad gateway")),
	)

	e := NewEngine(remote)
	err := e.Add(context.Background(), 7, 1, 1)
	assert.ErrorIs(t, err, apperr.ErrRemoteRejected)
	assert.True(t, e.Snapshot().IsEmpty())
}

func TestSnapshotIsACopy(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock_cart.NewMockRemoteStore(ctrl)
	remote.EXPECT().FetchCart(gomock.Any(), 7).Return([]entity.CartLine{pho}, nil)

	e := NewEngine(remote)
	require.NoError(t, e.Load(context.Background(), 7))

	snap := e.Snapshot()
	snap.Lines[0].Quantity = 99
	assert.Equal(t, 2, e.Snapshot().Lines[0].Quantity)
}

// memoryStore is a RemoteStore with the backend's upsert semantics. It
// records the order in which calls start and finish.
type memoryStore struct {
	mu    sync.Mutex
	rows  map[int][]entity.CartLine
	log   []string
	gate  chan struct{}
	price map[int]int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		rows:  make(map[int][]entity.CartLine),
		price: map[int]int64{1: 45000, 2: 5000, 3: 15000},
	}
}

func (m *memoryStore) record(s string) {
	m.mu.Lock()
	m.log = append(m.log, s)
	m.mu.Unlock()
}

func (m *memoryStore) FetchCart(_ context.Context, userID int) ([]entity.CartLine, error) {
	m.record("fetch")
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.CartLine, len(m.rows[userID]))
	copy(out, m.rows[userID])
	return out, nil
}

func (m *memoryStore) AddItem(_ context.Context, userID, productID, quantity int) error {
	m.record("add:start")
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	lines := m.rows[userID]
	found := false
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity += quantity
			found = true
		}
	}
	if !found {
		lines = append(lines, entity.CartLine{ProductID: productID, UnitPrice: m.price[productID], Quantity: quantity})
	}
	m.rows[userID] = lines
	m.mu.Unlock()
	m.record("add:end")
	return nil
}

func (m *memoryStore) UpdateItem(_ context.Context, userID, productID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows[userID] {
		if m.rows[userID][i].ProductID == productID {
			m.rows[userID][i].Quantity = quantity
		}
	}
	return nil
}

func (m *memoryStore) RemoveItem(_ context.Context, userID, productID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[userID][:0]
	for _, l := range m.rows[userID] {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	m.rows[userID] = kept
	return nil
}

func (m *memoryStore) ClearCart(_ context.Context, userID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, userID)
	return nil
}

func TestRepeatedAddKeepsOneLinePerProduct(t *testing.T) {
	store := newMemoryStore()
	e := NewEngine(store)
	ctx := context.Background()

	require.NoError(t, e.Add(ctx, 7, 1, 1))
	require.NoError(t, e.Add(ctx, 7, 2, 1))
	require.NoError(t, e.Add(ctx, 7, 1, 2))

	lines := e.Snapshot().Lines
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].ProductID)
	assert.Equal(t, 3, lines[0].Quantity)

	require.NoError(t, e.UpdateQuantity(ctx, 7, 1, 1))
	assert.Equal(t, 1, e.Snapshot().Lines[0].Quantity)

	require.NoError(t, e.Clear(ctx, 7))
	assert.True(t, e.Snapshot().IsEmpty())
}

func TestMutationsAreSerialized(t *testing.T) {
	store := newMemoryStore()
	store.gate = make(chan struct{})
	e := NewEngine(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, e.Add(ctx, 7, 1, 1))
	}()

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.log) == 1
	}, time.Second, 5*time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, e.Add(ctx, 7, 2, 1))
	}()

	// The second add must not reach the store while the first is in flight.
	time.Sleep(50 * time.Millisecond)
	store.mu.Lock()
	assert.Equal(t, []string{"add:start"}, store.log)
	store.mu.Unlock()

	close(store.gate)
	wg.Wait()

	assert.Equal(t, []string{"add:start", "add:end", "fetch", "add:start", "add:end", "fetch"}, store.log)
	assert.Len(t, e.Snapshot().Lines, 2)
}

type stubAuth struct{}

func (stubAuth) Login(_ context.Context, phone, _ string) (*client.AuthResult, error) {
	if phone == "0900" {
		return &client.AuthResult{Token: "t7", User: entity.User{ID: 7}}, nil
	}
	return &client.AuthResult{Token: "t8", User: entity.User{ID: 8}}, nil
}

func (stubAuth) Register(context.Context, client.RegisterRequest) (*entity.User, error) {
	return nil, errors.New("not supported")
}

func TestBindFollowsSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock_cart.NewMockRemoteStore(ctrl)
	ctx := context.Background()

	gomock.InOrder(
		remote.EXPECT().FetchCart(gomock.Any(), 7).Return([]entity.CartLine{pho}, nil),
		remote.EXPECT().FetchCart(gomock.Any(), 8).Return([]entity.CartLine{tra}, nil),
	)

	s := session.New(stubAuth{}, session.NewMemoryStore())
	e := NewEngine(remote)
	detach := e.Bind(ctx, s)
	assert.True(t, e.Snapshot().IsEmpty())

	_, err := s.Login(ctx, "0900", "pw")
	require.NoError(t, err)
	assert.Equal(t, entity.Cart{UserID: 7, Lines: []entity.CartLine{pho}}, e.Snapshot())

	_, err = s.Login(ctx, "0911", "pw")
	require.NoError(t, err)
	assert.Equal(t, entity.Cart{UserID: 8, Lines: []entity.CartLine{tra}}, e.Snapshot())

	require.NoError(t, s.Logout(ctx))
	assert.True(t, e.Snapshot().IsEmpty())
	assert.Equal(t, 0, e.Snapshot().UserID)

	detach()
	_, err = s.Login(ctx, "0900", "pw")
	require.NoError(t, err)
	assert.True(t, e.Snapshot().IsEmpty())
}
