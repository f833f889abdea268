// Package settlementtest provides an in-memory settlement store for tests.
// It honours conditional updates and serializes transactions behind a single
// lock, rolling every table back when the transaction function fails.
package settlementtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-settlement/internal/settlement/data"
)

type txKey struct{}

type tables struct {
	users     map[int64]data.User
	mutations []data.BalanceMutation
	deposits  map[string]data.Deposit
	orders    map[string]data.Order
	stock     map[int64]int64
	offerUse  map[int64]int64
}

func (t tables) clone() tables {
	res := tables{
		users:     make(map[int64]data.User, len(t.users)),
		mutations: append([]data.BalanceMutation(nil), t.mutations...),
		deposits:  make(map[string]data.Deposit, len(t.deposits)),
		orders:    make(map[string]data.Order, len(t.orders)),
		stock:     make(map[int64]int64, len(t.stock)),
		offerUse:  make(map[int64]int64, len(t.offerUse)),
	}
	for k, v := range t.users {
		res.users[k] = v
	}
	for k, v := range t.deposits {
		res.deposits[k] = v
	}
	for k, v := range t.orders {
		v.Offers = append([]data.OfferOnOrder(nil), v.Offers...)
		res.orders[k] = v
	}
	for k, v := range t.stock {
		res.stock[k] = v
	}
	for k, v := range t.offerUse {
		res.offerUse[k] = v
	}
	return res
}

type Store struct {
	mux      sync.Mutex
	t        tables
	failures map[string]error
	nextID   int64
	Now      func() time.Time
	Commits  int
}

func NewStore() *Store {
	return &Store{
		t: tables{
			users:    make(map[int64]data.User),
			deposits: make(map[string]data.Deposit),
			orders:   make(map[string]data.Order),
			stock:    make(map[int64]int64),
			offerUse: make(map[int64]int64),
		},
		failures: make(map[string]error),
		Now:      time.Now,
	}
}

// FailOn makes the next call of the named repository method return err.
func (s *Store) FailOn(method string, err error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.failures[method] = err
}

func (s *Store) fail(method string) error {
	err, ok := s.failures[method]
	if !ok {
		return nil
	}
	delete(s.failures, method)
	return err
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) DoWithTransaction(ctx context.Context, f func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return f(ctx)
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	saved := s.t.clone()
	if err := f(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.t = saved
		return err
	}
	s.Commits++
	return nil
}

// lock takes the store lock for calls made outside a transaction.
func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	s.mux.Lock()
	return s.mux.Unlock
}

// Seeding and inspection helpers.

func (s *Store) AddUser(id int64, balance int64) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.t.users[id] = data.User{ID: id, Username: "user", Balance: balance}
}

func (s *Store) AddDeposit(d data.Deposit) data.Deposit {
	s.mux.Lock()
	defer s.mux.Unlock()
	if d.ID == 0 {
		d.ID = s.id()
	}
	if d.Status == "" {
		d.Status = data.DepositPending
	}
	s.t.deposits[d.DepositID] = d
	return d
}

func (s *Store) AddOrder(o data.Order, stock int64, offerUsage int64) data.Order {
	s.mux.Lock()
	defer s.mux.Unlock()
	if o.ID == 0 {
		o.ID = s.id()
	}
	s.t.orders[o.OrderID] = o
	s.t.stock[o.Product.ProductID] = stock
	for _, offer := range o.Offers {
		s.t.offerUse[offer.OfferID] = offerUsage
	}
	return o
}

func (s *Store) User(id int64) data.User {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.t.users[id]
}

func (s *Store) Deposit(depositID string) data.Deposit {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.t.deposits[depositID]
}

func (s *Store) Order(orderID string) data.Order {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.t.orders[orderID]
}

func (s *Store) Stock(productID int64) int64 {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.t.stock[productID]
}

func (s *Store) OfferUsage(offerID int64) int64 {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.t.offerUse[offerID]
}

func (s *Store) AllMutations(userID int64) []data.BalanceMutation {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.mutationsOf(userID)
}

func (s *Store) mutationsOf(userID int64) []data.BalanceMutation {
	res := make([]data.BalanceMutation, 0)
	for _, m := range s.t.mutations {
		if m.UserID == userID {
			res = append(res, m)
		}
	}
	return res
}

// ledger.Repository

func (s *Store) LockUserBalance(ctx context.Context, userID int64) (int64, error) {
	defer s.lock(ctx)()
	if err := s.fail("LockUserBalance"); err != nil {
		return 0, err
	}
	u, ok := s.t.users[userID]
	if !ok {
		return 0, data.ErrUserNotFound
	}
	return u.Balance, nil
}

func (s *Store) GetUserBalance(ctx context.Context, userID int64) (int64, error) {
	return s.LockUserBalance(ctx, userID)
}

func (s *Store) SetUserBalance(ctx context.Context, userID int64, balance int64) error {
	defer s.lock(ctx)()
	if err := s.fail("SetUserBalance"); err != nil {
		return err
	}
	u, ok := s.t.users[userID]
	if !ok {
		return data.ErrUserNotFound
	}
	u.Balance = balance
	s.t.users[userID] = u
	return nil
}

func (s *Store) InsertMutation(ctx context.Context, mutation *data.BalanceMutation) error {
	defer s.lock(ctx)()
	if err := s.fail("InsertMutation"); err != nil {
		return err
	}
	if _, ok := s.t.users[mutation.UserID]; !ok {
		return data.ErrForeignKeyViolation
	}
	mutation.ID = s.id()
	mutation.CreatedAt = s.Now()
	mutation.UpdatedAt = mutation.CreatedAt
	s.t.mutations = append(s.t.mutations, *mutation)
	return nil
}

func (s *Store) GetMutations(
	ctx context.Context,
	userID int64,
	filter data.MutationFilter,
) ([]data.BalanceMutation, error) {
	defer s.lock(ctx)()
	all := s.mutationsOf(userID)
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	res := make([]data.BalanceMutation, 0)
	for _, m := range all {
		if filter.BeforeID != 0 && m.ID >= filter.BeforeID {
			continue
		}
		if filter.Limit > 0 && len(res) == filter.Limit {
			break
		}
		res = append(res, m)
	}
	return res, nil
}

func (s *Store) GetMutationsAscending(ctx context.Context, userID int64) ([]data.BalanceMutation, error) {
	defer s.lock(ctx)()
	return s.mutationsOf(userID), nil
}

// deposits

func (s *Store) InsertDeposit(ctx context.Context, deposit *data.Deposit) error {
	defer s.lock(ctx)()
	if err := s.fail("InsertDeposit"); err != nil {
		return err
	}
	if _, ok := s.t.deposits[deposit.DepositID]; ok {
		return data.ErrUniqueConstraintViolation
	}
	deposit.ID = s.id()
	deposit.Status = data.DepositPending
	deposit.CreatedAt = s.Now()
	deposit.UpdatedAt = deposit.CreatedAt
	s.t.deposits[deposit.DepositID] = *deposit
	return nil
}

func (s *Store) GetDeposit(ctx context.Context, depositID string) (data.Deposit, error) {
	defer s.lock(ctx)()
	d, ok := s.t.deposits[depositID]
	if !ok {
		return data.Deposit{}, data.ErrDepositNotFound
	}
	return d, nil
}

func (s *Store) TransitionDeposit(
	ctx context.Context,
	id int64,
	from, to data.DepositStatus,
	providerRef *string,
	paidAt *time.Time,
) (bool, error) {
	defer s.lock(ctx)()
	if err := s.fail("TransitionDeposit"); err != nil {
		return false, err
	}
	for key, d := range s.t.deposits {
		if d.ID != id || d.Status != from {
			continue
		}
		d.Status = to
		if providerRef != nil {
			d.RefID = *providerRef
		}
		if paidAt != nil {
			d.PaidAt = paidAt
		}
		d.UpdatedAt = s.Now()
		s.t.deposits[key] = d
		return true, nil
	}
	return false, nil
}

// orders

func (s *Store) GetOrder(ctx context.Context, orderID string) (data.Order, error) {
	defer s.lock(ctx)()
	o, ok := s.t.orders[orderID]
	if !ok {
		return data.Order{}, data.ErrOrderNotFound
	}
	o.Offers = append([]data.OfferOnOrder(nil), o.Offers...)
	return o, nil
}

func (s *Store) GetOrdersAwaitingFulfillment(
	ctx context.Context,
	limit int,
	updatedBefore time.Time,
) ([]data.Order, error) {
	defer s.lock(ctx)()
	res := make([]data.Order, 0)
	for _, o := range s.t.orders {
		if o.PaymentStatus != data.PaymentSuccess || o.OrderStatus != data.OrderPending {
			continue
		}
		if !o.UpdatedAt.Before(updatedBefore) {
			continue
		}
		res = append(res, o)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].UpdatedAt.Before(res[j].UpdatedAt) })
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (s *Store) TransitionOrder(
	ctx context.Context,
	id int64,
	from, to data.OrderState,
	patch data.OrderPatch,
) (bool, error) {
	defer s.lock(ctx)()
	if err := s.fail("TransitionOrder"); err != nil {
		return false, err
	}
	for key, o := range s.t.orders {
		if o.ID != id || o.State() != from {
			continue
		}
		o.PaymentStatus = to.Payment
		o.OrderStatus = to.Order
		if patch.SerialNumber != nil {
			o.SerialNumber = *patch.SerialNumber
		}
		if patch.ProviderRef != nil {
			o.ProviderRef = *patch.ProviderRef
		}
		if patch.CostPrice != nil {
			o.CostPrice = *patch.CostPrice
		}
		if patch.Profit != nil {
			o.Profit = *patch.Profit
		}
		o.UpdatedAt = s.Now()
		s.t.orders[key] = o
		return true, nil
	}
	return false, nil
}

// compensation

func (s *Store) RestoreStock(ctx context.Context, productID int64) error {
	defer s.lock(ctx)()
	if err := s.fail("RestoreStock"); err != nil {
		return err
	}
	s.t.stock[productID]++
	return nil
}

func (s *Store) ReleaseOffer(ctx context.Context, offerID int64) (bool, error) {
	defer s.lock(ctx)()
	if err := s.fail("ReleaseOffer"); err != nil {
		return false, err
	}
	if s.t.offerUse[offerID] <= 0 {
		return false, nil
	}
	s.t.offerUse[offerID]--
	return true, nil
}

func (s *Store) TransitionRefund(ctx context.Context, id int64, from, to data.RefundStatus) (bool, error) {
	defer s.lock(ctx)()
	if err := s.fail("TransitionRefund"); err != nil {
		return false, err
	}
	for key, o := range s.t.orders {
		if o.ID != id || o.RefundStatus != from {
			continue
		}
		o.RefundStatus = to
		s.t.orders[key] = o
		return true, nil
	}
	return false, nil
}

func (s *Store) FlagManualRefund(ctx context.Context, id int64) error {
	defer s.lock(ctx)()
	for key, o := range s.t.orders {
		if o.ID == id && o.UserID == nil {
			o.ManualRefund = true
			s.t.orders[key] = o
		}
	}
	return nil
}
