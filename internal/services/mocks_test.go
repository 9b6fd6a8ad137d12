package services_test

import (
	"context"
	"sync"

	"storefront/internal/models"
	"storefront/internal/payments"
	"storefront/internal/repositories"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateName(ctx context.Context, id, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateAddress(ctx context.Context, id string, address models.ShippingAddress) error {
	args := m.Called(ctx, id, address)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePaymentMethod(ctx context.Context, id string, method models.PaymentMethod) error {
	args := m.Called(ctx, id, method)
	return args.Error(0)
}

// MockCartRepository is a mock implementation of repositories.CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindByOwner(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartRepository) AddItem(ctx context.Context, owner models.CartOwner, item models.CartItem) (*models.Cart, error) {
	args := m.Called(ctx, owner, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartRepository) RemoveItem(ctx context.Context, owner models.CartOwner, productID string) (*models.Cart, error) {
	args := m.Called(ctx, owner, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartRepository) ReassignToUser(ctx context.Context, cartID, userID string) error {
	args := m.Called(ctx, cartID, userID)
	return args.Error(0)
}

// MockWallet is a mock implementation of payments.WalletProvider
type MockWallet struct {
	mock.Mock
}

func (m *MockWallet) CreateProviderOrder(ctx context.Context, req payments.ProviderOrderRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockWallet) VerifyApproval(ctx context.Context, providerOrderID string) (*payments.Approval, error) {
	args := m.Called(ctx, providerOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Approval), args.Error(1)
}

func (m *MockWallet) Capture(ctx context.Context, providerOrderID string) (*payments.Capture, error) {
	args := m.Called(ctx, providerOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Capture), args.Error(1)
}

// MockCardProcessor is a mock implementation of payments.CardProcessor
type MockCardProcessor struct {
	mock.Mock
}

func (m *MockCardProcessor) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency, orderID string) (string, error) {
	args := m.Called(ctx, amountMinor, currency, orderID)
	return args.String(0), args.Error(1)
}

// MockReportRepository is a mock implementation of repositories.ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Overview(ctx context.Context, latest int) (*repositories.Overview, error) {
	args := m.Called(ctx, latest)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.Overview), args.Error(1)
}

type publishedEvent struct {
	Type    string
	Payload interface{}
}

// recordingPublisher keeps every published event in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) PublishOrderEvent(eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, Payload: payload})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}
