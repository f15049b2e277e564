package customer

import (
	"context"
	"customer-service/internal/event"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) Create(ctx context.Context, draft *Customer) (*Customer, error) {
	ret := _m.Called(ctx, draft)

	var r0 *Customer
	if rf, ok := ret.Get(0).(func(context.Context, *Customer) *Customer); ok {
		r0 = rf(ctx, draft)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*Customer)
		}
	}

	return r0, ret.Error(1)
}

func (_m *MockRepository) FindByID(ctx context.Context, id int64) (*Customer, error) {
	ret := _m.Called(ctx, id)

	var r0 *Customer
	if rf, ok := ret.Get(0).(func(context.Context, int64) *Customer); ok {
		r0 = rf(ctx, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*Customer)
		}
	}

	return r0, ret.Error(1)
}

func (_m *MockRepository) FindAll(ctx context.Context) ([]*Customer, error) {
	ret := _m.Called(ctx)

	var r0 []*Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*Customer)
	}

	return r0, ret.Error(1)
}

func (_m *MockRepository) FindByIdentification(ctx context.Context, identification string) (*Customer, error) {
	ret := _m.Called(ctx, identification)

	var r0 *Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Customer)
	}

	return r0, ret.Error(1)
}

func (_m *MockRepository) Update(ctx context.Context, customer *Customer) (*Customer, error) {
	ret := _m.Called(ctx, customer)

	var r0 *Customer
	if rf, ok := ret.Get(0).(func(context.Context, *Customer) *Customer); ok {
		r0 = rf(ctx, customer)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*Customer)
		}
	}

	return r0, ret.Error(1)
}

func (_m *MockRepository) DeleteByID(ctx context.Context, id int64) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

func (_m *MockRepository) ExistsByIdentification(ctx context.Context, identification string) (bool, error) {
	ret := _m.Called(ctx, identification)
	return ret.Bool(0), ret.Error(1)
}

type MockCredentialHasher struct {
	mock.Mock
}

func (_m *MockCredentialHasher) Hash(plain string) (string, error) {
	ret := _m.Called(plain)
	return ret.String(0), ret.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (_m *MockCache) Get(ctx context.Context, id int64) (*Customer, bool) {
	ret := _m.Called(ctx, id)

	var r0 *Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Customer)
	}

	return r0, ret.Bool(1)
}

func (_m *MockCache) Set(ctx context.Context, customer *Customer) {
	_m.Called(ctx, customer)
}

func (_m *MockCache) Fill(ctx context.Context, customer *Customer) {
	_m.Called(ctx, customer)
}

func (_m *MockCache) Delete(ctx context.Context, id int64) {
	_m.Called(ctx, id)
}

func (_m *MockCache) MarkDeleted(ctx context.Context, id int64) {
	_m.Called(ctx, id)
}

type MockEventPublisher struct {
	mock.Mock
}

func (_m *MockEventPublisher) PublishCustomerCreated(ctx context.Context, e event.CustomerCreatedEvent) error {
	return _m.Called(ctx, e).Error(0)
}

func (_m *MockEventPublisher) PublishCustomerUpdated(ctx context.Context, e event.CustomerUpdatedEvent) error {
	return _m.Called(ctx, e).Error(0)
}

func (_m *MockEventPublisher) PublishCustomerDeleted(ctx context.Context, e event.CustomerDeletedEvent) error {
	return _m.Called(ctx, e).Error(0)
}
