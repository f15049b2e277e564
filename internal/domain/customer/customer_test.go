package customer_test

import (
	"customer-service/internal/domain/customer"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestNewCustomer(t *testing.T) {
	cust := customer.NewCustomer("Maria Lopez", "F", "2222222222", "Av. Amazonas", "0999999999", "pass123")

	assert.NotNil(t, cust, "NewCustomer should return a non-nil customer")
	assert.Equal(t, "Maria Lopez", cust.Name)
	assert.Equal(t, "2222222222", cust.Identification)
	assert.Equal(t, "pass123", cust.Credential)
	assert.True(t, cust.Active, "New customer should be active")
	assert.Equal(t, int64(0), cust.ID, "ID should be assigned by storage")
}

func TestMerge(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	accountCreated := created.Add(time.Second)

	identity := customer.Identity{
		ID: 7, Name: "Maria Lopez", Gender: "F", Identification: "2222222222",
		Address: "Quito", Phone: "0999999999", CreatedAt: created, UpdatedAt: created,
	}
	account := customer.Account{ID: 7, Credential: "hash", Active: true, CreatedAt: accountCreated, UpdatedAt: accountCreated}

	t.Run("Same id", func(t *testing.T) {
		cust, err := customer.Merge(identity, account)

		require.NoError(t, err)
		assert.Equal(t, int64(7), cust.ID)
		assert.Equal(t, "Maria Lopez", cust.Name)
		assert.Equal(t, "Quito", cust.Address)
		assert.Equal(t, "hash", cust.Credential)
		assert.True(t, cust.Active)
		assert.Equal(t, created, cust.CreatedAt)
		assert.Equal(t, accountCreated, cust.AccountCreatedAt)

		assert.Equal(t, identity, cust.Identity(), "Identity should split back unchanged")
		assert.Equal(t, account, cust.Account(), "Account should split back unchanged")
	})

	t.Run("Mismatched ids", func(t *testing.T) {
		other := account
		other.ID = 8

		cust, err := customer.Merge(identity, other)

		assert.Nil(t, cust)
		assert.ErrorIs(t, err, customer.ErrInconsistentAggregate)
	})
}

func TestCustomer_ActivateDeactivate(t *testing.T) {
	cust := customer.NewCustomer("Maria Lopez", "", "2222222222", "", "", "pass123")
	assert.True(t, cust.IsActive())

	cust.Deactivate()
	assert.False(t, cust.IsActive(), "Customer should be inactive after Deactivate")
	assert.False(t, cust.AccountUpdatedAt.IsZero(), "Deactivate should stamp the account")

	stamped := cust.AccountUpdatedAt
	cust.Deactivate()
	assert.Equal(t, stamped, cust.AccountUpdatedAt, "Deactivating twice should not touch the timestamp")

	cust.Activate()
	assert.True(t, cust.IsActive(), "Customer should be active after Activate")
}

func TestPatch_ApplyTo(t *testing.T) {
	base := func() *customer.Customer {
		return &customer.Customer{
			ID: 1, Name: "Maria Lopez", Identification: "2222222222",
			Address: "Guayaquil", Phone: "0999999999", Credential: "hash", Active: true,
		}
	}

	t.Run("Only phone", func(t *testing.T) {
		cust := base()

		changed := customer.Patch{Phone: strPtr("0988888888")}.ApplyTo(cust)

		assert.True(t, changed)
		assert.Equal(t, "0988888888", cust.Phone)
		assert.Equal(t, "Maria Lopez", cust.Name)
		assert.Equal(t, "Guayaquil", cust.Address)
		assert.Equal(t, "2222222222", cust.Identification)
		assert.True(t, cust.Active)
	})

	t.Run("Status and credential", func(t *testing.T) {
		cust := base()

		changed := customer.Patch{Active: boolPtr(false), Credential: strPtr("new-hash")}.ApplyTo(cust)

		assert.True(t, changed)
		assert.False(t, cust.Active)
		assert.Equal(t, "new-hash", cust.Credential)
	})

	t.Run("Same values", func(t *testing.T) {
		cust := base()

		changed := customer.Patch{Name: strPtr("Maria Lopez"), Active: boolPtr(true)}.ApplyTo(cust)

		assert.False(t, changed)
		assert.Equal(t, base(), cust)
	})

	t.Run("Empty patch", func(t *testing.T) {
		patch := customer.Patch{}
		cust := base()

		assert.True(t, patch.IsEmpty())
		assert.False(t, patch.ApplyTo(cust))
		assert.False(t, customer.Patch{Gender: strPtr("")}.IsEmpty())
	})
}
