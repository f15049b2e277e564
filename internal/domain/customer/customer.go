package customer

import "time"

// Identity is the person-level record: who the customer is and how to reach them.
type Identity struct {
	ID             int64
	Name           string
	Gender         string
	Identification string
	Address        string
	Phone          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Account is the banking record owned by an Identity. It shares the identity's id.
type Account struct {
	ID         int64
	Credential string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Customer is the merged view of one Identity and one Account with the same id.
type Customer struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Gender           string    `json:"gender,omitempty"`
	Identification   string    `json:"identification"`
	Address          string    `json:"address,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Credential       string    `json:"-"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	AccountCreatedAt time.Time `json:"accountCreatedAt"`
	AccountUpdatedAt time.Time `json:"accountUpdatedAt"`
}

func NewCustomer(name, gender, identification, address, phone, credential string) *Customer {
	return &Customer{
		Name:           name,
		Gender:         gender,
		Identification: identification,
		Address:        address,
		Phone:          phone,
		Credential:     credential,
		Active:         true,
	}
}

// Merge joins an identity and an account into one Customer.
func Merge(identity Identity, account Account) (*Customer, error) {
	if identity.ID != account.ID {
		return nil, ErrInconsistentAggregate
	}
	return &Customer{
		ID:               identity.ID,
		Name:             identity.Name,
		Gender:           identity.Gender,
		Identification:   identity.Identification,
		Address:          identity.Address,
		Phone:            identity.Phone,
		Credential:       account.Credential,
		Active:           account.Active,
		CreatedAt:        identity.CreatedAt,
		UpdatedAt:        identity.UpdatedAt,
		AccountCreatedAt: account.CreatedAt,
		AccountUpdatedAt: account.UpdatedAt,
	}, nil
}

func (c *Customer) Identity() Identity {
	return Identity{
		ID:             c.ID,
		Name:           c.Name,
		Gender:         c.Gender,
		Identification: c.Identification,
		Address:        c.Address,
		Phone:          c.Phone,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func (c *Customer) Account() Account {
	return Account{
		ID:         c.ID,
		Credential: c.Credential,
		Active:     c.Active,
		CreatedAt:  c.AccountCreatedAt,
		UpdatedAt:  c.AccountUpdatedAt,
	}
}

func (c *Customer) IsActive() bool {
	return c.Active
}

func (c *Customer) Activate() {
	if !c.Active {
		c.Active = true
		c.AccountUpdatedAt = time.Now()
	}
}

func (c *Customer) Deactivate() {
	if c.Active {
		c.Active = false
		c.AccountUpdatedAt = time.Now()
	}
}

// Patch carries the fields of a partial update. Nil fields are left untouched.
// Identification is immutable and therefore absent.
type Patch struct {
	Name       *string
	Gender     *string
	Address    *string
	Phone      *string
	Credential *string
	Active     *bool
}

func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Gender == nil && p.Address == nil &&
		p.Phone == nil && p.Credential == nil && p.Active == nil
}

// ApplyTo copies the present fields onto c and reports whether any value changed.
func (p Patch) ApplyTo(c *Customer) bool {
	changed := false
	setString := func(dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = true
		}
	}

	setString(&c.Name, p.Name)
	setString(&c.Gender, p.Gender)
	setString(&c.Address, p.Address)
	setString(&c.Phone, p.Phone)
	setString(&c.Credential, p.Credential)

	if p.Active != nil && c.Active != *p.Active {
		c.Active = *p.Active
		changed = true
	}
	return changed
}
