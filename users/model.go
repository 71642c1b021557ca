package users

// User is a jsonplaceholder user. ID identifies it; the whole value is
// comparable.
type User struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Address  Address `json:"address"`
	Phone    string  `json:"phone"`
	Website  string  `json:"website"`
	Company  Company `json:"company"`
}

type Address struct {
	Street  string `json:"street"`
	Suite   string `json:"suite"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
	Geo     Geo    `json:"geo"`
}

// Geo coordinates are strings on the wire.
type Geo struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

type Company struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase"`
	BS          string `json:"bs"`
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Name     *string  `json:"name,omitempty"`
	Username *string  `json:"username,omitempty"`
	Email    *string  `json:"email,omitempty"`
	Address  *Address `json:"address,omitempty"`
	Phone    *string  `json:"phone,omitempty"`
	Website  *string  `json:"website,omitempty"`
	Company  *Company `json:"company,omitempty"`
}

// Apply returns u with every non-nil field of p written over it.
func (p Patch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Website != nil {
		u.Website = *p.Website
	}
	if p.Company != nil {
		u.Company = *p.Company
	}

	return u
}

// Deleted is the empty object returned for a deletion.
type Deleted struct{}
