package entity

// User is the aggregate root for the user domain.
// Password holds the bcrypt hash and is never serialised to JSON.
// FullName, Address and Orders are embedded documents with no lifecycle of their own.
type User struct {
	UserID   int64    `bson:"userId" json:"userId"`
	Username string   `bson:"username" json:"username"`
	Password string   `bson:"password,omitempty" json:"-"`
	FullName FullName `bson:"fullName" json:"fullName"`
	Age      int      `bson:"age" json:"age"`
	Email    string   `bson:"email" json:"email"`
	IsActive bool     `bson:"isActive" json:"isActive"`
	Hobbies  []string `bson:"hobbies" json:"hobbies"`
	Address  Address  `bson:"address" json:"address"`
	Orders   []Order  `bson:"orders,omitempty" json:"orders,omitempty"`
}

type FullName struct {
	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
}

type Address struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	Country string `bson:"country" json:"country"`
}

type Order struct {
	ProductName string  `bson:"productName" json:"productName"`
	Price       float64 `bson:"price" json:"price"`
	Quantity    int     `bson:"quantity" json:"quantity"`
}

// UserPatch is a partial update. Nil fields are left untouched;
// Hobbies and Orders are appended to the stored sequences.
type UserPatch struct {
	Username *string
	FullName *FullName
	Age      *int
	Email    *string
	IsActive *bool
	Address  *Address
	Hobbies  []string
	Orders   []Order
}

// IsEmpty reports whether the patch carries no change at all.
func (p UserPatch) IsEmpty() bool {
	return p.Username == nil && p.FullName == nil && p.Age == nil && p.Email == nil &&
		p.IsActive == nil && p.Address == nil && len(p.Hobbies) == 0 && len(p.Orders) == 0
}
