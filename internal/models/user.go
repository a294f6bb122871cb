package models

// User представляет пользователя с необязательным адресом
type User struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	Name      string   `gorm:"column:name;not null" json:"name"`
	Age       *int     `gorm:"column:age" json:"age"`
	AddressID *uint    `gorm:"column:address_id" json:"-"`
	Address   *Address `gorm:"foreignKey:AddressID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"address"`
}

// Address представляет адрес пользователя.
// Комбинация (country, city, street, code) уникальна на уровне хранилища.
type Address struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Country string `gorm:"column:country;not null;uniqueIndex:idx_addresses_location" json:"country"`
	City    string `gorm:"column:city;not null;uniqueIndex:idx_addresses_location" json:"city"`
	Street  string `gorm:"column:street;not null;uniqueIndex:idx_addresses_location" json:"street"`
	Code    int    `gorm:"column:code;not null;uniqueIndex:idx_addresses_location" json:"code"`
}

// TableName устанавливает имя таблицы для модели User
func (User) TableName() string {
	return "users"
}

// TableName устанавливает имя таблицы для модели Address
func (Address) TableName() string {
	return "addresses"
}

// UserEqual сравнивает пользователей по имени и адресу.
// Идентификатор и возраст в сравнении не участвуют.
func UserEqual(a, b *User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name == b.Name && AddressEqual(a.Address, b.Address)
}

// AddressEqual сравнивает адреса без учета идентификатора
func AddressEqual(a, b *Address) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Country == b.Country &&
		a.City == b.City &&
		a.Street == b.Street &&
		a.Code == b.Code
}

// IntPtr возвращает указатель на значение, удобно для необязательного возраста
func IntPtr(v int) *int {
	return &v
}
