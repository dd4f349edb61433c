package domain

import "time"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleCustomer   Role = "customer"
)

type User struct {
	ID        string
	Email     string
	Role      Role
	FullName  *string
	AvatarURL *string
	CreatedAt time.Time
}

type Instructor struct {
	ID        string
	UserID    *string
	Name      string
	Email     *string
	Phone     *string
	Specialty *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Customer struct {
	ID        string
	UserID    *string
	FirstName string
	Surname   string
	Email     *string
	Phone     *string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
