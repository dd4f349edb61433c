package rest

import (
	"time"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/domain"
)

const dateLayout = "2006-01-02"

type Class struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Code           string    `json:"code"`
	ExerciseTypeID string    `json:"exercise_type_id"`
	Venue          string    `json:"venue"`
	Address        string    `json:"address"`
	ZipCode        *string   `json:"zip_code,omitempty"`
	DayOfWeek      int       `json:"day_of_week"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
	InstructorID   string    `json:"instructor_id"`
	FeeCriteria    string    `json:"fee_criteria"`
	FeeAmount      int64     `json:"fee_amount"`
	Term           string    `json:"term"`
	Capacity       int       `json:"capacity"`
	IsSubsidised   bool      `json:"is_subsidised"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Instructor struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id,omitempty"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Specialty *string   `json:"specialty,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Customer struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id,omitempty"`
	FirstName string    `json:"first_name"`
	Surname   string    `json:"surname"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type Booking struct {
	ID             string    `json:"id"`
	ClassID        string    `json:"class_id"`
	EnrollmentID   *string   `json:"enrollment_id,omitempty"`
	CustomerID     string    `json:"customer_id"`
	BookingDate    string    `json:"booking_date"`
	Term           string    `json:"term"`
	IsTrial        bool      `json:"is_trial"`
	ClassName      string    `json:"class_name,omitempty"`
	InstructorName string    `json:"instructor_name,omitempty"`
	CustomerName   string    `json:"customer_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Enrollment struct {
	ID             string    `json:"id"`
	CustomerID     string    `json:"customer_id"`
	EnrollmentType string    `json:"enrollment_type"`
	PaymentStatus  string    `json:"payment_status"`
	Status         string    `json:"status"`
	PaymentIntent  *string   `json:"payment_intent,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Payment struct {
	ID            string    `json:"id"`
	EnrollmentID  *string   `json:"enrollment_id,omitempty"`
	BookingID     *string   `json:"booking_id,omitempty"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	Method        string    `json:"payment_method"`
	Status        string    `json:"payment_status"`
	TransactionID string    `json:"transaction_id"`
	ReceiptNumber string    `json:"receipt_number"`
	PaymentDate   time.Time `json:"payment_date"`
	Notes         string    `json:"notes,omitempty"`
}

type Attendance struct {
	ID         string    `json:"id"`
	ClassID    string    `json:"class_id"`
	BookingID  string    `json:"booking_id"`
	Attended   bool      `json:"attended"`
	RecordedAt time.Time `json:"recorded_at"`
}

type ClassDetail struct {
	Class      Class       `json:"class"`
	Instructor *Instructor `json:"instructor,omitempty"`
	Bookings   []Booking   `json:"bookings"`
}

// CustomerDetail mirrors the tabs of the customer page.
type CustomerDetail struct {
	Profile struct {
		Customer Customer `json:"customer"`
		User     *User    `json:"user,omitempty"`
	} `json:"profile"`
	Bookings []Booking `json:"bookings"`
	Payments []Payment `json:"payments"`
}

type BookingDetail struct {
	Booking    Booking     `json:"booking"`
	Enrollment *Enrollment `json:"enrollment,omitempty"`
	Class      Class       `json:"class"`
	Payments   []Payment   `json:"payments"`
}

func ToClass(c *domain.Class) Class {
	return Class{
		ID:             c.ID,
		Name:           c.Name,
		Code:           c.Code,
		ExerciseTypeID: c.ExerciseTypeID,
		Venue:          c.Venue,
		Address:        c.Address,
		ZipCode:        c.ZipCode,
		DayOfWeek:      c.DayOfWeek,
		StartTime:      c.StartTime,
		EndTime:        c.EndTime,
		InstructorID:   c.InstructorID,
		FeeCriteria:    c.FeeCriteria,
		FeeAmount:      c.FeeAmount,
		Term:           string(c.Term),
		Capacity:       c.Capacity,
		IsSubsidised:   c.IsSubsidised,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func ToInstructor(i *domain.Instructor) Instructor {
	return Instructor{
		ID:        i.ID,
		UserID:    i.UserID,
		Name:      i.Name,
		Email:     i.Email,
		Phone:     i.Phone,
		Specialty: i.Specialty,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func ToCustomer(c *domain.Customer) Customer {
	return Customer{
		ID:        c.ID,
		UserID:    c.UserID,
		FirstName: c.FirstName,
		Surname:   c.Surname,
		Email:     c.Email,
		Phone:     c.Phone,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func ToBooking(b *domain.Booking) Booking {
	return Booking{
		ID:           b.ID,
		ClassID:      b.ClassID,
		EnrollmentID: b.EnrollmentID,
		CustomerID:   b.CustomerID,
		BookingDate:  b.BookingDate.Format(dateLayout),
		Term:         string(b.Term),
		IsTrial:      b.IsTrial,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func ToBookingView(v application.BookingView) Booking {
	b := ToBooking(&v.Booking)
	b.ClassName = v.ClassName
	b.InstructorName = v.InstructorName
	b.CustomerName = v.CustomerName
	return b
}

func ToEnrollment(e *domain.Enrollment) Enrollment {
	return Enrollment{
		ID:             e.ID,
		CustomerID:     e.CustomerID,
		EnrollmentType: e.EnrollmentType,
		PaymentStatus:  string(e.PaymentStatus),
		Status:         string(e.Status),
		PaymentIntent:  e.PaymentIntent,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func ToPayment(p *domain.Payment) Payment {
	return Payment{
		ID:            p.ID,
		EnrollmentID:  p.EnrollmentID,
		BookingID:     p.BookingID,
		AmountCents:   p.AmountCents,
		Currency:      p.Currency,
		Method:        p.Method,
		Status:        p.Status,
		TransactionID: p.TransactionID,
		ReceiptNumber: p.ReceiptNumber,
		PaymentDate:   p.PaymentDate,
		Notes:         p.Notes,
	}
}

func ToAttendance(a domain.Attendance) Attendance {
	return Attendance(a)
}

func ToClassDetail(d *application.ClassDetail) ClassDetail {
	out := ClassDetail{
		Class:    ToClass(d.Class),
		Bookings: mapSlice(d.Bookings, ToBookingView),
	}
	if d.Instructor != nil {
		instructor := ToInstructor(d.Instructor)
		out.Instructor = &instructor
	}
	return out
}

func ToCustomerDetail(d *application.CustomerDetail) CustomerDetail {
	var out CustomerDetail
	out.Profile.Customer = ToCustomer(d.Profile.Customer)
	if u := d.Profile.User; u != nil {
		out.Profile.User = &User{
			ID:        u.ID,
			Email:     u.Email,
			Role:      string(u.Role),
			FullName:  u.FullName,
			AvatarURL: u.AvatarURL,
		}
	}
	out.Bookings = mapSlice(d.Bookings, ToBookingView)
	out.Payments = mapSlice(d.Payments, ToPayment)
	return out
}

func ToBookingDetail(d *application.BookingDetail) BookingDetail {
	out := BookingDetail{
		Booking:  ToBooking(d.Booking),
		Class:    ToClass(d.Class),
		Payments: mapSlice(d.Payments, ToPayment),
	}
	if d.Enrollment != nil {
		enrollment := ToEnrollment(d.Enrollment)
		out.Enrollment = &enrollment
	}
	return out
}

// MapSlice converts a list, returning an empty slice rather than nil so
// lists encode as [].
func MapSlice[T, R any](in []T, fn func(T) R) []R {
	return mapSlice(in, fn)
}

func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
