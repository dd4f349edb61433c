package services

// Command structs carry dashboard form input. Validation tags mirror the
// dashboard forms; cross-field and reference checks happen in the services.

type ClassCommand struct {
	Name           string  `json:"name" validate:"required"`
	Code           string  `json:"code" validate:"required"`
	ExerciseTypeID string  `json:"exercise_type_id" validate:"required"`
	Venue          string  `json:"venue" validate:"required"`
	Address        string  `json:"address" validate:"required"`
	ZipCode        *string `json:"zip_code"`
	DayOfWeek      int     `json:"day_of_week" validate:"min=1,max=7"`
	StartTime      string  `json:"start_time" validate:"required"`
	EndTime        string  `json:"end_time" validate:"required"`
	InstructorID   string  `json:"instructor_id" validate:"required,uuid"`
	FeeCriteria    string  `json:"fee_criteria" validate:"required"`
	FeeAmount      int64   `json:"fee_amount" validate:"min=0"`
	Term           string  `json:"term" validate:"required,oneof=Term1 Term2 Term3 Term4"`
	Capacity       int     `json:"capacity" validate:"min=0"`
	IsSubsidised   bool    `json:"is_subsidised"`
}

type InstructorCommand struct {
	UserID    *string `json:"user_id" validate:"omitempty,uuid"`
	Name      string  `json:"name" validate:"required"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
	Specialty *string `json:"specialty"`
}

type CustomerCommand struct {
	UserID    *string `json:"user_id" validate:"omitempty,uuid"`
	FirstName string  `json:"first_name" validate:"required"`
	Surname   string  `json:"surname" validate:"required"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
	Status    string  `json:"status" validate:"omitempty,oneof=active inactive"`
}

type BookingCommand struct {
	ClassID      string  `json:"class_id" validate:"required,uuid"`
	CustomerID   string  `json:"customer_id" validate:"required,uuid"`
	EnrollmentID *string `json:"enrollment_id" validate:"omitempty,uuid"`
	BookingDate  string  `json:"booking_date" validate:"required"`
	Term         string  `json:"term" validate:"omitempty,oneof=Term1 Term2 Term3 Term4"`
	IsTrial      bool    `json:"is_trial"`
}

type AttendanceCommand struct {
	PresentBookingIDs []string `json:"present_booking_ids"`
}

type CheckoutCommand struct {
	ClassIDs    []string `json:"class_ids" validate:"required,min=1,dive,uuid"`
	BookingDate string   `json:"booking_date"`
	IsTrial     bool     `json:"is_trial"`
}
