package dto

type AppointmentListDTO struct {
	ID          uint    `json:"id"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Status      string  `json:"status"`
	PatientName string  `json:"patient_name"`
	Price       float64 `json:"price"`
	PaymentID   *string `json:"payment_id,omitempty"`
}
