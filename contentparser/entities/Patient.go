package entities

// PatientMedication is one prescribed medication of a patient.
type PatientMedication struct {
	ID string `json:"id"`
}
