package domain

import "fmt"

// InspectionRecord is the submitted inspection payload. All fields are
// required; value ranges and formats are the submitter's concern.
type InspectionRecord struct {
	VehicleNumber  string `json:"vehicleNumber"`
	InspectionDate string `json:"inspectionDate"`
	InspectorID    string `json:"inspectorId"`
	Mileage        string `json:"mileage"`
	Status         string `json:"status"`
	PDFURL         string `json:"pdfurl"`
}

func (r InspectionRecord) Validate() error {
	for _, field := range []struct {
		name  string
		value string
	}{
		{"vehicleNumber", r.VehicleNumber},
		{"inspectionDate", r.InspectionDate},
		{"inspectorId", r.InspectorID},
		{"mileage", r.Mileage},
		{"status", r.Status},
		{"pdfurl", r.PDFURL},
	} {
		if field.value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidRecord, field.name)
		}
	}
	return nil
}
