package employee

import "github.com/shopspring/decimal"

type EmployeeResponse struct {
	EmployeeID    string          `json:"employeeId"`
	FirstName     string          `json:"firstName"`
	LastName      string          `json:"lastName"`
	Role          string          `json:"role"`
	BaseSalary    decimal.Decimal `json:"baseSalary"`
	NormalOTRate  decimal.Decimal `json:"normalOtRate"`
	HolidayOTRate decimal.Decimal `json:"holidayOtRate"`
}

func ToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		EmployeeID:    e.ID,
		FirstName:     e.FirstName,
		LastName:      e.LastName,
		Role:          e.Role,
		BaseSalary:    e.BaseSalary,
		NormalOTRate:  e.NormalOTRate,
		HolidayOTRate: e.HolidayOTRate,
	}
}
