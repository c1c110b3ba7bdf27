package dto

import (
	"time"

	"docflow/internal/core/types"
	"docflow/internal/domain/reminder"
	"docflow/internal/domain/tax"
)

// ComputeTaxRequest asks for a tax summary of ad hoc lines.
type ComputeTaxRequest struct {
	Items []LineItemRequest `json:"items"`
}

// ComputeTaxResponse mirrors tax.Summary with decimal strings.
type ComputeTaxResponse struct {
	Subtotal types.Money              `json:"subtotal"`
	ByRate   map[string]tax.RateGroup `json:"byRate"`
	TotalTax types.Money              `json:"totalTax"`
	Total    types.Money              `json:"total"`
}

// FromTaxSummary creates response DTO from a summary.
func FromTaxSummary(s tax.Summary) ComputeTaxResponse {
	return ComputeTaxResponse{
		Subtotal: s.Subtotal,
		ByRate:   s.ByRate,
		TotalTax: s.TotalTax,
		Total:    s.Total,
	}
}

// RunRemindersRequest optionally pins the scan clock.
type RunRemindersRequest struct {
	At *time.Time `json:"at"`
}

// ReminderReportResponse summarizes one scan.
type ReminderReportResponse struct {
	RanAt            time.Time            `json:"ranAt"`
	FiredReminders   int                  `json:"firedReminders"`
	AutoTransitioned int                  `json:"autoTransitioned"`
	Errors           []reminder.ScanError `json:"errors"`
}

// FromReminderReport creates response DTO from a report.
func FromReminderReport(r reminder.Report) ReminderReportResponse {
	errs := r.Errors
	if errs == nil {
		errs = []reminder.ScanError{}
	}
	return ReminderReportResponse{
		RanAt:            r.RanAt,
		FiredReminders:   r.FiredReminders,
		AutoTransitioned: r.AutoTransitioned,
		Errors:           errs,
	}
}
