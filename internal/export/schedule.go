package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/segyhp/clinic-billing/internal/domain"
	"github.com/segyhp/clinic-billing/pkg/utils"
)

const (
	ScheduleSheet       = "Schedule"
	ScheduleContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	dateLayout      = "2006-01-02"
	scheduleHeadRow = 8
)

var scheduleHeaders = []string{"#", "Due date", "Amount", "Paid", "Paid at", "Payment"}

// ScheduleFilename is the download name of a financing schedule.
func ScheduleFilename(detail *domain.FinancingDetail) string {
	return fmt.Sprintf("financing-%s.xlsx", detail.ID.String()[:8])
}

// WriteSchedule renders the financing summary and its installment table as
// an xlsx workbook into w.
func WriteSchedule(w io.Writer, detail *domain.FinancingDetail) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ScheduleSheet); err != nil {
		return err
	}

	summary := [][]interface{}{
		{"Financing", utils.ShortRef("Fin.", detail.ID.String())},
		{"Patient", detail.PatientName},
		{"Total amount", detail.TotalAmount.InexactFloat64()},
		{"Down payment", detail.DownPayment.InexactFloat64()},
		{"Balance", detail.Balance.InexactFloat64()},
		{"Total paid", detail.TotalPaid.InexactFloat64()},
		{"Status", detail.Status},
	}
	for i, row := range summary {
		if err := setRow(f, 1, i+1, row); err != nil {
			return err
		}
	}

	headers := make([]interface{}, len(scheduleHeaders))
	for i, h := range scheduleHeaders {
		headers[i] = h
	}
	if err := setRow(f, 1, scheduleHeadRow, headers); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(scheduleHeaders), scheduleHeadRow)
	if err := f.SetCellStyle(ScheduleSheet, fmt.Sprintf("A%d", scheduleHeadRow), last, bold); err != nil {
		return err
	}

	for i, inst := range detail.Installments {
		paid := "No"
		paidAt := ""
		payment := ""
		if inst.Paid {
			paid = "Yes"
		}
		if inst.PaidAt != nil {
			paidAt = inst.PaidAt.Format(dateLayout)
		}
		if inst.PaymentID != nil {
			payment = utils.ShortRef("Pago", inst.PaymentID.String())
		}

		row := []interface{}{inst.Number, inst.DueDate.Format(dateLayout), inst.Amount.InexactFloat64(), paid, paidAt, payment}
		if err := setRow(f, 1, scheduleHeadRow+1+i, row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(ScheduleSheet, "A", "F", 16); err != nil {
		return err
	}

	return f.Write(w)
}

func setRow(f *excelize.File, col, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(ScheduleSheet, cell, &values)
}
