package payslip

import (
	"bytes"
	"fmt"
	"html/template"
)

var payslipTemplate = template.Must(template.New("payslip").Parse(payslipHTML))

// RenderHTML renders a standalone HTML page. The output depends only on doc.
func RenderHTML(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := payslipTemplate.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("render payslip: %w", err)
	}
	return buf.Bytes(), nil
}

const payslipHTML = `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>{{.Title}}</title>
    <style>
      body { font-family: Arial, sans-serif; margin: 24px; color: #111; }
      .payslip-container { max-width: 800px; margin: 0 auto; border: 1px solid #ccc; padding: 24px; }
      .header { text-align: center; margin-bottom: 20px; }
      .header h1 { margin: 0; font-size: 22px; text-transform: uppercase; }
      .header h2 { margin: 4px 0 0; font-size: 16px; font-weight: normal; }
      .section-title { font-weight: bold; margin-top: 16px; margin-bottom: 8px; text-decoration: underline; }
      table { width: 100%; border-collapse: collapse; margin-bottom: 12px; }
      th, td { padding: 6px 8px; font-size: 13px; }
      .table-bordered th, .table-bordered td { border: 1px solid #ccc; }
      .text-right { text-align: right; }
      .text-left { text-align: left; }
      .summary-row { font-weight: bold; background-color: #f8f8f8; }
      .footer { margin-top: 24px; font-size: 12px; }
      .sign-row { margin-top: 40px; display: flex; justify-content: space-between; font-size: 12px; }
      .sign-box { width: 45%; text-align: center; }
      .sign-line { border-top: 1px solid #000; margin-top: 32px; padding-top: 4px; }
    </style>
  </head>
  <body>
    <div class="payslip-container">
      <div class="header">
        <h1>{{.Heading}}</h1>
        <h2>{{.Subheading}}</h2>
      </div>

      <div>
        <div class="section-title">Employee Details</div>
        <table>
          <tr>
            <td><strong>Employee ID:</strong> {{.EmployeeID}}</td>
            <td><strong>Name:</strong> {{.EmployeeName}}</td>
          </tr>
          <tr>
            <td><strong>Pay Period:</strong> {{.PayPeriod}}</td>
            <td><strong>Designation:</strong> {{.Designation}}</td>
          </tr>
          <tr>
            <td colspan="2"><strong>Cycle:</strong> {{.Cycle}}</td>
          </tr>
        </table>
      </div>

      <div>
        <div class="section-title">Earnings</div>
        <table class="table-bordered">
          <thead>
            <tr>
              <th class="text-left">Description</th>
              <th class="text-right">Amount (Rs.)</th>
            </tr>
          </thead>
          <tbody>
{{- range .Earnings}}
            {{template "row" .}}
{{- end}}
          </tbody>
        </table>
      </div>

      <div>
        <div class="section-title">Deductions &amp; Net Pay</div>
        <table class="table-bordered">
          <thead>
            <tr>
              <th class="text-left">Description</th>
              <th class="text-right">Amount (Rs.)</th>
            </tr>
          </thead>
          <tbody>
{{- range .Deductions}}
            {{template "row" .}}
{{- end}}
          </tbody>
        </table>
      </div>

      <div>
        <div class="section-title">Attendance Summary (Cycle)</div>
        <table class="table-bordered">
          <tbody>
{{- range .Attendance}}
            {{template "row" .}}
{{- end}}
          </tbody>
        </table>
      </div>

      <div class="sign-row">
{{- range .Signatures}}
        <div class="sign-box">
          <div class="sign-line">{{.}}</div>
        </div>
{{- end}}
      </div>

      <div class="footer">
        {{.Footer}}
      </div>
    </div>
  </body>
</html>
{{define "row"}}<tr{{if .Summary}} class="summary-row"{{end}}>
              {{if .Strong}}<td><strong>{{.Label}}</strong></td>
              <td class="text-right"><strong>{{.Value}}</strong></td>{{else}}<td>{{.Label}}</td>
              <td class="text-right">{{.Value}}</td>{{end}}
            </tr>{{end}}`
