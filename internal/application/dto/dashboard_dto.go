package dto

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary: KPIs de facturas y clientes,
// completitud del perfil y las últimas facturas.
type DashboardSummaryDTO struct {
	Invoices       InvoiceStatsResponse      `json:"invoices"`
	Customers      CustomerStatsResponse     `json:"customers"`
	Profile        ProfileCompletionResponse `json:"profile"`
	RecentInvoices []InvoiceResponse         `json:"recent_invoices"`
	DateLabel      string                    `json:"date_label"` // ej: "June 2025"
}
