package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/caminvoice-api/internal/application/dto"
	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
	"github.com/jhoicas/caminvoice-api/internal/domain/invoicing"
)

// EnrichInvoice convierte la factura a DTO y añade los campos derivados de presentación.
func EnrichInvoice(inv *entity.Invoice, now time.Time) *dto.InvoiceResponse {
	if inv == nil {
		return nil
	}
	overdue, days := invoicing.Overdue(inv.Status, inv.DueDate, now)
	out := &dto.InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		Customer:      toCustomerResponse(inv.Customer),
		InvoiceDate:   dto.NewDate(inv.InvoiceDate),
		DueDate:       dto.DatePtr(inv.DueDate),
		Status:        inv.Status,
		Subtotal:      inv.Subtotal,
		TaxRate:       inv.TaxRate,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		PaymentTerms:  inv.PaymentTerms,
		Notes:         inv.Notes,
		Items:         make([]dto.InvoiceItemResponse, 0, len(inv.Items)),
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,

		CustomerName:   inv.Customer.DisplayName(),
		ItemsCount:     len(inv.Items),
		StatusDisplay:  invoicing.StatusLabel(inv.Status),
		StatusSeverity: invoicing.StatusSeverity(inv.Status, overdue),
		Overdue:        overdue,
		DaysOverdue:    days,
	}
	for _, it := range inv.Items {
		out.Items = append(out.Items, toItemResponse(it))
	}
	return out
}

func enrichInvoices(list []*entity.Invoice, now time.Time) []dto.InvoiceResponse {
	out := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, *EnrichInvoice(inv, now))
	}
	return out
}

func toItemResponse(it *entity.InvoiceItem) dto.InvoiceItemResponse {
	r := dto.InvoiceItemResponse{
		ID:            it.ID,
		InvoiceID:     it.InvoiceID,
		ServiceTypeID: it.ServiceTypeID,
		ServiceType:   toServiceTypeResponse(it.ServiceType),
		Description:   it.Description,
		Quantity:      it.Quantity,
		UnitPrice:     it.UnitPrice,
		TotalPrice:    it.TotalPrice,
		ServiceDate:   dto.DatePtr(it.ServiceDate),
	}
	if it.DurationHours.Valid {
		h := it.DurationHours.Decimal
		r.DurationHours = &h
	}
	return r
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	if c == nil {
		return nil
	}
	return &dto.CustomerResponse{
		ID:            c.ID,
		ClientType:    c.ClientType,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		CompanyName:   c.CompanyName,
		ContactPerson: c.ContactPerson,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		City:          c.City,
		PostalCode:    c.PostalCode,
		Country:       c.Country,
		VATNumber:     c.VATNumber,
		Notes:         c.Notes,
		DisplayName:   c.DisplayName(),
		CreatedAt:     c.CreatedAt,
	}
}

func toServiceTypeResponse(st *entity.ServiceType) *dto.ServiceTypeResponse {
	if st == nil {
		return nil
	}
	r := &dto.ServiceTypeResponse{
		ID:          st.ID,
		Name:        st.Name,
		Description: st.Description,
		Category:    st.Category,
		PricingType: st.PricingType,
		UnitPrice:   st.UnitPrice,
		IsActive:    st.IsActive,
	}
	if st.DefaultDurationHours.Valid {
		h := st.DefaultDurationHours.Decimal
		r.DefaultDurationHours = &h
	}
	return r
}

func toProfileResponse(p *entity.InstructorProfile, isDefault bool) *dto.ProfileResponse {
	if p == nil {
		return nil
	}
	r := &dto.ProfileResponse{
		ID:                  p.ID,
		BusinessName:        p.BusinessName,
		FirstName:           p.FirstName,
		LastName:            p.LastName,
		Email:               p.Email,
		Phone:               p.Phone,
		Address:             p.Address,
		City:                p.City,
		PostalCode:          p.PostalCode,
		Country:             p.Country,
		VATNumber:           p.VATNumber,
		LicenseNumber:       p.LicenseNumber,
		IBAN:                p.IBAN,
		BIC:                 p.BIC,
		BankName:            p.BankName,
		DefaultPaymentTerms: p.DefaultPaymentTerms,
		DefaultTaxRate:      p.DefaultTaxRate,
		LogoURL:             p.LogoURL,
		IsDefault:           isDefault,
	}
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		r.UpdatedAt = &t
	}
	return r
}

func nullDecimal(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*v)
}
