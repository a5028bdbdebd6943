package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/caminvoice-api/internal/application/dto"
	"github.com/jhoicas/caminvoice-api/internal/domain"
	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
	"github.com/jhoicas/caminvoice-api/internal/domain/invoicing"
	"github.com/jhoicas/caminvoice-api/internal/domain/repository"
)

// CustomerUseCase casos de uso para clientes (alumnos y empresas).
type CustomerUseCase struct {
	repo        repository.CustomerRepository
	invoiceRepo repository.InvoiceRepository
	now         Clock
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository, invoiceRepo repository.InvoiceRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo, invoiceRepo: invoiceRepo, now: time.Now}
}

// List lista los clientes del usuario con número de facturas y total facturado.
func (uc *CustomerUseCase) List(ctx context.Context, userID string) ([]dto.CustomerResponse, error) {
	list, err := uc.repo.List(ctx, userID)
	if err != nil {
		return nil, gatewayError("listar clientes", userID, err)
	}
	invoices, err := uc.invoiceRepo.List(ctx, userID)
	if err != nil {
		return nil, gatewayError("listar facturas", userID, err)
	}
	counts := make(map[string]int)
	billed := make(map[string]decimal.Decimal)
	for _, inv := range invoices {
		counts[inv.CustomerID]++
		billed[inv.CustomerID] = billed[inv.CustomerID].Add(inv.TotalAmount)
	}

	out := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		r := toCustomerResponse(c)
		n, total := counts[c.ID], billed[c.ID]
		r.TotalInvoices = &n
		r.TotalBilled = &total
		out = append(out, *r)
	}
	return out, nil
}

// Get devuelve el cliente con sus facturas enriquecidas.
func (uc *CustomerUseCase) Get(ctx context.Context, userID, id string) (*dto.CustomerDetailResponse, error) {
	c, err := uc.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	invoices, err := uc.invoiceRepo.ListByCustomer(ctx, userID, id)
	if err != nil {
		return nil, gatewayError("listar facturas del cliente", userID, err)
	}
	return &dto.CustomerDetailResponse{
		CustomerResponse: *toCustomerResponse(c),
		Invoices:         enrichInvoices(invoices, uc.now()),
	}, nil
}

// Create valida y crea un cliente.
func (uc *CustomerUseCase) Create(ctx context.Context, userID string, in dto.CustomerRequest) (*dto.CustomerResponse, error) {
	now := uc.now()
	c := &entity.Customer{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyCustomerRequest(c, in)
	if err := invoicing.ValidateCustomer(c); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, gatewayError("crear cliente", userID, err)
	}
	return toCustomerResponse(c), nil
}

// Update reemplaza los datos del cliente tras validarlos.
func (uc *CustomerUseCase) Update(ctx context.Context, userID, id string, in dto.CustomerRequest) (*dto.CustomerResponse, error) {
	c, err := uc.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	applyCustomerRequest(c, in)
	if err := invoicing.ValidateCustomer(c); err != nil {
		return nil, err
	}
	c.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, gatewayError("actualizar cliente", userID, err)
	}
	return toCustomerResponse(c), nil
}

// Delete elimina el cliente. Devuelve ErrConflict si aún tiene facturas.
func (uc *CustomerUseCase) Delete(ctx context.Context, userID, id string) error {
	if err := uc.repo.Delete(ctx, userID, id); err != nil {
		return gatewayError("eliminar cliente", userID, err)
	}
	return nil
}

// ListForInvoice opciones para el selector de clientes: "Nombre (email)".
func (uc *CustomerUseCase) ListForInvoice(ctx context.Context, userID string) ([]dto.CustomerOption, error) {
	list, err := uc.repo.List(ctx, userID)
	if err != nil {
		return nil, gatewayError("listar clientes", userID, err)
	}
	out := make([]dto.CustomerOption, 0, len(list))
	for _, c := range list {
		name := c.DisplayName()
		label := name
		if c.Email != "" {
			label = name + " (" + c.Email + ")"
		}
		out = append(out, dto.CustomerOption{
			ID:          c.ID,
			ClientType:  c.ClientType,
			DisplayName: name,
			Email:       c.Email,
			Label:       label,
		})
	}
	return out, nil
}

// Stats cuenta clientes por tipo y suma lo cobrado (facturas pagadas).
func (uc *CustomerUseCase) Stats(ctx context.Context, userID string) (*dto.CustomerStatsResponse, error) {
	list, err := uc.repo.List(ctx, userID)
	if err != nil {
		return nil, gatewayError("listar clientes", userID, err)
	}
	invoices, err := uc.invoiceRepo.List(ctx, userID)
	if err != nil {
		return nil, gatewayError("listar facturas", userID, err)
	}
	out := &dto.CustomerStatsResponse{TotalCustomers: len(list), TotalRevenue: decimal.Zero}
	for _, c := range list {
		switch c.ClientType {
		case entity.ClientTypeCompany:
			out.CompanyCustomers++
		default:
			out.IndividualCustomers++
		}
	}
	for _, inv := range invoices {
		if inv.Status == entity.InvoiceStatusPaid {
			out.TotalRevenue = out.TotalRevenue.Add(inv.TotalAmount)
		}
	}
	return out, nil
}

func (uc *CustomerUseCase) load(ctx context.Context, userID, id string) (*entity.Customer, error) {
	c, err := uc.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, gatewayError("obtener cliente", userID, err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func applyCustomerRequest(c *entity.Customer, in dto.CustomerRequest) {
	c.ClientType = strings.TrimSpace(in.ClientType)
	c.FirstName = strings.TrimSpace(in.FirstName)
	c.LastName = strings.TrimSpace(in.LastName)
	c.CompanyName = strings.TrimSpace(in.CompanyName)
	c.ContactPerson = strings.TrimSpace(in.ContactPerson)
	c.Email = strings.TrimSpace(in.Email)
	c.Phone = strings.TrimSpace(in.Phone)
	c.Address = in.Address
	c.City = in.City
	c.PostalCode = in.PostalCode
	c.Country = in.Country
	c.VATNumber = strings.TrimSpace(in.VATNumber)
	c.Notes = in.Notes
}
