package invoices

import (
	"fmt"
	"path"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
)

const purchasedAtLayout = "02/01/2006 15:04"

// Line is one invoice row. UnitPrice is the tax-inclusive price derived
// from the snapshot totals.
type Line struct {
	Name      string
	Quantity  int
	UnitPrice string
	Total     string
}

// Data feeds the invoice template. All amounts are fixed to two decimals.
type Data struct {
	Number        string
	CustomerName  string
	CustomerEmail string
	AddressLine   string
	Zipcode       string
	City          string
	PurchasedAt   string
	Lines         []Line
	TotalHT       string
	TotalTVA      string
	TotalTTC      string
	TotalDelivery string
	TotalDiscount string
	HasDiscount   bool
}

// EmailData feeds the order-confirmation email template.
type EmailData struct {
	FirstName   string
	DeliveryDay string
	WindowStart string
	WindowEnd   string
	Lines       []Line
	TotalTTC    string
}

// Number derives the invoice number from the order id.
func Number(order *models.Order) string {
	return "FA" + strings.ReplaceAll(order.ID.String(), "-", "")
}

// Filename is the PDF name stored and attached to the email.
func Filename(order *models.Order) string {
	return Number(order) + ".pdf"
}

// StoragePath places invoices under a per-customer directory.
func StoragePath(order *models.Order) string {
	return path.Join("invoices", order.UserID.String(), Filename(order))
}

// BuildData maps a fully preloaded order to the invoice template input.
func BuildData(order *models.Order) (*Data, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order is required")
	}
	if order.User == nil || order.Address == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order is missing customer or address")
	}

	email := ""
	if order.User.Email != nil {
		email = *order.User.Email
	}

	addressLine := order.Address.Address1
	if order.Address.Address2 != nil && *order.Address.Address2 != "" {
		addressLine += ", " + *order.Address.Address2
	}

	data := &Data{
		Number:        Number(order),
		CustomerName:  strings.TrimSpace(order.User.FirstName + " " + order.User.LastName),
		CustomerEmail: email,
		AddressLine:   addressLine,
		Zipcode:       order.Address.Zipcode,
		City:          order.Address.City,
		PurchasedAt:   order.Date.Format(purchasedAtLayout),
		Lines:         buildLines(order.Items),
		TotalHT:       order.Total.StringFixed(2),
		TotalTVA:      order.TotalTax.Sub(order.Total).StringFixed(2),
		TotalTTC:      order.TotalTax.StringFixed(2),
		TotalDelivery: order.DeliveryCostTax.StringFixed(2),
		TotalDiscount: order.DiscountTax.StringFixed(2),
		HasDiscount:   order.DiscountTax.IsPositive(),
	}
	return data, nil
}

// BuildEmailData maps the order to the confirmation email template input.
func BuildEmailData(order *models.Order) (*EmailData, error) {
	if order == nil || order.User == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order is missing customer")
	}
	return &EmailData{
		FirstName:   order.User.FirstName,
		DeliveryDay: order.TslotMin.Format("02/01/2006"),
		WindowStart: order.TslotMin.Format("15:04"),
		WindowEnd:   order.TslotMax.Format("15:04"),
		Lines:       buildLines(order.Items),
		TotalTTC:    order.TotalTax.StringFixed(2),
	}, nil
}

func buildLines(items []models.OrderItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		unit := item.TotalTax.Div(decimal.NewFromInt(int64(qty))).Round(2)
		lines = append(lines, Line{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: unit.StringFixed(2),
			Total:     item.TotalTax.StringFixed(2),
		})
	}
	return lines
}

// SubjectFor is the confirmation email subject line.
func SubjectFor(order *models.Order) string {
	return fmt.Sprintf("Votre commande du %s", order.Date.Format("02/01/2006"))
}
