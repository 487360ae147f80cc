package invoices

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/boutique2v/commerce-backend/internal/settings"
	"github.com/boutique2v/commerce-backend/pkg/db/models"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
)

// ObjectStore is the storage surface the renderer writes PDFs through.
type ObjectStore interface {
	Write(ctx context.Context, objectPath string, data []byte) error
	AbsPath(objectPath string) (string, error)
	PublicURL(objectPath string) (string, error)
}

// Renderer turns orders and manual invoices into stored PDF documents.
// Rendering the same document twice overwrites the previous file, so the
// public URL stays stable across regenerations.
type Renderer struct {
	settings settings.Provider
	store    ObjectStore
	logg     *logger.Logger
}

// RendererParams wires the renderer dependencies.
type RendererParams struct {
	Settings settings.Provider
	Store    ObjectStore
	Logger   *logger.Logger
}

// NewRenderer constructs the PDF renderer.
func NewRenderer(params RendererParams) (*Renderer, error) {
	if params.Settings == nil {
		return nil, fmt.Errorf("settings provider required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Renderer{
		settings: params.Settings,
		store:    params.Store,
		logg:     params.Logger,
	}, nil
}

func orderInvoicePath(orderID uuid.UUID) string {
	return fmt.Sprintf("invoices/%s.pdf", orderID)
}

func manualInvoicePath(invoiceID uuid.UUID) string {
	return fmt.Sprintf("invoices/manual/%s.pdf", invoiceID)
}

// RenderOrderInvoice builds the PDF for an order, writes it to storage and
// returns its public URL.
func (r *Renderer) RenderOrderInvoice(ctx context.Context, order *models.Order) (string, error) {
	setting, err := r.settings.Current(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading store settings")
	}

	data, err := r.buildOrderPDF(order, setting)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rendering order invoice")
	}

	objectPath := orderInvoicePath(order.ID)
	if err := r.store.Write(ctx, objectPath, data); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing order invoice")
	}

	url, err := r.store.PublicURL(objectPath)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving invoice url")
	}

	ctx = r.logg.WithOrderID(ctx, order.ID.String())
	r.logg.Info(ctx, "order invoice rendered")
	return url, nil
}

// OrderInvoiceAbsPath resolves the on-disk location of an order's invoice.
func (r *Renderer) OrderInvoiceAbsPath(orderID uuid.UUID) (string, error) {
	return r.store.AbsPath(orderInvoicePath(orderID))
}

// RenderManualInvoice builds the PDF for a manually issued invoice.
func (r *Renderer) RenderManualInvoice(ctx context.Context, invoice *models.ManualInvoice) (string, error) {
	setting, err := r.settings.Current(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading store settings")
	}

	data, err := r.buildManualPDF(invoice, setting)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rendering manual invoice")
	}

	objectPath := manualInvoicePath(invoice.ID)
	if err := r.store.Write(ctx, objectPath, data); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing manual invoice")
	}

	return r.store.PublicURL(objectPath)
}

// ManualInvoiceAbsPath resolves the on-disk location of a manual invoice.
func (r *Renderer) ManualInvoiceAbsPath(invoiceID uuid.UUID) (string, error) {
	return r.store.AbsPath(manualInvoicePath(invoiceID))
}

func newDocument() core.Maroto {
	cfg := config.NewBuilder().
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		Build()
	return maroto.New(cfg)
}

// billingIdentity bills to the order's customer account, falling back to the
// shipping contact when the user is not loaded. The shipping block still
// supplies the address either way.
func billingIdentity(order *models.Order) (name, email string) {
	name = order.ShippingInfo.Name
	email = order.ShippingInfo.Email
	if order.User != nil {
		if order.User.Name != "" {
			name = order.User.Name
		}
		if order.User.Email != "" {
			email = order.User.Email
		}
	}
	return name, email
}

func (r *Renderer) buildOrderPDF(order *models.Order, setting *models.Setting) ([]byte, error) {
	m := newDocument()
	symbol := currencySymbol(setting.Currency)

	addHeader(m, setting, "INVOICE", fmt.Sprintf("Order %s", shortID(order.ID)), order.CreatedAt)
	billName, billEmail := billingIdentity(order)
	addBillTo(m,
		billName,
		billEmail,
		order.ShippingInfo.Phone,
		joinNonEmpty(order.ShippingInfo.Address, order.ShippingInfo.City, order.ShippingInfo.Zip, order.ShippingInfo.Country),
	)

	addItemsHeader(m)
	for _, item := range order.Items {
		addItemRow(m, item.Title, item.Quantity, money(item.Price, symbol), money(item.LineTotal(), symbol))
	}
	m.AddRow(3, line.NewCol(12))

	addTotalRow(m, "Subtotal:", money(order.Subtotal, symbol), false)
	addTotalRow(m, "Shipping:", money(order.ShippingCost, symbol), false)
	addTotalRow(m, fmt.Sprintf("Tax (%s%%):", trimFloat(order.TaxPercent)), money(order.TaxAmount, symbol), false)
	m.AddRow(2, col.New(8), line.NewCol(4))
	addTotalRow(m, "TOTAL:", money(order.Amount, symbol), true)

	addFooter(m, setting)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func (r *Renderer) buildManualPDF(invoice *models.ManualInvoice, setting *models.Setting) ([]byte, error) {
	m := newDocument()
	symbol := currencySymbol(setting.Currency)

	addHeader(m, setting, "INVOICE", fmt.Sprintf("# %s", invoice.InvoiceNumber), invoice.CreatedAt)
	addBillTo(m,
		invoice.Customer.Name,
		invoice.Customer.Email,
		invoice.Customer.Phone,
		invoice.Customer.Address,
	)

	if invoice.DueDate != nil {
		m.AddRow(8,
			col.New(12).Add(
				text.New(fmt.Sprintf("Due: %s", invoice.DueDate.Format("Jan 02, 2006")), props.Text{
					Size:  9,
					Align: align.Left,
				}),
			),
		)
	}

	addItemsHeader(m)
	for _, item := range invoice.Items {
		lineTotal := item.Price * float64(item.Quantity)
		addItemRow(m, item.Description, item.Quantity, money(item.Price, symbol), money(lineTotal, symbol))
	}
	m.AddRow(3, line.NewCol(12))

	m.AddRow(2, col.New(8), line.NewCol(4))
	addTotalRow(m, "TOTAL:", money(invoice.Total, symbol), true)

	if invoice.Notes != nil && *invoice.Notes != "" {
		m.AddRow(5)
		m.AddRow(12,
			col.New(12).Add(
				text.New("Notes:", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Left}),
				text.New(*invoice.Notes, props.Text{Size: 8, Top: 4, Align: align.Left}),
			),
		)
	}

	addFooter(m, setting)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func addHeader(m core.Maroto, setting *models.Setting, title, reference string, issued time.Time) {
	sellerAddress := joinNonEmpty(setting.StoreAddress, setting.StoreCity, setting.StoreCountry)

	m.AddRow(30,
		col.New(6).Add(
			text.New(setting.StoreName, props.Text{
				Size:  16,
				Style: fontstyle.Bold,
				Align: align.Left,
			}),
			text.New(sellerAddress, props.Text{Size: 9, Top: 8, Align: align.Left}),
			text.New(joinNonEmpty(setting.StoreEmail, setting.StorePhone), props.Text{Size: 9, Top: 13, Align: align.Left}),
		),
		col.New(6).Add(
			text.New(title, props.Text{
				Size:  20,
				Style: fontstyle.Bold,
				Align: align.Right,
			}),
			text.New(reference, props.Text{Size: 10, Top: 8, Align: align.Right}),
			text.New(issued.Format("Jan 02, 2006"), props.Text{Size: 9, Top: 13, Align: align.Right}),
		),
	)

	if setting.TaxNumber != "" {
		m.AddRow(6,
			col.New(12).Add(
				text.New(fmt.Sprintf("Tax No: %s", setting.TaxNumber), props.Text{Size: 8, Align: align.Left}),
			),
		)
	}

	m.AddRow(5, line.NewCol(12))
}

func addBillTo(m core.Maroto, name, email, phone, address string) {
	m.AddRow(26,
		col.New(12).Add(
			text.New("BILL TO:", props.Text{
				Size:  10,
				Style: fontstyle.Bold,
				Align: align.Left,
			}),
			text.New(name, props.Text{Size: 10, Top: 5, Align: align.Left}),
			text.New(joinNonEmpty(email, phone), props.Text{Size: 9, Top: 10, Align: align.Left}),
			text.New(address, props.Text{Size: 9, Top: 15, Align: align.Left}),
		),
	)
	m.AddRow(5, line.NewCol(12))
}

func addItemsHeader(m core.Maroto) {
	m.AddRow(8,
		col.New(6).Add(
			text.New("Item", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Left}),
		),
		col.New(2).Add(
			text.New("Qty", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Center}),
		),
		col.New(2).Add(
			text.New("Price", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
		),
		col.New(2).Add(
			text.New("Total", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
		),
	)
	m.AddRow(2, line.NewCol(12))
}

func addItemRow(m core.Maroto, title string, quantity int, price, total string) {
	m.AddRow(8,
		col.New(6).Add(
			text.New(title, props.Text{Size: 9, Align: align.Left}),
		),
		col.New(2).Add(
			text.New(fmt.Sprintf("%d", quantity), props.Text{Size: 9, Align: align.Center}),
		),
		col.New(2).Add(
			text.New(price, props.Text{Size: 9, Align: align.Right}),
		),
		col.New(2).Add(
			text.New(total, props.Text{Size: 9, Align: align.Right}),
		),
	)
}

func addTotalRow(m core.Maroto, label, amount string, emphasized bool) {
	size := 10.0
	style := fontstyle.Normal
	height := 6.0
	if emphasized {
		size = 12
		style = fontstyle.Bold
		height = 8
	}
	m.AddRow(height,
		col.New(8),
		col.New(2).Add(
			text.New(label, props.Text{Size: size, Style: style, Align: align.Right}),
		),
		col.New(2).Add(
			text.New(amount, props.Text{Size: size, Style: style, Align: align.Right}),
		),
	)
}

func addFooter(m core.Maroto, setting *models.Setting) {
	m.AddRow(10)
	if setting.FooterText != "" {
		m.AddRow(10,
			col.New(12).Add(
				text.New(setting.FooterText, props.Text{Size: 9, Align: align.Center}),
			),
		)
	}
	m.AddRow(8,
		col.New(12).Add(
			text.New(fmt.Sprintf("Generated on %s", time.Now().UTC().Format("Jan 02, 2006 15:04 UTC")), props.Text{
				Size:  8,
				Align: align.Center,
				Color: &props.Color{Red: 128, Green: 128, Blue: 128},
			}),
		),
	)
}

func currencySymbol(currency string) string {
	switch strings.ToUpper(currency) {
	case "USD", "":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return currency + " "
	}
}

func money(amount float64, symbol string) string {
	return fmt.Sprintf("%s%.2f", symbol, amount)
}

func trimFloat(v float64) string {
	out := fmt.Sprintf("%.2f", v)
	out = strings.TrimRight(out, "0")
	return strings.TrimRight(out, ".")
}

func shortID(id uuid.UUID) string {
	return strings.Split(id.String(), "-")[0]
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ", ")
}
