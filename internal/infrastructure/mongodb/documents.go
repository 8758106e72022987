package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
)

// Nombres de colecciones.
const (
	colProducts    = "products"
	colMovements   = "inventory_movements"
	colInvoices    = "invoices"
	colCreditNotes = "credit_notes"
	colPayments    = "payments"
	colSequences   = "ncf_sequences"
	colClients     = "clients"
)

type productDoc struct {
	ID          string               `bson:"_id"`
	Code        string               `bson:"code"`
	CodeLower   string               `bson:"codeLower"`
	Name        string               `bson:"name"`
	Description string               `bson:"description,omitempty"`
	Category    string               `bson:"category"`
	UnitMeasure string               `bson:"unitMeasure"`
	Cost        primitive.Decimal128 `bson:"cost"`
	Price       primitive.Decimal128 `bson:"price"`
	TaxRate     primitive.Decimal128 `bson:"taxRate"`
	Stock       primitive.Decimal128 `bson:"stock"`
	MinStock    primitive.Decimal128 `bson:"minStock"`
	StockOp     string               `bson:"stockOp,omitempty"` // última escritura masiva que tocó el stock
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

func toProductDoc(p *entity.Product) productDoc {
	return productDoc{
		ID:          p.ID,
		Code:        p.Code,
		CodeLower:   lower(p.Code),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		UnitMeasure: p.UnitMeasure,
		Cost:        dec128(p.Cost),
		Price:       dec128(p.Price),
		TaxRate:     dec128(p.TaxRate),
		Stock:       dec128(p.Stock),
		MinStock:    dec128(p.MinStock),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (d productDoc) toEntity() *entity.Product {
	return &entity.Product{
		ID:          d.ID,
		Code:        d.Code,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		UnitMeasure: d.UnitMeasure,
		Cost:        fromDec128(d.Cost),
		Price:       fromDec128(d.Price),
		TaxRate:     fromDec128(d.TaxRate),
		Stock:       fromDec128(d.Stock),
		MinStock:    fromDec128(d.MinStock),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type movementDoc struct {
	ID          string               `bson:"_id"`
	ProductID   string               `bson:"productId"`
	ProductName string               `bson:"productName"`
	Type        string               `bson:"type"`
	Direction   string               `bson:"direction"`
	Quantity    primitive.Decimal128 `bson:"quantity"`
	Reference   string               `bson:"reference,omitempty"`
	Notes       string               `bson:"notes,omitempty"`
	Date        time.Time            `bson:"date"`
	CreatedAt   time.Time            `bson:"createdAt"`
	CreatedBy   string               `bson:"createdBy,omitempty"`
}

func toMovementDoc(m *entity.InventoryMovement) movementDoc {
	return movementDoc{
		ID:          m.ID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Type:        m.Type,
		Direction:   m.Direction,
		Quantity:    dec128(m.Quantity),
		Reference:   m.Reference,
		Notes:       m.Notes,
		Date:        m.Date,
		CreatedAt:   m.CreatedAt,
		CreatedBy:   m.CreatedBy,
	}
}

func (d movementDoc) toEntity() *entity.InventoryMovement {
	return &entity.InventoryMovement{
		ID:          d.ID,
		ProductID:   d.ProductID,
		ProductName: d.ProductName,
		Type:        d.Type,
		Direction:   d.Direction,
		Quantity:    fromDec128(d.Quantity),
		Reference:   d.Reference,
		Notes:       d.Notes,
		Date:        d.Date,
		CreatedAt:   d.CreatedAt,
		CreatedBy:   d.CreatedBy,
	}
}

type clientSnapshotDoc struct {
	Name    string `bson:"name"`
	RNC     string `bson:"rnc,omitempty"`
	Address string `bson:"address,omitempty"`
	Phone   string `bson:"phone,omitempty"`
	Email   string `bson:"email,omitempty"`
}

type itemDoc struct {
	LineIndex *int                 `bson:"lineIndex,omitempty"`
	ProductID string               `bson:"productId"`
	Name      string               `bson:"name"`
	Price     primitive.Decimal128 `bson:"price"`
	Quantity  primitive.Decimal128 `bson:"quantity"`
	Discount  primitive.Decimal128 `bson:"discount"`
	Subtotal  primitive.Decimal128 `bson:"subtotal"`
	Total     primitive.Decimal128 `bson:"total"`
}

func toItemDoc(it entity.InvoiceItem) itemDoc {
	return itemDoc{
		ProductID: it.ProductID,
		Name:      it.Name,
		Price:     dec128(it.Price),
		Quantity:  dec128(it.Quantity),
		Discount:  dec128(it.Discount),
		Subtotal:  dec128(it.Subtotal),
		Total:     dec128(it.Total),
	}
}

func (d itemDoc) toEntity() entity.InvoiceItem {
	return entity.InvoiceItem{
		ProductID: d.ProductID,
		Name:      d.Name,
		Price:     fromDec128(d.Price),
		Quantity:  fromDec128(d.Quantity),
		Discount:  fromDec128(d.Discount),
		Subtotal:  fromDec128(d.Subtotal),
		Total:     fromDec128(d.Total),
	}
}

type invoiceDoc struct {
	ID             string               `bson:"_id"`
	Number         string               `bson:"number"`
	NCF            string               `bson:"ncf,omitempty"`
	NCFType        string               `bson:"ncfType,omitempty"`
	ClientID       string               `bson:"clientId"`
	Client         clientSnapshotDoc    `bson:"client"`
	Items          []itemDoc            `bson:"items"`
	Subtotal       primitive.Decimal128 `bson:"subtotal"`
	Discount       primitive.Decimal128 `bson:"discount"`
	TaxRate        primitive.Decimal128 `bson:"taxRate"`
	Tax            primitive.Decimal128 `bson:"tax"`
	Total          primitive.Decimal128 `bson:"total"`
	PaidAmount     primitive.Decimal128 `bson:"paidAmount"`
	CreditedAmount primitive.Decimal128 `bson:"creditedAmount"`
	Status         string               `bson:"status"`
	PaymentIDs     []string             `bson:"paymentIds"`
	CreditNoteIDs  []string             `bson:"creditNoteIds"`
	Date           time.Time            `bson:"date"`
	DueDate        *time.Time           `bson:"dueDate,omitempty"`
	Notes          string               `bson:"notes,omitempty"`
	CreatedBy      string               `bson:"createdBy,omitempty"`
	CreatedAt      time.Time            `bson:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt"`
}

func toInvoiceDoc(inv *entity.Invoice) invoiceDoc {
	items := make([]itemDoc, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = toItemDoc(it)
	}
	return invoiceDoc{
		ID:             inv.ID,
		Number:         inv.Number,
		NCF:            inv.NCF,
		NCFType:        inv.NCFType,
		ClientID:       inv.ClientID,
		Client:         clientSnapshotDoc(inv.Client),
		Items:          items,
		Subtotal:       dec128(inv.Subtotal),
		Discount:       dec128(inv.Discount),
		TaxRate:        dec128(inv.TaxRate),
		Tax:            dec128(inv.Tax),
		Total:          dec128(inv.Total),
		PaidAmount:     dec128(inv.PaidAmount),
		CreditedAmount: dec128(inv.CreditedAmount),
		Status:         inv.Status,
		PaymentIDs:     nonNil(inv.PaymentIDs),
		CreditNoteIDs:  nonNil(inv.CreditNoteIDs),
		Date:           inv.Date,
		DueDate:        inv.DueDate,
		Notes:          inv.Notes,
		CreatedBy:      inv.CreatedBy,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
}

func (d invoiceDoc) toEntity() *entity.Invoice {
	items := make([]entity.InvoiceItem, len(d.Items))
	for i, it := range d.Items {
		items[i] = it.toEntity()
	}
	return &entity.Invoice{
		ID:             d.ID,
		Number:         d.Number,
		NCF:            d.NCF,
		NCFType:        d.NCFType,
		ClientID:       d.ClientID,
		Client:         entity.ClientSnapshot(d.Client),
		Items:          items,
		Subtotal:       fromDec128(d.Subtotal),
		Discount:       fromDec128(d.Discount),
		TaxRate:        fromDec128(d.TaxRate),
		Tax:            fromDec128(d.Tax),
		Total:          fromDec128(d.Total),
		PaidAmount:     fromDec128(d.PaidAmount),
		CreditedAmount: fromDec128(d.CreditedAmount),
		Status:         d.Status,
		PaymentIDs:     d.PaymentIDs,
		CreditNoteIDs:  d.CreditNoteIDs,
		Date:           d.Date,
		DueDate:        d.DueDate,
		Notes:          d.Notes,
		CreatedBy:      d.CreatedBy,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type creditNoteDoc struct {
	ID            string               `bson:"_id"`
	NCF           string               `bson:"ncf"`
	InvoiceID     string               `bson:"invoiceId"`
	InvoiceNumber string               `bson:"invoiceNumber"`
	InvoiceNCF    string               `bson:"invoiceNcf,omitempty"`
	ClientID      string               `bson:"clientId"`
	Client        clientSnapshotDoc    `bson:"client"`
	Reason        string               `bson:"reason"`
	Items         []itemDoc            `bson:"items"`
	Subtotal      primitive.Decimal128 `bson:"subtotal"`
	Discount      primitive.Decimal128 `bson:"discount"`
	TaxRate       primitive.Decimal128 `bson:"taxRate"`
	Tax           primitive.Decimal128 `bson:"tax"`
	Total         primitive.Decimal128 `bson:"total"`
	Notes         string               `bson:"notes,omitempty"`
	Date          time.Time            `bson:"date"`
	CreatedBy     string               `bson:"createdBy,omitempty"`
	CreatedAt     time.Time            `bson:"createdAt"`
}

func toCreditNoteDoc(cn *entity.CreditNote) creditNoteDoc {
	items := make([]itemDoc, len(cn.Items))
	for i, it := range cn.Items {
		idx := it.LineIndex
		items[i] = toItemDoc(it.InvoiceItem)
		items[i].LineIndex = &idx
	}
	return creditNoteDoc{
		ID:            cn.ID,
		NCF:           cn.NCF,
		InvoiceID:     cn.InvoiceID,
		InvoiceNumber: cn.InvoiceNumber,
		InvoiceNCF:    cn.InvoiceNCF,
		ClientID:      cn.ClientID,
		Client:        clientSnapshotDoc(cn.Client),
		Reason:        cn.Reason,
		Items:         items,
		Subtotal:      dec128(cn.Subtotal),
		Discount:      dec128(cn.Discount),
		TaxRate:       dec128(cn.TaxRate),
		Tax:           dec128(cn.Tax),
		Total:         dec128(cn.Total),
		Notes:         cn.Notes,
		Date:          cn.Date,
		CreatedBy:     cn.CreatedBy,
		CreatedAt:     cn.CreatedAt,
	}
}

func (d creditNoteDoc) toEntity() *entity.CreditNote {
	items := make([]entity.CreditNoteItem, len(d.Items))
	for i, it := range d.Items {
		idx := 0
		if it.LineIndex != nil {
			idx = *it.LineIndex
		}
		items[i] = entity.CreditNoteItem{LineIndex: idx, InvoiceItem: it.toEntity()}
	}
	return &entity.CreditNote{
		ID:            d.ID,
		NCF:           d.NCF,
		InvoiceID:     d.InvoiceID,
		InvoiceNumber: d.InvoiceNumber,
		InvoiceNCF:    d.InvoiceNCF,
		ClientID:      d.ClientID,
		Client:        entity.ClientSnapshot(d.Client),
		Reason:        d.Reason,
		Items:         items,
		Subtotal:      fromDec128(d.Subtotal),
		Discount:      fromDec128(d.Discount),
		TaxRate:       fromDec128(d.TaxRate),
		Tax:           fromDec128(d.Tax),
		Total:         fromDec128(d.Total),
		Notes:         d.Notes,
		Date:          d.Date,
		CreatedBy:     d.CreatedBy,
		CreatedAt:     d.CreatedAt,
	}
}

type paymentDoc struct {
	ID            string               `bson:"_id"`
	InvoiceID     string               `bson:"invoiceId"`
	InvoiceNumber string               `bson:"invoiceNumber"`
	Amount        primitive.Decimal128 `bson:"amount"`
	Method        string               `bson:"method"`
	Date          time.Time            `bson:"date"`
	Reference     string               `bson:"reference,omitempty"`
	Notes         string               `bson:"notes,omitempty"`
	CreatedBy     string               `bson:"createdBy,omitempty"`
	CreatedAt     time.Time            `bson:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt"`
}

func toPaymentDoc(p *entity.Payment) paymentDoc {
	return paymentDoc{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		InvoiceNumber: p.InvoiceNumber,
		Amount:        dec128(p.Amount),
		Method:        p.Method,
		Date:          p.Date,
		Reference:     p.Reference,
		Notes:         p.Notes,
		CreatedBy:     p.CreatedBy,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (d paymentDoc) toEntity() *entity.Payment {
	return &entity.Payment{
		ID:            d.ID,
		InvoiceID:     d.InvoiceID,
		InvoiceNumber: d.InvoiceNumber,
		Amount:        fromDec128(d.Amount),
		Method:        d.Method,
		Date:          d.Date,
		Reference:     d.Reference,
		Notes:         d.Notes,
		CreatedBy:     d.CreatedBy,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type sequenceDoc struct {
	Type      string     `bson:"_id"`
	Current   int64      `bson:"current"`
	RangeEnd  int64      `bson:"rangeEnd"`
	ExpiresAt *time.Time `bson:"expiresAt,omitempty"`
	UpdatedAt time.Time  `bson:"updatedAt"`
}

func (d sequenceDoc) toEntity() *entity.NCFSequence {
	return &entity.NCFSequence{
		Type:      d.Type,
		Current:   d.Current,
		RangeEnd:  d.RangeEnd,
		ExpiresAt: d.ExpiresAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type clientDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	RNC       string    `bson:"rnc,omitempty"`
	Address   string    `bson:"address,omitempty"`
	Phone     string    `bson:"phone,omitempty"`
	Email     string    `bson:"email,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func toClientDoc(c *entity.Client) clientDoc {
	return clientDoc{
		ID:        c.ID,
		Name:      c.Name,
		RNC:       c.RNC,
		Address:   c.Address,
		Phone:     c.Phone,
		Email:     c.Email,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (d clientDoc) toEntity() *entity.Client {
	return &entity.Client{
		ID:        d.ID,
		Name:      d.Name,
		RNC:       d.RNC,
		Address:   d.Address,
		Phone:     d.Phone,
		Email:     d.Email,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
