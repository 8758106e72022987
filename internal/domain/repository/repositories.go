package repository

// Repositories agrupa los repositorios que una unidad de trabajo recibe. Dentro de una
// transacción todos están atados a la misma sesión; en modo secuencial operan sin sesión.
type Repositories struct {
	Products    ProductRepository
	Movements   InventoryMovementRepository
	Invoices    InvoiceRepository
	CreditNotes CreditNoteRepository
	Payments    PaymentRepository
	Sequences   NCFSequenceRepository
	Clients     ClientRepository
}
