package persistence

// transactionController is the deferred-write gate. While open, mutations
// still update the in-memory caches (so reads within the transaction observe
// uncommitted writes) but flushes to the gateway are suppressed. Commit
// closes the gate and flushes; abort closes the gate and reloads both caches
// from disk, discarding the uncommitted mutations. Transactions do not nest:
// opening while already open re-asserts the gate, nothing more.
type transactionController struct {
	open bool
}

func (t *transactionController) Open()        { t.open = true }
func (t *transactionController) Close()       { t.open = false }
func (t *transactionController) IsOpen() bool { return t.open }
