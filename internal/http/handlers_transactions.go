package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/services"
)

// ledgerHandler serves one kind of transaction. Expenses and income share the
// same handlers and differ only in field names and messages.
type ledgerHandler struct {
	server *Server
	kind   core.Kind
}

type pageJSON struct {
	Currency    string `json:"currency"`
	Page        int    `json:"page"`
	NumPages    int    `json:"num_pages"`
	Total       int    `json:"total"`
	HasNext     bool   `json:"has_next"`
	HasPrevious bool   `json:"has_previous"`
	Items       any    `json:"items"`
}

func transactionJSON(t core.Transaction) map[string]any {
	return map[string]any{
		"id":                t.ID,
		"amount":            t.Amount,
		"date":              t.Date.String(),
		"description":       t.Description,
		"owner_id":          t.OwnerID,
		t.Kind.LabelField(): t.Label,
	}
}

func transactionsJSON(txns []core.Transaction) []map[string]any {
	out := make([]map[string]any, 0, len(txns))
	for _, t := range txns {
		out = append(out, transactionJSON(t))
	}
	return out
}

func (h *ledgerHandler) handleList(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	page, err := h.server.transactions.History(r.Context(), h.kind, user.UserID, r.URL.Query().Get("page"))
	if err != nil {
		h.writeError(w, r, err, applog.OpList)
		return
	}
	currency, err := h.server.preferences.Currency(r.Context(), user.UserID)
	if err != nil {
		h.writeError(w, r, err, applog.OpList)
		return
	}

	writeJSON(w, http.StatusOK, pageJSON{
		Currency:    currency,
		Page:        page.Number,
		NumPages:    page.NumPages,
		Total:       page.Total,
		HasNext:     page.HasNext(),
		HasPrevious: page.HasPrevious(),
		Items:       transactionsJSON(page.Items),
	})
}

func (h *ledgerHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	txn := core.Transaction{Kind: h.kind, OwnerID: user.UserID}
	if resp := h.readFields(p, &txn); resp != nil {
		resp.Write(w)
		return
	}

	saved, err := h.server.transactions.Create(r.Context(), txn)
	if err != nil {
		h.writeError(w, r, err, applog.OpCreate)
		return
	}

	CreatedResponse(h.message("saved"), transactionJSON(saved)).Write(w)
}

func (h *ledgerHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	id, ok := pathID(r)
	if !ok {
		NotFoundError(h.kind.Noun() + " not found").Write(w)
		return
	}

	txn, err := h.server.transactions.Get(r.Context(), h.kind, user.UserID, id)
	if err != nil {
		h.writeError(w, r, err, applog.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, transactionJSON(txn))
}

// handleUpdate replaces amount, description, label and date. Omitted label
// and date keep their stored values.
func (h *ledgerHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	id, ok := pathID(r)
	if !ok {
		NotFoundError(h.kind.Noun() + " not found").Write(w)
		return
	}

	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	txn, err := h.server.transactions.Get(r.Context(), h.kind, user.UserID, id)
	if err != nil {
		h.writeError(w, r, err, applog.OpUpdate)
		return
	}
	if resp := h.readFields(p, &txn); resp != nil {
		resp.Write(w)
		return
	}

	saved, err := h.server.transactions.Update(r.Context(), txn)
	if err != nil {
		h.writeError(w, r, err, applog.OpUpdate)
		return
	}
	SuccessResponse(h.message("updated")).Data(transactionJSON(saved)).Write(w)
}

func (h *ledgerHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	id, ok := pathID(r)
	if !ok {
		NotFoundError(h.kind.Noun() + " not found").Write(w)
		return
	}

	if err := h.server.transactions.Delete(r.Context(), h.kind, user.UserID, id); err != nil {
		h.writeError(w, r, err, applog.OpDelete)
		return
	}
	SuccessResponse(h.message("removed")).Write(w)
}

func (h *ledgerHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	txns, err := h.server.transactions.Search(r.Context(), h.kind, user.UserID, p.Get("searchText"))
	if err != nil {
		h.writeError(w, r, err, applog.OpSearch)
		return
	}
	writeJSON(w, http.StatusOK, transactionsJSON(txns))
}

func (h *ledgerHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	summary, err := h.server.transactions.Summary(r.Context(), h.kind, user.UserID)
	if err != nil {
		h.writeError(w, r, err, applog.OpRead)
		return
	}

	byLabel := make(map[string]core.Money, len(summary.ByLabel))
	for _, s := range summary.ByLabel {
		byLabel[s.Label] = s.Amount
	}
	writeJSON(w, http.StatusOK, map[string]any{h.kind.SummaryKey(): byLabel})
}

func (h *ledgerHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	page, err := h.server.transactions.Stats(r.Context(), h.kind, user.UserID, r.URL.Query().Get("page"))
	if err != nil {
		h.writeError(w, r, err, applog.OpRead)
		return
	}
	currency, err := h.server.preferences.Currency(r.Context(), user.UserID)
	if err != nil {
		h.writeError(w, r, err, applog.OpRead)
		return
	}

	items := make([]map[string]any, 0, len(page.Items))
	for _, agg := range page.Items {
		items = append(items, map[string]any{
			h.kind.LabelField(): agg.Label,
			"amount":            agg.Amount,
		})
	}

	writeJSON(w, http.StatusOK, pageJSON{
		Currency:    currency,
		Page:        page.Number,
		NumPages:    page.NumPages,
		Total:       page.Total,
		HasNext:     page.HasNext(),
		HasPrevious: page.HasPrevious(),
		Items:       items,
	})
}

func (h *ledgerHandler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	txns, err := h.server.transactions.Export(r.Context(), h.kind, user.UserID)
	if err != nil {
		h.writeError(w, r, err, applog.OpExport)
		return
	}

	// Render fully before writing headers so a failure can still become a 500
	var buf bytes.Buffer
	if err := services.WriteCSV(&buf, h.kind, txns); err != nil {
		h.writeError(w, r, err, applog.OpExport)
		return
	}

	filename := services.ExportFilename(h.kind, h.server.now())
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transactions exported",
		"kind", h.kind,
		"owner_id", user.UserID,
		"rows", len(txns))
}

func (h *ledgerHandler) handleLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := h.server.transactions.Labels(r.Context(), h.kind)
	if err != nil {
		h.writeError(w, r, err, applog.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, labels)
}

// readFields copies the submitted fields onto txn. Amount and description are
// required; label and date are only overwritten when present.
func (h *ledgerHandler) readFields(p *RequestBodyParser, txn *core.Transaction) *ResponseBuilder {
	amount := p.Get("amount")
	if amount == "" {
		return UnprocessableEntityError("Amount is required")
	}
	money, err := core.ParseAmount(amount)
	if err != nil {
		return UnprocessableEntityError(h.kind.Noun() + " amount must be greater than zero")
	}
	txn.Amount = money

	txn.Description = p.Get("description")
	if txn.Description == "" {
		return UnprocessableEntityError("Description is required")
	}

	if p.Has(h.kind.LabelField()) {
		txn.Label = p.Get(h.kind.LabelField())
	}

	if raw := p.Get(h.kind.DateField()); raw != "" {
		date, err := core.ParseDate(raw)
		if err != nil {
			return UnprocessableEntityError("Date must be in YYYY-MM-DD format")
		}
		txn.Date = date
	}
	return nil
}

// writeError maps service errors onto status codes and user-facing messages.
func (h *ledgerHandler) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, core.ErrQuotaExceeded):
		TooManyRequestsError(h.kind.QuotaMessage()).Write(w)
	case errors.Is(err, core.ErrNotFound):
		NotFoundError(h.kind.Noun() + " not found").Write(w)
	case errors.Is(err, core.ErrInvalidAmount):
		UnprocessableEntityError(h.kind.Noun() + " amount must be greater than zero").Write(w)
	case errors.Is(err, core.ErrEmptyDescription):
		UnprocessableEntityError("Description is required").Write(w)
	case errors.Is(err, core.ErrEmptyLabel):
		UnprocessableEntityError(h.kind.LabelHeader() + " is required").Write(w)
	case errors.Is(err, core.ErrLabelTooLong):
		UnprocessableEntityError(h.kind.LabelHeader() + " is too long").Write(w)
	case errors.Is(err, core.ErrInvalidDate):
		UnprocessableEntityError("Date must be in YYYY-MM-DD format").Write(w)
	default:
		fields := applog.NewFields()
		fields[applog.FieldKind] = h.kind.String()
		if user := currentUser(r.Context()); user != nil {
			fields[applog.FieldOwnerID] = user.UserID
		}
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Transaction operation failed", err, applog.ComponentLedger, op, fields)
		InternalServerError("Something went wrong, please try again.").Write(w)
	}
}

var ledgerMessages = map[core.Kind]map[string]string{
	core.KindExpense: {
		"saved":   "Expense saved successfully.",
		"updated": "Expense updated successfully.",
		"removed": "Expense removed.",
	},
	core.KindIncome: {
		"saved":   "Income added successfully.",
		"updated": "Income updated successfully.",
		"removed": "Income removed.",
	},
}

func (h *ledgerHandler) message(event string) string {
	return ledgerMessages[h.kind][event]
}
